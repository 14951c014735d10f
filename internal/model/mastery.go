package model

import "fmt"

// MasteryLevel classifies how well a character is known.
type MasteryLevel int

const (
	Beginner MasteryLevel = iota
	Learning
	Proficient
	Mastered
)

// MasteryLevels lists every level from weakest to strongest.
var MasteryLevels = []MasteryLevel{Beginner, Learning, Proficient, Mastered}

var masteryTags = map[MasteryLevel]string{
	Beginner:   "beginner",
	Learning:   "learning",
	Proficient: "proficient",
	Mastered:   "mastered",
}

// String returns the persisted tag for the level.
func (l MasteryLevel) String() string {
	if tag, ok := masteryTags[l]; ok {
		return tag
	}
	return fmt.Sprintf("mastery(%d)", int(l))
}

// ParseMasteryLevel converts a persisted tag back into a level.
func ParseMasteryLevel(tag string) (MasteryLevel, error) {
	for level, t := range masteryTags {
		if t == tag {
			return level, nil
		}
	}
	return Beginner, fmt.Errorf("unknown mastery level %q", tag)
}

// MarshalText implements encoding.TextMarshaler.
func (l MasteryLevel) MarshalText() ([]byte, error) {
	tag, ok := masteryTags[l]
	if !ok {
		return nil, fmt.Errorf("unknown mastery level %d", int(l))
	}
	return []byte(tag), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *MasteryLevel) UnmarshalText(text []byte) error {
	level, err := ParseMasteryLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}
