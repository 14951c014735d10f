// Package mastery classifies characters into mastery levels and exposes
// the practice weight of each level.
package mastery

import "github.com/verte-zerg/adaptype/internal/model"

const (
	// MinAttempts is the attempt count below which a character stays Beginner.
	MinAttempts        = 5
	// MasteredMinCorrect is the correct-attempt count required for Mastered.
	MasteredMinCorrect = 20

	masteredAccuracy   = 95.0
	proficientAccuracy = 85.0
	learningAccuracy   = 70.0
)

var practiceWeights = map[model.MasteryLevel]float64{
	model.Beginner:   0.60,
	model.Learning:   0.30,
	model.Proficient: 0.10,
	model.Mastered:   0.05,
}

// Classify derives the mastery level from attempt counts. Rules are
// evaluated in order and the first match wins.
func Classify(total, correct int) model.MasteryLevel {
	if total < MinAttempts {
		return model.Beginner
	}
	accuracy := float64(correct) / float64(total) * 100
	switch {
	case accuracy >= masteredAccuracy && correct >= MasteredMinCorrect:
		return model.Mastered
	case accuracy >= proficientAccuracy:
		return model.Proficient
	case accuracy >= learningAccuracy:
		return model.Learning
	default:
		return model.Beginner
	}
}

// ClassifyChar classifies a character performance record.
func ClassifyChar(c model.CharPerformance) model.MasteryLevel {
	return Classify(c.TotalAttempts, c.CorrectAttempts)
}

// PracticeWeight returns the share of generated tokens a level should receive.
func PracticeWeight(level model.MasteryLevel) float64 {
	return practiceWeights[level]
}

// Threshold is the upper bound of a level's slice in [0, 1.05).
type Threshold struct {
	Level model.MasteryLevel
	Upper float64
}

// Thresholds returns cumulative selection bounds ordered from Beginner to Mastered.
func Thresholds() []Threshold {
	out := make([]Threshold, 0, len(model.MasteryLevels))
	acc := 0.0
	for _, level := range model.MasteryLevels {
		acc += PracticeWeight(level)
		out = append(out, Threshold{Level: level, Upper: acc})
	}
	return out
}

// Select returns the level whose cumulative slice contains u. Values at or
// above the last bound select Mastered.
func Select(u float64) model.MasteryLevel {
	for _, t := range Thresholds() {
		if u < t.Upper {
			return t.Level
		}
	}
	return model.Mastered
}
