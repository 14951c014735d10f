package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/verte-zerg/adaptype/internal/model"
)

// WriteJSON encodes the aggregate as indented JSON.
func WriteJSON(w io.Writer, agg *model.Aggregate) error {
	if agg == nil {
		agg = model.NewAggregate()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(agg)
}

// ReadJSON decodes an aggregate written by WriteJSON.
func ReadJSON(r io.Reader) (*model.Aggregate, error) {
	agg := model.NewAggregate()
	if err := json.NewDecoder(r).Decode(agg); err != nil {
		return nil, fmt.Errorf("failed to decode aggregate: %w", err)
	}
	normalize(agg)
	return agg, nil
}

// LoadJSONFile reads an aggregate from path. A missing file yields an empty
// aggregate.
func LoadJSONFile(path string) (*model.Aggregate, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewAggregate(), nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	return ReadJSON(f)
}

// SaveJSONFile writes the aggregate to path, replacing it atomically.
func SaveJSONFile(path string, agg *model.Aggregate) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".aggregate-*.json")
	if err != nil {
		return err
	}
	if err := WriteJSON(tmp, agg); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func normalize(agg *model.Aggregate) {
	if agg.Chars == nil {
		agg.Chars = map[string]*model.CharPerformance{}
	}
	if agg.Pairs == nil {
		agg.Pairs = map[string]*model.PairPerformance{}
	}
	if agg.History == nil {
		agg.History = []model.SessionSummary{}
	}
	for ch, c := range agg.Chars {
		if c == nil {
			delete(agg.Chars, ch)
			continue
		}
		c.Char = ch
		if c.Mistypes == nil {
			c.Mistypes = map[string]int{}
		}
	}
	for pair, p := range agg.Pairs {
		if p == nil {
			delete(agg.Pairs, pair)
			continue
		}
		p.Pair = pair
	}
	for i := range agg.History {
		if agg.History[i].WeakChars == nil {
			agg.History[i].WeakChars = []string{}
		}
		if agg.History[i].ImprovedChars == nil {
			agg.History[i].ImprovedChars = []string{}
		}
	}
}
