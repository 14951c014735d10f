package stats

import (
	"sort"

	"github.com/verte-zerg/adaptype/internal/model"
)

// TopCharsByFrequency returns the n most attempted characters.
func TopCharsByFrequency(agg *model.Aggregate, n int) []string {
	if agg == nil || n <= 0 || len(agg.Chars) == 0 {
		return nil
	}
	type item struct {
		ch    string
		total int
	}
	items := make([]item, 0, len(agg.Chars))
	for ch, c := range agg.Chars {
		items = append(items, item{ch: ch, total: c.TotalAttempts})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].ch < items[j].ch
		}
		return items[i].total > items[j].total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].ch)
	}
	return out
}
