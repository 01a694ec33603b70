package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// KeyCount is the number of items sharing a key
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// KeyTotal is the count and summed value of items sharing a key
type KeyTotal struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// GroupCount counts items per derived key. Results are ordered by count
// descending, then key ascending; the counts always sum to len(items).
func GroupCount[T any](items []T, key func(T) string) []KeyCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[key(item)]++
	}
	out := make([]KeyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, KeyCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// GroupSum counts and sums items per derived key, ordered by total
// descending, then key ascending.
func GroupSum[T any](items []T, key func(T) string, value func(T) decimal.Decimal) []KeyTotal {
	totals := make(map[string]*KeyTotal)
	order := make([]string, 0)
	for _, item := range items {
		k := key(item)
		kt, ok := totals[k]
		if !ok {
			kt = &KeyTotal{Key: k, Total: decimal.Zero}
			totals[k] = kt
			order = append(order, k)
		}
		kt.Count++
		kt.Total = kt.Total.Add(value(item))
	}
	out := make([]KeyTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *totals[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CountsByKeys returns counts for every key in keys, including zeros, in the
// given order. Keys not listed are ignored.
func CountsByKeys(groups []KeyCount, keys []string) []KeyCount {
	m := make(map[string]int, len(groups))
	for _, g := range groups {
		m[g.Key] = g.Count
	}
	out := make([]KeyCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyCount{Key: k, Count: m[k]})
	}
	return out
}
