package decision

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one loosely typed decision row as it arrives in a payload.
type Record map[string]interface{}

// Field lists the keys a canonical field may be stored under, in resolution order:
// the English name first, then the localized/legacy aliases.
type Field []string

// The shared resolution table. Every accessor below goes through it.
var (
	NameField  = Field{"name", "candidatos", "CANDIDATOS"}
	CostField  = Field{"cost", "costo", "COSTO"}
	TotalField = Field{"total", "ventaja", "VENTAJA"}
	RatioField = Field{"ratio", "RATIO"}
)

// Canonical returns the English key of the field.
func (f Field) Canonical() string { return f[0] }

// Lookup returns the first value that is neither nil nor an empty string.
func (f Field) Lookup(r Record) (interface{}, bool) {
	for _, k := range f {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// Resolve maps an arbitrary key to its canonical name; unknown keys return "".
func Resolve(key string) string {
	for _, f := range []Field{NameField, CostField, TotalField, RatioField} {
		for _, k := range f {
			if strings.EqualFold(strings.TrimSpace(key), k) {
				return f.Canonical()
			}
		}
	}
	return ""
}

func Cost(r Record) Num {
	v, _ := CostField.Lookup(r)
	return ToNumber(v)
}

func Total(r Record) Num {
	v, _ := TotalField.Lookup(r)
	return ToNumber(v)
}

func Name(r Record) string {
	v, ok := NameField.Lookup(r)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Ratio resolves the cost-effectiveness ratio of a record.
func Ratio(r Record) Num {
	return RatioFrom(r, Cost(r), Total(r))
}

// RatioFrom is Ratio with already resolved cost and total. An explicit ratio field
// always wins, so upstream scoring can override the plain division.
func RatioFrom(r Record, cost, total Num) Num {
	if v, ok := RatioField.Lookup(r); ok {
		return ToNumber(v)
	}
	c, okC := cost.Get()
	t, okT := total.Get()
	if !okC || !okT || t == 0 {
		return None
	}
	return Some(c / t)
}

// Item is one normalized alternative of a CBA comparison.
type Item struct {
	Name  string `json:"name"`
	Cost  Num    `json:"cost"`
	Total Num    `json:"total"`
	Ratio Num    `json:"ratio"`
}

// IsZeroRow reports whether both cost and total are present and zero.
func (it Item) IsZeroRow() bool {
	c, okC := it.Cost.Get()
	t, okT := it.Total.Get()
	return okC && okT && c == 0 && t == 0
}

// Plottable reports whether the item can be drawn as a cost/benefit vector.
func (it Item) Plottable() bool {
	return it.Cost.Valid() && it.Total.Valid() && !it.IsZeroRow()
}

// NormalizeRecord converts one record. idx labels nameless rows.
func NormalizeRecord(r Record, idx int) Item {
	cost := Cost(r)
	total := Total(r)
	name := Name(r)
	if name == "" {
		name = fmt.Sprintf("#%d", idx+1)
	}
	return Item{Name: name, Cost: cost, Total: total, Ratio: RatioFrom(r, cost, total)}
}

func Normalize(records []Record) []Item {
	out := make([]Item, 0, len(records))
	for i, r := range records {
		out = append(out, NormalizeRecord(r, i))
	}
	return out
}

// SortByTotalDesc orders items by total benefit, highest first; items without a
// total sort as zero. The sort is stable so ties keep payload order.
func SortByTotalDesc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total.Or(0) > items[j].Total.Or(0)
	})
}

// Winner returns the item with the lowest ratio, if any item has one.
func Winner(items []Item) (Item, bool) {
	var best Item
	found := false
	for _, it := range items {
		r, ok := it.Ratio.Get()
		if !ok {
			continue
		}
		if !found || r < best.Ratio.Or(0) {
			best = it
			found = true
		}
	}
	return best, found
}
