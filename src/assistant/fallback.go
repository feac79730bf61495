package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/iafilius/CBACharts/src/decision"
)

// candidate is a dashboard row reduced to what the summary talks about.
// Total is truncated to whole points; a missing total counts as 0.
type candidate struct {
	Name  string   `json:"name"`
	Cost  *float64 `json:"cost"`
	Total int64    `json:"total"`
	Ratio *float64 `json:"ratio"`
}

// candidates normalizes rows for the summary. Nameless rows are skipped. The ratio is
// the explicit one when present, else cost/total when both are non-zero.
func candidates(records []decision.Record) []candidate {
	out := make([]candidate, 0, len(records))
	for _, r := range records {
		name := decision.Name(r)
		if name == "" {
			continue
		}
		c := candidate{Name: name}
		if v, ok := decision.Cost(r).Get(); ok {
			c.Cost = &v
		}
		if v, ok := decision.Total(r).Get(); ok {
			c.Total = int64(v)
		}
		if raw, ok := decision.RatioField.Lookup(r); ok {
			if v, ok := decision.ToNumber(raw).Get(); ok {
				c.Ratio = &v
			}
		}
		if c.Ratio == nil && c.Cost != nil && *c.Cost != 0 && c.Total != 0 {
			v := *c.Cost / float64(c.Total)
			c.Ratio = &v
		}
		out = append(out, c)
	}
	return out
}

// ranking returns the lowest-ratio candidate and the runner-up.
func ranking(cs []candidate) (winner, second *candidate) {
	valid := make([]candidate, 0, len(cs))
	for _, c := range cs {
		if c.Ratio != nil {
			valid = append(valid, c)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool { return *valid[i].Ratio < *valid[j].Ratio })
	if len(valid) > 0 {
		winner = &valid[0]
	}
	if len(valid) > 1 {
		second = &valid[1]
	}
	return winner, second
}

// Soles formats an amount as "S/ 1234,50": comma decimal separator, no grouping.
func Soles(v float64, decimals int) string {
	format := "#," + strings.Repeat("#", decimals)
	return "S/ " + humanize.FormatFloat(format, v)
}

func setupString(setup map[string]interface{}, key string) string {
	if setup == nil {
		return ""
	}
	v, ok := setup[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Fallback builds the deterministic one-paragraph recommendation used whenever the
// remote model is unavailable or its answer is rejected.
func Fallback(setup map[string]interface{}, records []decision.Record) string {
	winner, second := ranking(candidates(records))
	project := setupString(setup, "project_name")
	objective := setupString(setup, "objective")

	var b strings.Builder
	if project != "" {
		fmt.Fprintf(&b, "Para el proyecto \"%s\"", project)
	} else {
		b.WriteString("Para este proyecto")
	}
	if objective != "" {
		fmt.Fprintf(&b, " cuyo objetivo es \"%s\"", objective)
	}
	if winner == nil {
		b.WriteString(" se requiere completar costos y/o ventajas para emitir una recomendación basada en costo por unidad de ventaja.")
		return collapse(b.String())
	}

	tail := ""
	if objective != "" {
		tail = " para cumplirlo"
	}
	cost := "-"
	if winner.Cost != nil {
		cost = Soles(*winner.Cost, 2)
	}
	fmt.Fprintf(&b, " se recomienda %s%s porque presenta el menor costo por unidad de ventaja (%s por unidad), alcanzando %d de ventaja total con un costo total de %s",
		winner.Name, tail, Soles(*winner.Ratio, 2), winner.Total, cost)

	if second != nil {
		delta := *second.Ratio - *winner.Ratio
		pct := ""
		if *second.Ratio > 0 {
			pct = fmt.Sprintf(" (%.2f%% menos)", delta / *second.Ratio * 100)
		}
		fmt.Fprintf(&b, ", lo que implica un ahorro de %s%s por unidad (frente a %s, %s por unidad)",
			Soles(delta, 2), pct, second.Name, Soles(*second.Ratio, 2))
	}
	return collapse(strings.TrimRight(b.String(), ".;, ") + ".")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
