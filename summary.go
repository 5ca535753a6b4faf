package datagrid

import (
	"fmt"
	"strings"
)

// AggFunc names an aggregation applied by Summarize.
type AggFunc string

const (
	AggCount AggFunc = "count"
	AggSum   AggFunc = "sum"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// Measure is one aggregated value in a summary: a function over a
// record field, with an optional display label.
type Measure struct {
	Column string  `json:"column"`
	Func   AggFunc `json:"func"`
	Label  string  `json:"label,omitempty"`
}

// SummaryGroup holds the aggregates for one group key.
type SummaryGroup struct {
	Key    string             // joined group-by values, "(null)" for missing fields
	Count  int                // records in the group
	Values map[string]float64 // measure label -> aggregate
}

// Summary is the group/aggregate view over a record set, the shape a
// report screen renders under the grid.
type Summary struct {
	GroupBy    []string
	Measures   []string
	Groups     []*SummaryGroup
	GrandTotal map[string]float64
	TotalCount int
}

// Summarize aggregates the grid's current filtered set, after search,
// filters and date range but before pagination.
func (g *Grid) Summarize(groupBy []string, measures []Measure) *Summary {
	return summarize(g.View().Filtered, groupBy, measures)
}

// summarize groups records by the given fields, in first-seen order,
// and computes every measure per group plus a grand total. Malformed
// or missing numeric fields count as zero; nothing errors.
func summarize(records []Record, groupBy []string, measures []Measure) *Summary {
	labels := make([]string, len(measures))
	for i, m := range measures {
		if m.Label != "" {
			labels[i] = m.Label
		} else {
			labels[i] = fmt.Sprintf("%s(%s)", m.Func, m.Column)
		}
	}

	res := &Summary{
		GroupBy:    groupBy,
		Measures:   labels,
		GrandTotal: make(map[string]float64),
		TotalCount: len(records),
	}

	groups := make(map[string][]Record)
	order := []string{}
	for _, r := range records {
		parts := make([]string, len(groupBy))
		for i, field := range groupBy {
			parts[i] = "(null)"
			if v, ok := r[field]; ok && v != nil {
				parts[i] = strings.TrimSpace(fmt.Sprintf("%v", v))
			}
		}
		key := strings.Join(parts, " | ")
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	for _, key := range order {
		recs := groups[key]
		grp := &SummaryGroup{
			Key:    key,
			Count:  len(recs),
			Values: make(map[string]float64, len(measures)),
		}
		for i, m := range measures {
			grp.Values[labels[i]] = aggregate(recs, m)
		}
		res.Groups = append(res.Groups, grp)
	}

	for i, m := range measures {
		res.GrandTotal[labels[i]] = aggregate(records, m)
	}
	return res
}

// aggregate computes one measure over a record slice.
func aggregate(records []Record, m Measure) float64 {
	var sum, min, max float64
	count := 0
	minSet := false
	maxSet := false

	for _, r := range records {
		v := numericField(r, m.Column)
		switch m.Func {
		case AggCount:
			count++
		case AggMin:
			if !minSet || v < min {
				min = v
				minSet = true
			}
		case AggMax:
			if !maxSet || v > max {
				max = v
				maxSet = true
			}
		default: // sum and avg share the running total
			sum += v
			count++
		}
	}

	switch m.Func {
	case AggCount:
		return float64(count)
	case AggAvg:
		if count > 0 {
			return sum / float64(count)
		}
		return 0
	case AggMin:
		return min
	case AggMax:
		return max
	default:
		return sum
	}
}

// numericField reads a record field as float64, best effort.
func numericField(r Record, field string) float64 {
	v, ok := r[field]
	if !ok || v == nil {
		return 0
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	var f float64
	fmt.Sscanf(fmt.Sprintf("%v", v), "%f", &f)
	return f
}
