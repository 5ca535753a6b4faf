package datagrid

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// queryState is the complete set of parameters one pipeline run
// consumes. The Grid snapshots its fields into this struct so the
// pipeline stays a pure function of its inputs.
type queryState struct {
	search    string
	filters   map[string]string
	dateField string
	dateStart time.Time
	dateEnd   time.Time
	hasDates  bool
	sortKey   string
	sortDesc  bool
	page      int
	pageSize  int

	searchOn   bool
	filtersOn  bool
	sortOn     bool
	paginateOn bool
}

// View is the pipeline output: the visible page slice, the full
// filtered and sorted set (the export encoder reads this), and the
// pagination totals.
type View struct {
	Page       []Record
	Filtered   []Record
	Total      int
	TotalPages int
}

// runPipeline materializes a view from (records, columns, state).
// Stages run in fixed order: search, column filters, date range,
// sort, page slice. Disabled stages are skipped entirely. The input
// slice is never mutated; recomputing from scratch on every change is
// the accepted cost model.
func runPipeline(records []Record, cols []col, st queryState) View {
	out := records
	if st.searchOn && st.search != "" {
		out = searchRecords(out, cols, st.search)
	}
	if st.filtersOn {
		out = filterRecords(out, st.filters)
	}
	if st.hasDates {
		out = filterDateRange(out, st.dateField, st.dateStart, st.dateEnd)
	}
	if st.sortOn && st.sortKey != "" {
		out = sortRecords(out, st.sortKey, st.sortDesc)
	}

	view := View{Filtered: out, Total: len(out)}
	if !st.paginateOn {
		view.Page = out
		if view.Total > 0 {
			view.TotalPages = 1
		}
		return view
	}

	view.TotalPages = (view.Total + st.pageSize - 1) / st.pageSize
	lo := (st.page - 1) * st.pageSize
	if lo >= view.Total {
		view.Page = []Record{}
		return view
	}
	hi := lo + st.pageSize
	if hi > view.Total {
		hi = view.Total
	}
	view.Page = out[lo:hi]
	return view
}

// searchRecords keeps records where any column's raw field value
// contains the term, case-insensitively. Columns without a resolvable
// accessor are skipped, not treated as matches.
func searchRecords(records []Record, cols []col, term string) []Record {
	term = strings.ToLower(term)
	out := []Record{}
	for _, r := range records {
		for _, c := range cols {
			if c.accessor == "" {
				continue
			}
			v := r[c.accessor]
			if v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// filterRecords applies every non-empty column filter with AND
// semantics. The filter key is read directly off the record, without
// accessor fallback; search goes through the accessor instead. The
// asymmetry is preserved from the observed behavior because callers
// may depend on it.
func filterRecords(records []Record, filters map[string]string) []Record {
	active := make(map[string]string, len(filters))
	for k, pattern := range filters {
		if pattern != "" {
			active[k] = strings.ToLower(pattern)
		}
	}
	if len(active) == 0 {
		return records
	}

	out := []Record{}
	for _, r := range records {
		keep := true
		for k, pattern := range active {
			v := r[k]
			if v == nil || !strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), pattern) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// filterDateRange keeps records whose date field falls inside the
// inclusive calendar-day range. Records with an absent or unparseable
// date are excluded silently; malformed data degrades results rather
// than breaking the page.
func filterDateRange(records []Record, field string, start, end time.Time) []Record {
	lo := startOfDay(start)
	hi := endOfDay(end)
	out := []Record{}
	for _, r := range records {
		t, ok := parseWhen(r[field])
		if !ok {
			continue
		}
		if t.Before(lo) || t.After(hi) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortRecords stable-sorts a copy of the slice by the given field.
// Records with a nil value at the sort key sink to the end in both
// directions; only the non-nil ordering flips with desc.
func sortRecords(records []Record, key string, desc bool) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i][key], out[j][key]
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compareValues orders two non-nil field values: numerics by value,
// strings case-folded with a byte tie-break, anything else by its
// string form.
func compareValues(a, b interface{}) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	sa, aIsStr := a.(string)
	sb, bIsStr := b.(string)
	if !aIsStr {
		sa = fmt.Sprintf("%v", a)
	}
	if !bIsStr {
		sb = fmt.Sprintf("%v", b)
	}
	la, lb := strings.ToLower(sa), strings.ToLower(sb)
	if la != lb {
		return strings.Compare(la, lb)
	}
	return strings.Compare(sa, sb)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
