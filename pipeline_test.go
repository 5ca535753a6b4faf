package datagrid

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func leadColumns() []Column {
	return []Column{
		{Key: "id", Header: "ID"},
		{Key: "name", Header: "Name"},
		{Key: "company", Header: "Company"},
		{Key: "created_at", Header: "Created"},
	}
}

func leadRecords(n int) []Record {
	records := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, Record{
			"id":         i,
			"name":       fmt.Sprintf("Lead %02d", i),
			"company":    "Other",
			"created_at": fmt.Sprintf("2024-01-%02dT10:00:00", (i%28)+1),
		})
	}
	return records
}

func TestPaginationScenario(t *testing.T) {
	g := New(Options{Records: leadRecords(25), Columns: leadColumns(), DefaultPageSize: 10})

	view := g.View()
	if view.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", view.TotalPages)
	}
	if view.Total != 25 {
		t.Errorf("Expected total 25, got %d", view.Total)
	}
	if len(view.Page) != 10 {
		t.Errorf("Expected 10 records on page 1, got %d", len(view.Page))
	}
	if view.Page[0]["id"] != 1 || view.Page[9]["id"] != 10 {
		t.Errorf("Page 1 should hold records 1-10, got %v..%v", view.Page[0]["id"], view.Page[9]["id"])
	}

	g.GoToPage(3)
	view = g.View()
	if len(view.Page) != 5 {
		t.Errorf("Expected 5 records on page 3, got %d", len(view.Page))
	}
	if view.Page[0]["id"] != 21 || view.Page[4]["id"] != 25 {
		t.Errorf("Page 3 should hold records 21-25, got %v..%v", view.Page[0]["id"], view.Page[4]["id"])
	}
}

func TestPaginationPartition(t *testing.T) {
	g := New(Options{Records: leadRecords(23), Columns: leadColumns(), DefaultPageSize: 10})

	seen := map[interface{}]int{}
	total := 0
	for p := 1; p <= g.View().TotalPages; p++ {
		g.GoToPage(p)
		for _, r := range g.View().Page {
			seen[r["id"]]++
			total++
		}
	}
	if total != 23 {
		t.Errorf("Pages should cover all 23 records exactly once, covered %d", total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Record %v appeared %d times across pages", id, n)
		}
	}
}

func TestSearchScenario(t *testing.T) {
	records := []Record{
		{"id": 1, "name": "A", "company": "Acme Corp"},
		{"id": 2, "name": "B", "company": "Other"},
	}
	g := New(Options{Records: records, Columns: leadColumns()})
	g.SetSearch("acme")

	view := g.View()
	if view.Total != 1 {
		t.Fatalf("Expected 1 record for search 'acme', got %d", view.Total)
	}
	if view.Page[0]["company"] != "Acme Corp" {
		t.Errorf("Expected Acme Corp, got %v", view.Page[0]["company"])
	}
}

func TestSearchSkipsNoOpColumns(t *testing.T) {
	records := []Record{{"name": "hit"}}
	cols := []Column{{Header: "Broken"}, {Key: "name"}}
	g := New(Options{Records: records, Columns: cols})

	g.SetSearch("hit")
	if got := g.View().Total; got != 1 {
		t.Errorf("Expected the record to match via its named column, got total %d", got)
	}

	g.SetSearch("miss")
	if got := g.View().Total; got != 0 {
		t.Errorf("A column without key or accessor must not count as a match, got total %d", got)
	}
}

func TestDateRangeInclusivity(t *testing.T) {
	records := []Record{
		{"id": "start", "created_at": "2024-01-01T00:00:00"},
		{"id": "mid", "created_at": "2024-01-15T10:00:00Z"},
		{"id": "end", "created_at": "2024-01-31T23:59:59"},
		{"id": "after", "created_at": "2024-02-01T00:00:01"},
		{"id": "before", "created_at": "2023-12-31T23:59:59"},
		{"id": "junk", "created_at": "not a date"},
		{"id": "missing"},
	}
	g := New(Options{Records: records, Columns: leadColumns()})
	g.SetDateRange(RangeStart, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))
	g.SetDateRange(RangeEnd, time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local))

	view := g.View()
	want := map[string]bool{"start": true, "mid": true, "end": true}
	if view.Total != len(want) {
		t.Fatalf("Expected %d records inside the range, got %d", len(want), view.Total)
	}
	for _, r := range view.Filtered {
		if !want[r["id"].(string)] {
			t.Errorf("Record %v should have been excluded", r["id"])
		}
	}
}

func TestDateRangeRequiresBothBounds(t *testing.T) {
	records := []Record{{"id": 1, "created_at": "1999-01-01"}}
	g := New(Options{Records: records, Columns: leadColumns()})

	g.SetDateRange(RangeStart, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))
	if got := g.View().Total; got != 1 {
		t.Errorf("Half-open range must not filter, got total %d", got)
	}
}

func TestFilterAndSemantics(t *testing.T) {
	match := Record{"id": 1, "name": "Ada", "company": "Acme Corp", "created_at": "2024-01-10"}
	records := []Record{
		match,
		{"id": 2, "name": "Ada", "company": "Acme Corp", "created_at": "2023-06-01"}, // wrong date
		{"id": 3, "name": "Ada", "company": "Globex", "created_at": "2024-01-10"},    // wrong filter
		{"id": 4, "name": "Bob", "company": "Acme Corp", "created_at": "2024-01-10"}, // wrong search
	}
	g := New(Options{Records: records, Columns: leadColumns()})
	g.SetSearch("ada")
	g.SetColumnFilter("company", "acme")
	g.SetDateRange(RangeStart, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))
	g.SetDateRange(RangeEnd, time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local))

	view := g.View()
	if view.Total != 1 || view.Filtered[0]["id"] != 1 {
		t.Errorf("Only the record matching every predicate may survive, got %v", view.Filtered)
	}
}

func TestFilterReadsRawKeyNotAccessor(t *testing.T) {
	// The filter key is read directly off the record; search goes
	// through the accessor. The asymmetry is intentional.
	records := []Record{
		{"display_name": "Widget", "internal_name": "sprocket"},
	}
	cols := []Column{{Key: "internal_name", Accessor: "display_name"}}
	g := New(Options{Records: records, Columns: cols})

	g.SetColumnFilter("internal_name", "sprocket")
	if got := g.View().Total; got != 1 {
		t.Errorf("Filter should read record[key] directly, got total %d", got)
	}

	g.ResetAllFilters()
	g.SetSearch("widget")
	if got := g.View().Total; got != 1 {
		t.Errorf("Search should read through the accessor, got total %d", got)
	}
}

func TestEmptyFilterPatternIsNeutral(t *testing.T) {
	g := New(Options{Records: leadRecords(5), Columns: leadColumns()})
	g.SetColumnFilter("company", "")
	if got := g.View().Total; got != 5 {
		t.Errorf("Empty pattern must not filter, got total %d", got)
	}
}

func TestSortNullsSink(t *testing.T) {
	records := []Record{
		{"id": 1, "name": nil},
		{"id": 2, "name": "beta"},
		{"id": 3},
		{"id": 4, "name": "alpha"},
	}
	g := New(Options{Records: records, Columns: leadColumns()})

	g.SetSort("name", SortAsc)
	got := g.View().Filtered
	if got[0]["name"] != "alpha" || got[1]["name"] != "beta" {
		t.Errorf("Ascending: non-null values first, got %v", got)
	}
	if got[2]["name"] != nil || got[3]["name"] != nil {
		t.Errorf("Ascending: nulls must sink to the end, got %v", got)
	}

	g.SetSort("name", SortDesc)
	got = g.View().Filtered
	if got[0]["name"] != "beta" || got[1]["name"] != "alpha" {
		t.Errorf("Descending: non-null order flips, got %v", got)
	}
	if got[2]["name"] != nil || got[3]["name"] != nil {
		t.Errorf("Descending: nulls still sink to the end, got %v", got)
	}
}

func TestSortStability(t *testing.T) {
	records := []Record{
		{"id": 1, "rank": 5},
		{"id": 2, "rank": 5},
		{"id": 3, "rank": 1},
		{"id": 4, "rank": 5},
	}
	cols := []Column{{Key: "id"}, {Key: "rank"}}
	g := New(Options{Records: records, Columns: cols})
	g.SetSort("rank", SortAsc)

	got := g.View().Filtered
	if got[0]["id"] != 3 {
		t.Fatalf("Expected rank 1 first, got %v", got[0])
	}
	for i, want := range []int{1, 2, 4} {
		if got[i+1]["id"] != want {
			t.Errorf("Ties must keep input order: position %d expected id %d, got %v", i+1, want, got[i+1]["id"])
		}
	}
}

func TestSortNumericVsString(t *testing.T) {
	records := []Record{
		{"id": 10}, {"id": 2}, {"id": 1},
	}
	cols := []Column{{Key: "id"}}
	g := New(Options{Records: records, Columns: cols})
	g.SetSort("id", SortAsc)

	got := g.View().Filtered
	if got[0]["id"] != 1 || got[1]["id"] != 2 || got[2]["id"] != 10 {
		t.Errorf("Numeric fields compare by value, got %v", got)
	}
}

func TestPipelineIdempotence(t *testing.T) {
	records := leadRecords(12)
	snapshot := make([]Record, len(records))
	copy(snapshot, records)

	g := New(Options{Records: records, Columns: leadColumns(), DefaultPageSize: 10})
	g.SetSearch("lead")
	g.SetSort("name", SortDesc)

	first := g.View()
	second := g.View()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Same state must yield identical views")
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Errorf("The pipeline must not mutate the input records")
	}
}

func TestDisabledStagesAreRemoved(t *testing.T) {
	off := false
	g := New(Options{
		Records:          leadRecords(25),
		Columns:          leadColumns(),
		DefaultPageSize:  10,
		EnableSearch:     &off,
		EnablePagination: &off,
		EnableSort:       &off,
	})

	g.SetSearch("no such thing")
	g.SetSort("name", SortDesc)

	view := g.View()
	if view.Total != 25 {
		t.Errorf("Disabled search must not filter, got total %d", view.Total)
	}
	if len(view.Page) != 25 {
		t.Errorf("Disabled pagination must return the whole set, got %d", len(view.Page))
	}
	if view.Page[0]["id"] != 1 {
		t.Errorf("Disabled sort must keep input order, got first id %v", view.Page[0]["id"])
	}
}

func TestEmptyRecordSet(t *testing.T) {
	g := New(Options{Records: nil, Columns: leadColumns(), EmptyMessage: "no leads yet"})
	view := g.View()
	if view.Total != 0 || view.TotalPages != 0 {
		t.Errorf("Empty set: expected total 0 and 0 pages, got %d/%d", view.Total, view.TotalPages)
	}
	if len(view.Page) != 0 {
		t.Errorf("Empty set: expected no rows, got %d", len(view.Page))
	}
}
