package datagrid

import (
	"time"
)

// DefaultDateField is the record field the date-range filter reads
// unless the caller overrides it.
const DefaultDateField = "created_at"

// DefaultPageSizeOptions seed the pager dropdown when the caller
// supplies none.
var DefaultPageSizeOptions = []int{10, 25, 50, 100}

// Dataset is one named record set with its own column schema, used in
// dual-dataset mode (an inbox/archive style toggle).
type Dataset struct {
	Name    string
	Records []Record
	Columns []Column
}

// ActionButton is a toolbar entry passed through to the presentation
// layer; the engine never interprets it.
type ActionButton struct {
	Label    string
	OnClick  func()
	Disabled bool
	Icon     string
}

// Options is the construction contract. Either Records+Columns
// (single mode) or DatasetA+DatasetB (dual mode) supply the rows;
// when both named datasets are present the dual toggle wins and the
// anonymous set is ignored. Feature toggles default to enabled;
// disabling one removes the stage from the pipeline entirely, not
// just its controls.
type Options struct {
	Records []Record
	Columns []Column

	DatasetA *Dataset
	DatasetB *Dataset

	PageSizeOptions []int
	DefaultPageSize int

	EnableSearch        *bool
	EnableColumnFilters *bool
	EnablePagination    *bool
	EnableSort          *bool
	EnableExport        *bool

	EmptyMessage string

	// DateField names the record field the date-range filter reads.
	// Empty means DefaultDateField.
	DateField string

	// SearchText seeds the search box; later external updates arrive
	// via SyncSearch and always win over internal edits.
	SearchText string

	// OnSearchChange is invoked on every engine-internal search edit,
	// including the clear performed by ResetAllFilters.
	OnSearchChange func(string)

	// OnRowClick receives the full record, never the rendered cells.
	OnRowClick func(Record)

	ActionButtons []ActionButton
}

// dataset is a normalized record set.
type dataset struct {
	name    string
	records []Record
	cols    []col
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Grid owns the query state and applies the transitions that drive
// the pipeline. State lives only for the lifetime of the instance.
// A Grid is driven from a single event loop and is not safe for
// concurrent use.
type Grid struct {
	dual   bool
	single dataset
	a, b   dataset
	active string // dataset name, dual mode only

	pageSizeOptions []int
	emptyMessage    string
	dateField       string
	actionButtons   []ActionButton

	searchOn   bool
	filtersOn  bool
	paginateOn bool
	sortOn     bool
	exportOn   bool

	onSearchChange func(string)
	onRowClick     func(Record)

	page         int
	pageSize     int
	sortKey      string
	sortDesc     bool
	search       string
	filters      map[string]string
	dateStart    time.Time
	dateEnd      time.Time
	activePreset DatePreset
}

// New builds a Grid from its options. Construction never fails: a
// misconfigured column set degrades per column instead of erroring.
func New(opts Options) *Grid {
	g := &Grid{
		pageSizeOptions: opts.PageSizeOptions,
		emptyMessage:    opts.EmptyMessage,
		dateField:       opts.DateField,
		actionButtons:   opts.ActionButtons,
		searchOn:        enabled(opts.EnableSearch),
		filtersOn:       enabled(opts.EnableColumnFilters),
		paginateOn:      enabled(opts.EnablePagination),
		sortOn:          enabled(opts.EnableSort),
		exportOn:        enabled(opts.EnableExport),
		onSearchChange:  opts.OnSearchChange,
		onRowClick:      opts.OnRowClick,
		page:            1,
		search:          opts.SearchText,
		filters:         map[string]string{},
	}

	if len(g.pageSizeOptions) == 0 {
		g.pageSizeOptions = DefaultPageSizeOptions
	}
	if g.dateField == "" {
		g.dateField = DefaultDateField
	}

	g.pageSize = opts.DefaultPageSize
	if g.pageSize <= 0 {
		g.pageSize = g.pageSizeOptions[0]
	}

	if opts.DatasetA != nil && opts.DatasetB != nil {
		g.dual = true
		g.a = normalizeDataset(*opts.DatasetA)
		g.b = normalizeDataset(*opts.DatasetB)
		g.active = g.a.name
	} else if opts.DatasetA != nil {
		g.single = normalizeDataset(*opts.DatasetA)
	} else if opts.DatasetB != nil {
		g.single = normalizeDataset(*opts.DatasetB)
	} else {
		g.single = dataset{records: opts.Records, cols: normalizeColumns(opts.Columns)}
	}
	return g
}

func enabled(p *bool) bool {
	return p == nil || *p
}

// clone returns an independent copy for request-scoped use. The copy
// shares the record slices, which the pipeline never mutates, but owns
// its filter map and drops the UI callbacks so transitions replayed on
// it stay invisible to the host.
func (g *Grid) clone() *Grid {
	c := *g
	c.filters = make(map[string]string, len(g.filters))
	for k, v := range g.filters {
		c.filters[k] = v
	}
	c.onSearchChange = nil
	c.onRowClick = nil
	return &c
}

func normalizeDataset(d Dataset) dataset {
	return dataset{name: d.Name, records: d.Records, cols: normalizeColumns(d.Columns)}
}

// current returns the active dataset.
func (g *Grid) current() dataset {
	if !g.dual {
		return g.single
	}
	if g.active == g.b.name {
		return g.b
	}
	return g.a
}

func (g *Grid) state() queryState {
	return queryState{
		search:     g.search,
		filters:    g.filters,
		dateField:  g.dateField,
		dateStart:  g.dateStart,
		dateEnd:    g.dateEnd,
		hasDates:   !g.dateStart.IsZero() && !g.dateEnd.IsZero(),
		sortKey:    g.sortKey,
		sortDesc:   g.sortDesc,
		page:       g.page,
		pageSize:   g.pageSize,
		searchOn:   g.searchOn,
		filtersOn:  g.filtersOn,
		sortOn:     g.sortOn,
		paginateOn: g.paginateOn,
	}
}

// View recomputes the pipeline for the current state. Same state,
// same output; there is no caching to go stale.
func (g *Grid) View() View {
	d := g.current()
	return runPipeline(d.records, d.cols, g.state())
}

// RequestSort toggles asc to desc on a repeated key and starts fresh
// with asc otherwise. Keys that do not resolve to a sortable column
// are ignored. Sorting keeps the current page position; only the
// content reflows.
func (g *Grid) RequestSort(key string) {
	if !g.sortOn || key == "" {
		return
	}
	sortable := false
	for _, c := range g.current().cols {
		if c.id == key && c.sortable {
			sortable = true
			break
		}
	}
	if !sortable {
		return
	}
	if g.sortKey == key && !g.sortDesc {
		g.sortDesc = true
		return
	}
	g.sortKey = key
	g.sortDesc = false
}

// SetSort sets the sort outright, for callers that restore state
// rather than toggle it (the HTTP boundary). Like RequestSort it does
// not reset the page.
func (g *Grid) SetSort(key string, dir SortDirection) {
	if !g.sortOn {
		return
	}
	g.sortKey = key
	g.sortDesc = dir == SortDesc
}

// Sort reports the current sort key and direction.
func (g *Grid) Sort() (string, SortDirection) {
	if g.sortDesc {
		return g.sortKey, SortDesc
	}
	return g.sortKey, SortAsc
}

// SetSearch records an internal search edit, notifies the caller and
// returns to page 1.
func (g *Grid) SetSearch(text string) {
	g.search = text
	g.page = 1
	if g.onSearchChange != nil {
		g.onSearchChange(text)
	}
}

// SyncSearch applies an external (caller-owned) search value. The
// external value wins over internal edits; the sync is one-way, so no
// change callback fires.
func (g *Grid) SyncSearch(text string) {
	if g.search == text {
		return
	}
	g.search = text
	g.page = 1
}

// SearchText returns the current search term.
func (g *Grid) SearchText() string {
	return g.search
}

// SetColumnFilter merges one filter pattern and returns to page 1. An
// empty pattern neutralizes the filter; the entry may remain.
func (g *Grid) SetColumnFilter(key, pattern string) {
	g.filters[key] = pattern
	g.page = 1
}

// ColumnFilters returns a copy of the active filter map.
func (g *Grid) ColumnFilters() map[string]string {
	out := make(map[string]string, len(g.filters))
	for k, v := range g.filters {
		out[k] = v
	}
	return out
}

// DateRangePart selects which bound SetDateRange edits.
type DateRangePart int

const (
	RangeStart DateRangePart = iota
	RangeEnd
)

// SetDateRange edits one bound by hand. Manual edits and presets are
// mutually exclusive, so any active preset marker is cleared. The
// filter itself only engages once both bounds are set.
func (g *Grid) SetDateRange(part DateRangePart, day time.Time) {
	if part == RangeStart {
		g.dateStart = day
	} else {
		g.dateEnd = day
	}
	g.activePreset = ""
	g.page = 1
}

// SelectDatePreset fills both bounds atomically from a named preset
// relative to now and marks it active. Unknown names are ignored.
func (g *Grid) SelectDatePreset(p DatePreset) {
	g.selectDatePresetAt(p, time.Now())
}

func (g *Grid) selectDatePresetAt(p DatePreset, now time.Time) {
	start, end, ok := presetRange(p, now)
	if !ok {
		return
	}
	g.dateStart = start
	g.dateEnd = end
	g.activePreset = p
	g.page = 1
}

// ActivePreset returns the preset marker, empty when a bound has been
// edited by hand or no preset was chosen.
func (g *Grid) ActivePreset() DatePreset {
	return g.activePreset
}

// DateRange returns the current bounds; zero times mean unset.
func (g *Grid) DateRange() (time.Time, time.Time) {
	return g.dateStart, g.dateEnd
}

// ResetAllFilters clears column filters, the date range, the preset
// marker and the search text, notifying the caller of the cleared
// search.
func (g *Grid) ResetAllFilters() {
	g.filters = map[string]string{}
	g.dateStart = time.Time{}
	g.dateEnd = time.Time{}
	g.activePreset = ""
	g.search = ""
	g.page = 1
	if g.onSearchChange != nil {
		g.onSearchChange("")
	}
}

// SetPageSize switches to one of the configured page sizes and
// returns to page 1. Sizes outside the option set are rejected.
func (g *Grid) SetPageSize(n int) {
	for _, opt := range g.pageSizeOptions {
		if n == opt {
			g.pageSize = n
			g.page = 1
			return
		}
	}
}

// GoToPage moves to a valid page. Out-of-range requests are rejected
// outright, not clamped: the current page is retained.
func (g *Grid) GoToPage(n int) {
	if n < 1 || n > g.View().TotalPages {
		return
	}
	g.page = n
}

// Page returns the current 1-based page number.
func (g *Grid) Page() int {
	return g.page
}

// PageSize returns the current page size.
func (g *Grid) PageSize() int {
	return g.pageSize
}

// SetActiveDataset switches the dual-mode toggle. Meaningless names
// and single mode are no-ops.
func (g *Grid) SetActiveDataset(name string) {
	if !g.dual {
		return
	}
	if name != g.a.name && name != g.b.name {
		return
	}
	if name == g.active {
		return
	}
	g.active = name
	g.page = 1
}

// ActiveDataset returns the active dataset name, empty in single mode.
func (g *Grid) ActiveDataset() string {
	if !g.dual {
		return g.single.name
	}
	return g.active
}

// DatasetNames returns the toggle labels in dual mode.
func (g *Grid) DatasetNames() []string {
	if !g.dual {
		return nil
	}
	return []string{g.a.name, g.b.name}
}

// EmptyMessage returns the literal string shown when the visible page
// is empty.
func (g *Grid) EmptyMessage() string {
	return g.emptyMessage
}

// PageSizeOptions returns the configured pager sizes.
func (g *Grid) PageSizeOptions() []int {
	return g.pageSizeOptions
}

// ActionButtons returns the toolbar passthrough list.
func (g *Grid) ActionButtons() []ActionButton {
	return g.actionButtons
}

// RenderRow resolves one record into displayable cells, one per
// column: the render func when the column has one, the raw field
// otherwise. Search, filtering and export never use this path.
func (g *Grid) RenderRow(r Record) []interface{} {
	cols := g.current().cols
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c.display(r)
	}
	return out
}

// ClickRow forwards a row activation to the caller's handler with the
// full record.
func (g *Grid) ClickRow(r Record) {
	if g.onRowClick != nil {
		g.onRowClick(r)
	}
}
