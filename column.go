package datagrid

// Record is a single grid row: an opaque mapping from field name to
// value. The engine never assumes a fixed schema; fields are read only
// through column accessors.
type Record map[string]interface{}

// Column describes one displayed field. Key/Accessor and Header/Title
// are accepted as aliases out of historical inconsistency in older
// catalogs; they are normalized once at construction rather than
// branched on throughout the pipeline.
type Column struct {
	Key      string `json:"key,omitempty"`
	Accessor string `json:"accessor,omitempty"`
	Header   string `json:"header,omitempty"`
	Title    string `json:"title,omitempty"`

	// Sortable defaults to true when nil.
	Sortable *bool `json:"sortable,omitempty"`

	// Cell overrides raw field access for rendering only. Search,
	// filtering and export always read the underlying field.
	Cell func(Record) interface{} `json:"-"`

	// Layout hints, passed through to the presentation layer.
	Width    string `json:"width,omitempty"`
	MinWidth string `json:"min_width,omitempty"`
}

// col is the canonical column the pipeline works with.
type col struct {
	id       string // sort key and filter key: Key, falling back to Accessor
	accessor string // field to read: Accessor, falling back to Key
	label    string // display label: Header, falling back to Title
	csvLabel string // export header: Title, falling back to Header
	sortable bool
	render   func(Record) interface{}
}

// normalizeColumns resolves the alias pairs into canonical columns.
// A column with neither key nor accessor keeps its label but becomes a
// no-op: it renders nothing and participates in neither search, sort
// nor filtering.
func normalizeColumns(columns []Column) []col {
	out := make([]col, 0, len(columns))
	for _, c := range columns {
		id := c.Key
		if id == "" {
			id = c.Accessor
		}
		accessor := c.Accessor
		if accessor == "" {
			accessor = c.Key
		}
		label := c.Header
		if label == "" {
			label = c.Title
		}
		if label == "" {
			label = id
		}
		csvLabel := c.Title
		if csvLabel == "" {
			csvLabel = c.Header
		}
		if csvLabel == "" {
			csvLabel = id
		}
		out = append(out, col{
			id:       id,
			accessor: accessor,
			label:    label,
			csvLabel: csvLabel,
			sortable: c.Sortable == nil || *c.Sortable,
			render:   c.Cell,
		})
	}
	return out
}

// value reads the raw field for this column, ignoring any render func.
func (c col) value(r Record) interface{} {
	if c.accessor == "" {
		return nil
	}
	return r[c.accessor]
}

// display resolves the cell as shown: the render func when present,
// the raw field otherwise.
func (c col) display(r Record) interface{} {
	if c.render != nil {
		return c.render(r)
	}
	return c.value(r)
}
