package datagrid

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// reservedParams are query keys with a fixed meaning; everything else
// is treated as a column filter.
var reservedParams = map[string]bool{
	"search":    true,
	"sort":      true,
	"page":      true,
	"page_size": true,
	"dataset":   true,
	"date_from": true,
	"date_to":   true,
	"preset":    true,
	"format":    true,
	"code":      true,
	"_":         true,
}

// RequestParams captures search, sort, filters and pagination from
// the request.
type RequestParams struct {
	Search   string
	Sort     []string // list of "field:dir"
	Filters  map[string]string
	Page     int
	PageSize int
	Dataset  string
	DateFrom string
	DateTo   string
	Preset   string
	Format   string
}

// ColumnInfo is the part of a column the client needs to render a
// header and request sorts.
type ColumnInfo struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

// TableResult is the JSON payload rendered by the client-side table.
type TableResult struct {
	Records      []Record     `json:"records"`
	TotalCount   int          `json:"total_count"`
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
	TotalPages   int          `json:"total_pages"`
	Columns      []ColumnInfo `json:"columns"`
	Dataset      string       `json:"dataset,omitempty"`
	EmptyMessage string       `json:"empty_message,omitempty"`
}

// Handler exposes one Grid over HTTP. The grid itself is single
// threaded, so the handler never touches it after construction: each
// request replays its parameters onto a private copy, which also means
// requests start from the configured defaults rather than whatever the
// previous request left behind.
type Handler struct {
	Grid  *Grid // configured baseline, read-only once serving
	Title string
	Log   *slog.Logger
}

func NewHandler(g *Grid, title string) *Handler {
	return &Handler{Grid: g, Title: title}
}

// ParseParams reads the recognized query parameters. Unknown keys
// become column filters, first value wins.
func (h *Handler) ParseParams(r *http.Request) RequestParams {
	q := r.URL.Query()

	page := 1
	if p := q.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			page = n
		}
	}
	pageSize := 0
	if ps := q.Get("page_size"); ps != "" {
		if n, err := strconv.Atoi(ps); err == nil {
			pageSize = n
		}
	}

	filters := make(map[string]string)
	for key, values := range q {
		if !reservedParams[key] && len(values) > 0 {
			filters[key] = values[0]
		}
	}

	return RequestParams{
		Search:   q.Get("search"),
		Sort:     q["sort"],
		Filters:  filters,
		Page:     page,
		PageSize: pageSize,
		Dataset:  q.Get("dataset"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Preset:   q.Get("preset"),
		Format:   q.Get("format"),
	}
}

// Apply replays the request parameters onto a copy of the baseline
// grid and returns it. Parameters a request omits fall back to the
// configured defaults; the explicit page is applied last because every
// other transition resets it.
func (h *Handler) Apply(p RequestParams) *Grid {
	g := h.Grid.clone()

	if p.Dataset != "" {
		g.SetActiveDataset(p.Dataset)
	}
	if p.Search != "" {
		g.SetSearch(p.Search)
	}
	for key, pattern := range p.Filters {
		g.SetColumnFilter(key, pattern)
	}

	if p.Preset != "" {
		g.SelectDatePreset(DatePreset(p.Preset))
	} else {
		if t, err := time.ParseInLocation("2006-01-02", p.DateFrom, time.Local); err == nil {
			g.SetDateRange(RangeStart, t)
		}
		if t, err := time.ParseInLocation("2006-01-02", p.DateTo, time.Local); err == nil {
			g.SetDateRange(RangeEnd, t)
		}
	}

	for _, s := range p.Sort {
		field, dir, ok := splitSort(s)
		if !ok {
			continue
		}
		g.SetSort(field, dir)
		break // the engine sorts by a single key
	}

	if p.PageSize > 0 {
		g.SetPageSize(p.PageSize)
	}
	g.GoToPage(p.Page)
	return g
}

func splitSort(s string) (string, SortDirection, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" {
		return "", SortAsc, false
	}
	dir := SortAsc
	if strings.EqualFold(parts[1], string(SortDesc)) {
		dir = SortDesc
	}
	return parts[0], dir, true
}

// Result materializes the grid's current page as a TableResult.
func (h *Handler) Result(g *Grid) TableResult {
	view := g.View()

	cols := g.current().cols
	infos := make([]ColumnInfo, 0, len(cols))
	for _, c := range cols {
		infos = append(infos, ColumnInfo{Key: c.id, Label: c.label, Sortable: c.sortable})
	}

	res := TableResult{
		Records:    view.Page,
		TotalCount: view.Total,
		Page:       g.Page(),
		PageSize:   g.PageSize(),
		TotalPages: view.TotalPages,
		Columns:    infos,
		Dataset:    g.ActiveDataset(),
	}
	if len(view.Page) == 0 {
		res.EmptyMessage = g.EmptyMessage()
	}
	return res
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := h.ParseParams(r)
	g := h.Apply(params)

	if params.Format == "csv" {
		name, data := g.Export(h.Title)
		if data == nil {
			http.Error(w, "export is disabled", http.StatusForbidden)
			return
		}
		if h.Log != nil {
			h.Log.Info("csv export", "file", name, "bytes", len(data))
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Write(data)
		return
	}

	result := h.Result(g)
	if h.Log != nil {
		h.Log.Debug("grid request",
			"search", params.Search,
			"filters", len(params.Filters),
			"page", result.Page,
			"total", result.TotalCount)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
