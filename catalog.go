package datagrid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Catalog is the JSON document that drives a grid's column schema:
// one or more objects with typed, multi-language columns, plus a
// datagrid section with defaults and per-column overrides.
type Catalog struct {
	Version  string          `json:"version"`
	Title    string          `json:"title,omitempty"`
	Objects  []CatalogObject `json:"objects"`
	Datagrid CatalogGrid     `json:"datagrid,omitempty"`
}

type CatalogObject struct {
	Name    string          `json:"name"`
	Columns []CatalogColumn `json:"columns"`
}

type CatalogColumn struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Labels map[string]string `json:"labels"`
}

type CatalogGrid struct {
	Defaults   GridDefaults              `json:"defaults"`
	Columns    map[string]ColumnOverride `json:"columns"`
	Searchable []string                  `json:"searchable_columns"`
}

// GridDefaults seed a Grid built from a catalog.
type GridDefaults struct {
	PageSize      int    `json:"page_size"`
	SortColumn    string `json:"sort_column"`
	SortDirection string `json:"sort_direction"`
	Search        string `json:"search"`
	DateField     string `json:"date_field,omitempty"`
}

type ColumnOverride struct {
	Visible *bool             `json:"visible"`
	Labels  map[string]string `json:"labels"`
}

// ColumnsFromCatalog builds the column set for the catalog's first
// object. Labels resolve by language with an "en" fallback, then the
// raw column name. Columns hidden by an override are dropped rather
// than flagged, so the grid and its export agree on the visible set.
func ColumnsFromCatalog(data []byte, lang string) (string, []Column, GridDefaults, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return "", nil, GridDefaults{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Objects) == 0 {
		return "", nil, GridDefaults{}, fmt.Errorf("no objects found in catalog")
	}

	obj := cat.Objects[0]
	cols := []Column{}
	for _, c := range obj.Columns {
		label := c.Name
		if l, ok := c.Labels[lang]; ok {
			label = l
		} else if l, ok := c.Labels["en"]; ok {
			label = l
		}

		if override, ok := cat.Datagrid.Columns[c.Name]; ok {
			if override.Visible != nil && !*override.Visible {
				continue
			}
			if l, ok := override.Labels[lang]; ok {
				label = l
			} else if l, ok := override.Labels["en"]; ok {
				label = l
			}
		}

		cols = append(cols, Column{
			Key:    c.Name,
			Header: label,
		})
	}

	return obj.Name, cols, cat.Datagrid.Defaults, nil
}

// LoadCatalogColumns is ColumnsFromCatalog over a file path.
func LoadCatalogColumns(path, lang string) (string, []Column, GridDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, GridDefaults{}, err
	}
	return ColumnsFromCatalog(data, lang)
}

// ValidateCatalog checks a catalog document against a JSON schema.
// It returns the list of violations; a nil, nil result means the
// document is valid.
func ValidateCatalog(schemaPath, catalogPath string) ([]string, error) {
	absSchema, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	absCatalog, err := filepath.Abs(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + absSchema)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + absCatalog)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", filepath.Base(catalogPath), err)
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues, nil
}

// GridFromCatalog assembles a single-dataset grid from catalog bytes
// and pre-fetched records, applying the catalog defaults.
func GridFromCatalog(data []byte, lang string, records []Record) (*Grid, error) {
	_, cols, def, err := ColumnsFromCatalog(data, lang)
	if err != nil {
		return nil, err
	}

	g := New(Options{
		Records:         records,
		Columns:         cols,
		DefaultPageSize: def.PageSize,
		SearchText:      def.Search,
		DateField:       def.DateField,
	})
	if def.SortColumn != "" {
		dir := SortAsc
		if strings.EqualFold(def.SortDirection, string(SortDesc)) {
			dir = SortDesc
		}
		g.SetSort(def.SortColumn, dir)
	}
	return g, nil
}
