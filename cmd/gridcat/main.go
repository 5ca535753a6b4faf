// gridcat validates grid catalog documents against a JSON schema and
// prints the column set each one produces.
package main

import (
	"fmt"
	"os"

	"github.com/crmkit/datagrid"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: gridcat <schema_path> <catalog_path1> [catalog_path2] ...")
		os.Exit(1)
	}

	schemaPath := os.Args[1]
	allValid := true

	for _, catalogPath := range os.Args[2:] {
		issues, err := datagrid.ValidateCatalog(schemaPath, catalogPath)
		if err != nil {
			fmt.Printf("error: %s: %v\n", catalogPath, err)
			allValid = false
			continue
		}
		if len(issues) > 0 {
			fmt.Printf("invalid: %s\n", catalogPath)
			for _, issue := range issues {
				fmt.Printf("  - %s\n", issue)
			}
			allValid = false
			continue
		}

		table, cols, defaults, err := datagrid.LoadCatalogColumns(catalogPath, "en")
		if err != nil {
			fmt.Printf("error: %s: %v\n", catalogPath, err)
			allValid = false
			continue
		}

		fmt.Printf("valid: %s (object %q, %d visible columns", catalogPath, table, len(cols))
		if defaults.SortColumn != "" {
			fmt.Printf(", default sort %s %s", defaults.SortColumn, defaults.SortDirection)
		}
		fmt.Println(")")
	}

	if !allValid {
		os.Exit(1)
	}
}
