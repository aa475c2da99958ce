package checks

import (
	"fmt"
	"sort"

	"purchase-manager/core/database"

	"gorm.io/gorm"
)

// ExpectedSchema lists the columns every migrated table must expose.
var ExpectedSchema = map[string][]string{
	"journal_transactions": {"id", "transaction_id", "product_id", "product_kind", "revoked", "finished", "jws", "created_at"},
	"journal_statuses":     {"id", "group_id", "ownership_type", "state", "jws", "created_at"},
	"kv_entries":           {"entry_key", "value", "updated_at"},
}

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema compares the live tables against ExpectedSchema.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport, len(ExpectedSchema)),
		Errors:  []string{},
	}

	tables := make([]string, 0, len(ExpectedSchema))
	for table := range ExpectedSchema {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		missing, err := database.MissingColumns(db, table, ExpectedSchema[table])
		if err != nil {
			// Partial fail
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}
		if len(missing) > 0 {
			tbl.MissingColumns = missing
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	return report, nil
}
