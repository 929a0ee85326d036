// Package source loads leads from external systems for import into the local
// lead database.
package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dedup/internal/model"
)

// columnAliases maps lowercased CSV header names to lead fields. Exports from
// different CRMs label the same columns differently.
var columnAliases = map[string]string{
	"id":          "id",
	"lead id":     "id",
	"name":        "name",
	"full name":   "name",
	"email":       "email",
	"e-mail":      "email",
	"phone":       "phone",
	"telephone":   "phone",
	"mobile":      "phone",
	"document":    "document",
	"document id": "document",
	"cpf":         "document",
	"tax id":      "document",
	"company":     "company",
	"account":     "company",
	"notes":       "notes",
	"description": "notes",
	"created at":  "created_at",
	"created":     "created_at",
}

// CSVMapper maps a CSV row to a flat key-value map using the header row.
type CSVMapper struct{}

// MapRow pairs each canonical field with the corresponding value in the row.
// Unrecognized headers are dropped; missing trailing values become empty.
func (m CSVMapper) MapRow(headers []string, row []string) map[string]string {
	result := make(map[string]string, len(headers))
	for i, h := range headers {
		field, known := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !known {
			continue
		}
		if i < len(row) {
			result[field] = strings.TrimSpace(row[i])
		} else {
			result[field] = ""
		}
	}
	return result
}

// ReadCSV reads a header-mapped CSV export into leads. Rows without a name
// are skipped; a missing created_at or one that fails to parse is left zero
// so the store can stamp it at insert time.
func ReadCSV(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("source: open csv %s", path))
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "source: read csv")
	}

	if len(records) < 2 {
		return nil, nil // header only or empty
	}

	headers := records[0]
	mapper := CSVMapper{}

	var leads []model.Lead
	for _, row := range records[1:] {
		mapped := mapper.MapRow(headers, row)
		if mapped["name"] == "" {
			continue
		}

		lead := model.Lead{
			ID:         mapped["id"],
			Name:       mapped["name"],
			Email:      mapped["email"],
			Phone:      mapped["phone"],
			DocumentID: mapped["document"],
			Company:    mapped["company"],
			Notes:      mapped["notes"],
		}
		if raw := mapped["created_at"]; raw != "" {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				lead.CreatedAt = ts.UTC()
			}
		}
		leads = append(leads, lead)
	}

	return leads, nil
}
