package source

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-dedup/internal/model"
)

// ReadXLSX reads the first sheet of an XLSX export into leads, using the
// header row for column mapping with the same aliases as CSV imports.
func ReadXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("source: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, nil // header only or empty
	}

	headers := rowToStrings(sheet.Rows[0])
	mapper := CSVMapper{}

	var leads []model.Lead
	for _, row := range sheet.Rows[1:] {
		mapped := mapper.MapRow(headers, rowToStrings(row))
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

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
