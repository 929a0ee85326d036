// Package report renders duplicate scan results into review artifacts.
package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-dedup/internal/model"
)

// WriteWorkbook writes a review workbook with a Summary sheet of band counts
// and a Groups sheet listing every group member, one row per lead.
func WriteWorkbook(path string, groups []model.DuplicateGroup, stats model.DuplicateStats) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, stats); err != nil {
		return err
	}
	if err := addGroupsSheet(f, groups); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, stats model.DuplicateStats) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	for _, line := range [][2]string{
		{"Exact matches", fmt.Sprint(stats.ExactMatches)},
		{"High similarity", fmt.Sprint(stats.HighSimilarity)},
		{"Medium similarity", fmt.Sprint(stats.MediumSimilarity)},
		{"Low similarity", fmt.Sprint(stats.LowSimilarity)},
		{"Total groups", fmt.Sprint(stats.TotalGroups)},
	} {
		row := sheet.AddRow()
		row.AddCell().Value = line[0]
		row.AddCell().Value = line[1]
	}
	return nil
}

var groupHeaders = []string{
	"Group", "Band", "Similarity", "Primary Field",
	"Lead ID", "Name", "Email", "Phone", "Document ID", "Company", "Created At",
}

func addGroupsSheet(f *xlsx.File, groups []model.DuplicateGroup) error {
	sheet, err := f.AddSheet("Groups")
	if err != nil {
		return eris.Wrap(err, "report: add groups sheet")
	}

	header := sheet.AddRow()
	for _, h := range groupHeaders {
		header.AddCell().Value = h
	}

	for _, g := range groups {
		for _, m := range g.Members {
			row := sheet.AddRow()
			row.AddCell().Value = g.ID
			row.AddCell().Value = string(g.Band)
			row.AddCell().Value = fmt.Sprint(g.Similarity)
			row.AddCell().Value = g.PrimaryField.Label()
			row.AddCell().Value = m.ID
			row.AddCell().Value = m.Name
			row.AddCell().Value = m.Email
			row.AddCell().Value = m.Phone
			row.AddCell().Value = m.DocumentID
			row.AddCell().Value = m.Company
			if !m.CreatedAt.IsZero() {
				row.AddCell().Value = m.CreatedAt.UTC().Format("2006-01-02 15:04:05")
			} else {
				row.AddCell().Value = ""
			}
		}
	}
	return nil
}
