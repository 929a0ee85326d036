package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-dedup/internal/model"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.xlsx")

	groups := []model.DuplicateGroup{
		{
			ID:           "g1",
			Band:         model.BandExact,
			Similarity:   100,
			PrimaryField: model.FieldEmail,
			Members: []model.Lead{
				{ID: "1", Name: "Maria Silva", Email: "m@x.com"},
				{ID: "2", Name: "Maria S. Silva", Email: "m@x.com"},
			},
		},
	}
	stats := model.DuplicateStats{ExactMatches: 1, TotalGroups: 1}

	require.NoError(t, WriteWorkbook(path, groups, stats))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	summary, ok := f.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Exact matches", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "1", summary.Rows[0].Cells[1].String())
	assert.Equal(t, "Total groups", summary.Rows[4].Cells[0].String())

	sheet, ok := f.Sheet["Groups"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3, "header plus one row per member")
	assert.Equal(t, "Group", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "g1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "exact", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "Email", sheet.Rows[1].Cells[3].String())
	assert.Equal(t, "Maria Silva", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "2", sheet.Rows[2].Cells[4].String())
}

func TestWriteWorkbook_NoGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(path, nil, model.DuplicateStats{}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := f.Sheet["Groups"]
	require.NotNil(t, sheet)
	assert.Len(t, sheet.Rows, 1, "header only")
}
