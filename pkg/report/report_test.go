package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	return Table{
		Title:       "Residents - Iba",
		GeneratedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Columns:     []string{"Username", "Name", "Status", "Registered"},
		Rows: [][]string{
			{"resident1", "Juan Dela Cruz", "verified", "2026-01-15"},
			{"resident2", "Maria Clara", "pending", "2026-02-20"},
		},
	}
}

func TestWritePDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "users.pdf")
	require.NoError(t, WritePDF(sampleTable(), out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, len(raw) > 4 && string(raw[:4]) == "%PDF")
}

func TestWritePDFRequiresColumns(t *testing.T) {
	err := WritePDF(Table{Title: "empty"}, filepath.Join(t.TempDir(), "x.pdf"))
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "users.xlsx")
	require.NoError(t, WriteXLSX(sampleTable(), out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Username", header)

	cell, err := f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Maria Clara", cell)
}

func TestWriteXLSXShortRowsPadded(t *testing.T) {
	tbl := sampleTable()
	tbl.Rows = append(tbl.Rows, []string{"resident3"})
	out := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, WriteXLSX(tbl, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	cell, err := f.GetCellValue("Sheet1", "C4")
	require.NoError(t, err)
	assert.Equal(t, "", cell)
}
