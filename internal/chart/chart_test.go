package chart

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dietloom-cli/internal/analysis"
	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

func scenario() *dataset.Table {
	mk := func(i int, diet, recipe string, p, c, f float64) dataset.Record {
		return dataset.Record{Index: i, DietType: diet, RecipeName: recipe, Protein: dataset.Some(p), Carbs: dataset.Some(c), Fat: dataset.Some(f)}
	}
	return &dataset.Table{Records: []dataset.Record{
		mk(0, "vegan", "A", 10, 20, 5),
		mk(1, "vegan", "B", 30, 10, 2),
		mk(2, "keto", "C", 5, 1, 40),
	}}
}

func TestRenderWorkbook(t *testing.T) {
	cleaned := analysis.Clean(scenario())
	avg := analysis.GroupAverages(cleaned)
	sel := analysis.TopNPerGroup(cleaned, dataset.Protein, 5)
	path := filepath.Join(t.TempDir(), "outputs", DefaultFile)

	artifacts, err := NewRenderer(nil).Render(path, avg, sel)
	require.NoError(t, err)
	assert.Equal(t, []string{SheetProtein, SheetCarbs, SheetFat, SheetHeatmap, SheetScatter}, artifacts)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range append([]string{SheetData, SheetTop}, artifacts...) {
		assert.Contains(t, sheets, want)
	}
	v, err := f.GetCellValue(SheetData, "A2")
	require.NoError(t, err)
	assert.Equal(t, "keto", v)
	v, err = f.GetCellValue(SheetData, "B3")
	require.NoError(t, err)
	assert.Equal(t, "20", v)

	rows, err := f.GetRows(SheetTop)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"vegan", "B", "30", "2"}, rows[2])

	formats, err := f.GetConditionalFormats(SheetHeatmap)
	require.NoError(t, err)
	assert.NotEmpty(t, formats)
}

func TestRenderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	artifacts, err := NewRenderer(nil).Render(path, nil, analysis.Selection{Field: dataset.Protein})
	require.NoError(t, err)
	assert.Equal(t, []string{SheetData, SheetTop}, artifacts)
}
