package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	"github.com/KaramelBytes/dietloom-cli/internal/chart"
	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
	"github.com/KaramelBytes/dietloom-cli/internal/report"
	"github.com/KaramelBytes/dietloom-cli/internal/storage"
)

const dietsCSV = `Diet_type,Recipe_name,Cuisine_type,Protein(g),Carbs(g),Fat(g)
vegan,A,asian,10,20,5
vegan,B,italian,30,10,2
keto,C,american,5,1,40
keto,D,american,9,0,
`

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newRunner(t *testing.T, store storage.BlobStore) (*Runner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r := NewRunner(store, &out, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r.Serializer = report.Serializer{Now: func() time.Time { return fixedNow }}
	return r, &out
}

func seeded(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_, err := store.EnsureContainer(ctx, "diet-data")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "diet-data", "All_Diets.csv", []byte(dietsCSV)))
	return store
}

func TestProcess(t *testing.T) {
	raw, err := dataset.Decode("All_Diets.csv", []byte(dietsCSV), dataset.DefaultOptions())
	require.NoError(t, err)

	sum := Process(raw, 1)
	assert.Equal(t, 4, sum.Raw.Len())
	assert.Equal(t, 3, sum.Cleaned.Len())
	assert.Equal(t, []string{"keto", "vegan"}, sum.Averages.Keys())
	assert.Equal(t, 2, sum.Top.Len())
	assert.Len(t, sum.Ratios, 4)

	empty := Process(nil, 5)
	assert.Equal(t, 0, empty.Cleaned.Len())
	assert.Empty(t, empty.Averages)
}

func TestRunFromBlob(t *testing.T) {
	store := seeded(t)
	dir := t.TempDir()
	r, out := newRunner(t, store)

	res, err := r.Run(context.Background(), Options{
		Source:           dataset.BlobSource("diet-data", "All_Diets.csv"),
		TopN:             5,
		ResultsPath:      filepath.Join(dir, "outputs", "nosql_results.json"),
		ChartsPath:       filepath.Join(dir, "outputs", chart.DefaultFile),
		PublishContainer: "diet-data",
		PublishBlob:      "results/nosql_results.json",
		MetricsTextfile:  filepath.Join(dir, "dietloom.prom"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Charts, 5)
	assert.Equal(t, "memory://diet-data/results/nosql_results.json", res.Published)

	b, err := os.ReadFile(res.ResultsPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, float64(3), doc["total_records"])
	assert.Equal(t, float64(2), doc["diet_types"])
	assert.Equal(t, "2025-03-14T09:26:53Z", doc["timestamp"])

	published, err := store.Get(context.Background(), "diet-data", "results/nosql_results.json")
	require.NoError(t, err)
	assert.Equal(t, b, published)

	console := out.String()
	for _, want := range []string{
		"STEP 1: Loading blob://diet-data/All_Diets.csv",
		"✓ Loaded 4 records",
		"✓ Processed 3 records",
		"✓ Analyzed 2 diet types",
		"⚠ Excluded 1 incomplete records",
		"✓ Results saved to",
		"DIETLOOM RUN COMPLETED SUCCESSFULLY",
	} {
		assert.Contains(t, console, want)
	}

	prom, err := os.ReadFile(filepath.Join(dir, "dietloom.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `dietloom_records{kind="excluded"} 1`)
	assert.Contains(t, string(prom), "dietloom_last_success_timestamp_seconds")
	assert.Contains(t, string(prom), `dietloom_stage_failed{stage="process"} 0`)
}

func TestRunExtended(t *testing.T) {
	r, _ := newRunner(t, seeded(t))
	path := filepath.Join(t.TempDir(), "results.json")

	_, err := r.Run(context.Background(), Options{
		Source:      dataset.BlobSource("diet-data", "All_Diets.csv"),
		ResultsPath: path,
		Extended:    true,
	})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Ratios []map[string]any `json:"ratios"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Len(t, doc.Ratios, 4)
	assert.Nil(t, doc.Ratios[3]["Protein_to_Carbs_ratio"], "zero carbs")
}

func TestRunStopsAtMissingBlob(t *testing.T) {
	dir := t.TempDir()
	r, out := newRunner(t, storage.NewMemoryStore())
	results := filepath.Join(dir, "results.json")

	_, err := r.Run(context.Background(), Options{
		Source:          dataset.BlobSource("diet-data", "All_Diets.csv"),
		ResultsPath:     results,
		MetricsTextfile: filepath.Join(dir, "dietloom.prom"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrSourceUnavailable))
	assert.Equal(t, dataset.StageLoad, apperr.StageOf(err))
	assert.Contains(t, out.String(), "✗ load:")
	assert.NotContains(t, out.String(), "STEP 2")
	assert.NoFileExists(t, results)

	prom, err := os.ReadFile(filepath.Join(dir, "dietloom.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `dietloom_stage_failed{stage="load"} 1`)
	assert.Contains(t, string(prom), "dietloom_last_success_timestamp_seconds 0")
}

func TestRunParseError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "All_Diets.csv")
	require.NoError(t, os.WriteFile(src, []byte("Recipe_name,Protein(g)\nA,1\n"), 0o644))
	r, _ := newRunner(t, nil)

	_, err := r.Run(context.Background(), Options{Source: dataset.FileSource(src), ResultsPath: filepath.Join(dir, "r.json")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrParse))
}

func TestRunWriteErrorKeepsPriorFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "All_Diets.csv")
	require.NoError(t, os.WriteFile(src, []byte(dietsCSV), 0o644))
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("prior"), 0o644))
	r, out := newRunner(t, nil)

	_, err := r.Run(context.Background(), Options{
		Source:      dataset.FileSource(src),
		ResultsPath: filepath.Join(blocker, "results.json"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrWrite))
	assert.Equal(t, report.StageSave, apperr.StageOf(err))
	assert.True(t, strings.Contains(out.String(), "✗ save:"))

	b, err := os.ReadFile(blocker)
	require.NoError(t, err)
	assert.Equal(t, "prior", string(b))
}

func TestRunPublishWithoutStore(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "All_Diets.csv")
	require.NoError(t, os.WriteFile(src, []byte(dietsCSV), 0o644))
	r, _ := newRunner(t, nil)

	_, err := r.Run(context.Background(), Options{
		Source:           dataset.FileSource(src),
		ResultsPath:      filepath.Join(dir, "r.json"),
		PublishContainer: "diet-data",
		PublishBlob:      "r.json",
	})
	require.Error(t, err)
	assert.Equal(t, report.StagePublish, apperr.StageOf(err))
}
