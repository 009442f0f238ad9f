package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/dietloom-cli/internal/config"
	"github.com/KaramelBytes/dietloom-cli/internal/storage"
)

const dietsCSV = `Diet_type,Recipe_name,Cuisine_type,Protein(g),Carbs(g),Fat(g)
vegan,A,asian,10,20,5
vegan,B,italian,30,10,2
keto,C,american,5,1,40
keto,D,american,9,0,
`

// resetFlags restores every flag to its default so bound variables do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd is a helper to execute the root command with args and capture stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// setupEnv isolates HOME and outputs in a temp dir.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AZURE_STORAGE_CONNECTION_STRING", "")
	t.Setenv("DIETLOOM_CONNECTION_STRING", "")
	t.Setenv("DIETLOOM_OUTPUT_DIR", filepath.Join(home, "outputs"))
	return home
}

// useMemoryStore swaps the Azure client for an in-memory store for the test.
func useMemoryStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	prev := openStore
	openStore = func(*cfgpkg.Global) (storage.BlobStore, error) { return store, nil }
	t.Cleanup(func() { openStore = prev })
	return store
}

func TestCLI_AnalyzeEndToEnd(t *testing.T) {
	home := setupEnv(t)
	src := filepath.Join(home, "All_Diets.csv")
	if err := os.WriteFile(src, []byte(dietsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(home, "outputs", "nosql_results.json")

	out := mustRun(t, "analyze", src, "--json", jsonPath, "--extended", "--ratios", "10")

	for _, want := range []string{
		"[AVERAGE MACRONUTRIENTS]",
		"| vegan | 2 | 20.00 | 15.00 | 3.50 |",
		"[TOP 5 PROTEIN RECIPES]",
		"[DERIVED RATIOS]",
		"undefined",
		"✓ Charts saved to",
		"✓ Results saved to",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(home, "outputs", "charts.xlsx")); err != nil {
		t.Fatalf("charts workbook missing: %v", err)
	}

	b, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	var doc struct {
		TotalRecords int              `json:"total_records"`
		DietTypes    int              `json:"diet_types"`
		Ratios       []map[string]any `json:"ratios"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if doc.TotalRecords != 3 || doc.DietTypes != 2 || len(doc.Ratios) != 4 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestCLI_AnalyzeMarkdownOutput(t *testing.T) {
	home := setupEnv(t)
	src := filepath.Join(home, "diets.tsv")
	tsv := strings.ReplaceAll(dietsCSV, ",", "\t")
	if err := os.WriteFile(src, []byte(tsv), 0o644); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(home, "summary.md")

	out := mustRun(t, "analyze", src, "--no-charts", "-o", md)
	if !strings.Contains(out, "✓ Wrote analysis to") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "| keto | C | 5 |") {
		t.Fatalf("summary missing top recipe:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(home, "outputs", "charts.xlsx")); !os.IsNotExist(err) {
		t.Fatalf("charts should be skipped, stat err=%v", err)
	}
}

func TestCLI_AnalyzeMissingFile(t *testing.T) {
	home := setupEnv(t)
	_, err := execCmd(t, "analyze", filepath.Join(home, "nope.csv"), "--no-charts")
	if err == nil || !strings.Contains(err.Error(), "source unavailable") {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestCLI_UploadListRun(t *testing.T) {
	home := setupEnv(t)
	store := useMemoryStore(t)
	src := filepath.Join(home, "All_Diets.csv")
	if err := os.WriteFile(src, []byte(dietsCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, "upload", src, "--container", "diet-data")
	if !strings.Contains(out, "✓ Created container 'diet-data'") || !strings.Contains(out, "- All_Diets.csv (") {
		t.Fatalf("unexpected upload output:\n%s", out)
	}
	out = mustRun(t, "upload", src, "--container", "diet-data")
	if !strings.Contains(out, "⚠ Container 'diet-data' already exists") {
		t.Fatalf("expected existing container warning:\n%s", out)
	}

	out = mustRun(t, "list", "--container", "diet-data")
	if !strings.Contains(out, "Blobs in 'diet-data':") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out = mustRun(t, "run", "--container", "diet-data", "--charts", "--publish", "results/nosql_results.json")
	for _, want := range []string{"STEP 1", "STEP 2", "STEP 3", "✓ Analyzed 2 diet types", "COMPLETED SUCCESSFULLY"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in run output:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(home, "outputs", "nosql_results.json")); err != nil {
		t.Fatalf("results missing: %v", err)
	}
	if _, err := store.Get(context.Background(), "diet-data", "results/nosql_results.json"); err != nil {
		t.Fatalf("published report missing: %v", err)
	}
}

func TestCLI_RunMissingBlob(t *testing.T) {
	setupEnv(t)
	useMemoryStore(t)
	out, err := execCmd(t, "run", "--container", "diet-data")
	if err == nil {
		t.Fatalf("expected failure, output:\n%s", out)
	}
	if !strings.Contains(out, "✗ load:") || strings.Contains(out, "STEP 2") {
		t.Fatalf("unexpected run output:\n%s", out)
	}
}

func TestCLI_RunWithoutConnectionString(t *testing.T) {
	setupEnv(t)
	_, err := execCmd(t, "run")
	if err == nil || !strings.Contains(err.Error(), "blob storage is not configured") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := setupEnv(t)
	mustRun(t, "config", "set", "top_n", "7")
	mustRun(t, "config", "set", "connection_string", "UseDevelopmentStorage=true")
	if _, err := os.Stat(filepath.Join(home, ".dietloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}

	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "top_n: 7") {
		t.Fatalf("top_n not persisted:\n%s", out)
	}
	if strings.Contains(out, "UseDevelopmentStorage=true") || !strings.Contains(out, "connection_string: Use****rue") {
		t.Fatalf("connection string not masked:\n%s", out)
	}

	if _, err := execCmd(t, "config", "set", "top_n", "0"); err == nil {
		t.Fatal("expected validation error for top_n=0")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
}
