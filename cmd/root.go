package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	cfgpkg "github.com/KaramelBytes/dietloom-cli/internal/config"
	"github.com/KaramelBytes/dietloom-cli/internal/logging"
	"github.com/KaramelBytes/dietloom-cli/internal/storage"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// HTTP flag (overrides config if set)
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

// openStore builds the blob store for the loaded config. Tests swap it for an in-memory store.
var openStore = func(c *cfgpkg.Global) (storage.BlobStore, error) {
	if c.ConnectionString == "" {
		return nil, apperr.Userf("blob storage is not configured: set DIETLOOM_CONNECTION_STRING, AZURE_STORAGE_CONNECTION_STRING, or 'dietloom config set connection_string <value>'")
	}
	return storage.NewAzureStore(storage.AzureOptions{
		ConnectionString: c.ConnectionString,
		APIVersion:       c.APIVersion,
		TryTimeout:       time.Duration(c.HTTPTimeoutSec) * time.Second,
	})
}

var rootCmd = &cobra.Command{
	Use:   "dietloom",
	Short: "DietLoom CLI: macronutrient reports from the diet recipes dataset",
	Long: `DietLoom loads the diet recipes table from a local file or blob storage (Azure or Azurite),
computes per-diet macronutrient averages, top protein recipes and derived ratios,
and writes a JSON report plus a chart workbook.`,
}

// RootCmd returns the command tree for main.
func RootCmd() *cobra.Command { return rootCmd }

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dietloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "blob request timeout in seconds (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = cfgpkg.Load(cfgFile)
	if cfgErr != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", cfgErr)
		return
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("load config: %w", cfgErr)
		}
		return nil, apperr.Userf("no config loaded")
	}
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) *slog.Logger {
	lc := logging.Config{Level: c.LogLevel, Format: c.LogFormat}
	if debug {
		lc.Level = "debug"
	}
	return logging.New(os.Stderr, lc)
}
