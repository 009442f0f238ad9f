package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	cfgpkg "github.com/KaramelBytes/dietloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DietLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "connection_string: %s\n", mask(cfg.ConnectionString))
		if cfg.APIVersion != "" {
			fmt.Fprintf(out, "api_version: %s\n", cfg.APIVersion)
		}
		fmt.Fprintf(out, "container: %s\n", cfg.Container)
		fmt.Fprintf(out, "blob_name: %s\n", cfg.BlobName)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "results_file: %s\n", cfg.ResultsFile)
		fmt.Fprintf(out, "charts_file: %s\n", cfg.ChartsFile)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "decimal_separator: %s\n", cfg.DecimalSeparator)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		if cfg.MetricsTextfile != "" {
			fmt.Fprintf(out, "metrics_textfile: %s\n", cfg.MetricsTextfile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "connection_string":
			next.ConnectionString = val
		case "api_version":
			next.APIVersion = val
		case "container":
			next.Container = val
		case "blob_name":
			next.BlobName = val
		case "output_dir":
			next.OutputDir = val
		case "results_file":
			next.ResultsFile = val
		case "charts_file":
			next.ChartsFile = val
		case "metrics_textfile":
			next.MetricsTextfile = val
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil {
				return apperr.Userf("invalid int for top_n: %v", val)
			}
			next.TopN = i
		case "decimal_separator":
			switch strings.ToLower(val) {
			case ".", "dot":
				next.DecimalSeparator = "."
			case ",", "comma":
				next.DecimalSeparator = ","
			default:
				return apperr.Userf("invalid decimal_separator: %s (use '.' or ',')", val)
			}
		case "sheet_name":
			next.SheetName = val
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "log_format":
			next.LogFormat = strings.ToLower(val)
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return apperr.Userf("invalid int for http_timeout_sec: %v", val)
			}
			next.HTTPTimeoutSec = i
		default:
			return apperr.Userf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
