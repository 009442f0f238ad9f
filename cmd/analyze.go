package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	"github.com/KaramelBytes/dietloom-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/dietloom-cli/internal/config"
	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
	"github.com/KaramelBytes/dietloom-cli/internal/pipeline"
	"github.com/KaramelBytes/dietloom-cli/internal/report"
	"github.com/KaramelBytes/dietloom-cli/internal/utils"
)

var (
	anaOutputPath string
	anaJSONPath   string
	anaExtended   bool
	anaTopN       int
	anaTopRows    int
	anaRatioRows  int
	anaNoCharts   bool
	anaChartsPath string
	anaDelimiter  string
	anaDecimal    string
	anaSheetName  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Process a local CSV/TSV/XLSX: print averages and top recipes, render charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		logger := newLogger(c)

		opt := loaderOptions(c)
		if anaDelimiter != "" {
			switch anaDelimiter {
			case ",":
				opt.Delimiter = ','
			case "\t", "tab":
				opt.Delimiter = '\t'
			case ";":
				opt.Delimiter = ';'
			default:
				return apperr.Userf("unsupported --delimiter: %s", anaDelimiter)
			}
		}
		switch strings.ToLower(strings.TrimSpace(anaDecimal)) {
		case ",", "comma":
			opt.DecimalSeparator = ','
		case ".", "dot":
			opt.DecimalSeparator = '.'
		case "":
		default:
			return apperr.Userf("unsupported --decimal: %s (use '.'|'comma')", anaDecimal)
		}
		if anaSheetName != "" {
			opt.SheetName = anaSheetName
		}
		topN := c.TopN
		if anaTopN > 0 {
			topN = anaTopN
		}

		loader := dataset.NewLoader(nil, logger)
		loader.Options = opt
		raw, err := loader.Load(cmd.Context(), dataset.FileSource(args[0]))
		if err != nil {
			return err
		}
		sum := pipeline.Process(raw, topN)
		sum.TopRows = anaTopRows
		sum.RatioRows = anaRatioRows
		md := sum.Markdown()

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
				return apperr.WriteError(report.StageSave, fmt.Errorf("write output: %w", err))
			}
			fmt.Fprintf(out, "✓ Wrote analysis to %s\n", anaOutputPath)
		} else {
			fmt.Fprintln(out, md)
		}

		if !anaNoCharts {
			path := c.ChartsPath()
			if anaChartsPath != "" {
				path = anaChartsPath
			}
			artifacts, err := chart.NewRenderer(logger).Render(path, sum.Averages, sum.Top)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Charts saved to %s (%s)\n", path, strings.Join(artifacts, ", "))
		}

		if anaJSONPath != "" {
			var s report.Serializer
			var doc any
			if anaExtended {
				doc = s.SerializeExtended(sum.Cleaned, sum.Averages, sum.Top, sum.Ratios)
			} else {
				doc = s.Serialize(sum.Cleaned, sum.Averages, sum.Top)
			}
			if err := report.WriteFile(doc, anaJSONPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Results saved to %s\n", anaJSONPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	analyzeCmd.Flags().StringVar(&anaJSONPath, "json", "", "optional path to write the JSON report")
	analyzeCmd.Flags().BoolVar(&anaExtended, "extended", false, "include per-recipe ratios in the JSON report")
	analyzeCmd.Flags().IntVar(&anaTopN, "top-n", 0, "recipes kept per diet type (overrides config)")
	analyzeCmd.Flags().IntVar(&anaTopRows, "top-rows", 20, "top recipes to print (0 = all)")
	analyzeCmd.Flags().IntVar(&anaRatioRows, "ratios", 0, "print the first N derived ratio rows")
	analyzeCmd.Flags().BoolVar(&anaNoCharts, "no-charts", false, "skip the chart workbook")
	analyzeCmd.Flags().StringVar(&anaChartsPath, "charts-path", "", "chart workbook path (default <output_dir>/<charts_file>)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (config when omitted)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze (first sheet when omitted)")
}

func loaderOptions(c *cfgpkg.Global) dataset.Options {
	opt := dataset.DefaultOptions()
	opt.DecimalSeparator = c.DecimalRune()
	opt.SheetName = c.SheetName
	return opt
}
