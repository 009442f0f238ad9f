package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
	"github.com/KaramelBytes/dietloom-cli/internal/pipeline"
)

var (
	runContainer string
	runBlob      string
	runOutput    string
	runTopN      int
	runCharts    bool
	runExtended  bool
	runPublish   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download the dataset from blob storage, process it, and save the JSON report",
	Long: `Runs the batch job in three steps:
  1. download the dataset blob
  2. compute averages and top protein recipes per diet type
  3. save the JSON report (optionally charts and a copy in blob storage)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		container := c.Container
		if runContainer != "" {
			container = runContainer
		}
		blob := c.BlobName
		if runBlob != "" {
			blob = runBlob
		}
		topN := c.TopN
		if runTopN > 0 {
			topN = runTopN
		}
		results := c.ResultsPath()
		if runOutput != "" {
			results = runOutput
		}

		store, err := openStore(c)
		if err != nil {
			return err
		}
		logger := newLogger(c)
		r := pipeline.NewRunner(store, cmd.OutOrStdout(), logger)
		r.Loader.Options = loaderOptions(c)

		opt := pipeline.Options{
			Source:          dataset.BlobSource(container, blob),
			TopN:            topN,
			ResultsPath:     results,
			Extended:        runExtended,
			MetricsTextfile: c.MetricsTextfile,
		}
		if runCharts {
			opt.ChartsPath = c.ChartsPath()
		}
		if runPublish != "" {
			opt.PublishContainer = container
			opt.PublishBlob = runPublish
		}
		_, err = r.Run(cmd.Context(), opt)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runContainer, "container", "", "blob container (overrides config)")
	runCmd.Flags().StringVar(&runBlob, "blob", "", "dataset blob name (overrides config)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "path of the JSON report (default <output_dir>/<results_file>)")
	runCmd.Flags().IntVar(&runTopN, "top-n", 0, "recipes kept per diet type (overrides config)")
	runCmd.Flags().BoolVar(&runCharts, "charts", false, "also render the chart workbook")
	runCmd.Flags().BoolVar(&runExtended, "extended", false, "include per-recipe ratios in the report")
	runCmd.Flags().StringVar(&runPublish, "publish", "", "also upload the report to this blob name in the same container")
}

