package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
)

var (
	upContainer string
	upBlob      string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a dataset to blob storage, creating the container if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		container := c.Container
		if upContainer != "" {
			container = upContainer
		}
		blob := upBlob
		if blob == "" {
			blob = filepath.Base(args[0])
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return apperr.SourceUnavailable("upload", fmt.Errorf("read file: %w", err))
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		created, err := store.EnsureContainer(ctx, container)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(out, "✓ Created container '%s'\n", container)
		} else {
			fmt.Fprintf(out, "⚠ Container '%s' already exists\n", container)
		}

		if err := store.Put(ctx, container, blob, data); err != nil {
			return apperr.WriteError("upload", err)
		}
		fmt.Fprintf(out, "✓ Uploaded %s (%d bytes)\n", blob, len(data))
		fmt.Fprintf(out, "  URL: %s\n", store.URL(container, blob))

		return printBlobs(cmd, store, container)
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&upContainer, "container", "", "blob container (overrides config)")
	uploadCmd.Flags().StringVar(&upBlob, "blob", "", "blob name (default is the file name)")
}
