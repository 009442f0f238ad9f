package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dietloom-cli/internal/storage"
)

var listContainer string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List blobs in the dataset container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		container := c.Container
		if listContainer != "" {
			container = listContainer
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		return printBlobs(cmd, store, container)
	},
}

func printBlobs(cmd *cobra.Command, store storage.BlobStore, container string) error {
	blobs, err := store.List(cmd.Context(), container)
	if err != nil {
		return fmt.Errorf("list %s: %w", container, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Blobs in '%s':\n", container)
	if len(blobs) == 0 {
		fmt.Fprintln(out, "(no blobs)")
		return nil
	}
	for _, b := range blobs {
		fmt.Fprintf(out, "- %s (%d bytes)\n", b.Name, b.Size)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listContainer, "container", "", "blob container (overrides config)")
}
