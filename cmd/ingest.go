package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdevalley/concierge/internal/config"
	"github.com/verdevalley/concierge/internal/dependency"
)

var ingestDelete string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path or URL]",
	Short: "Load documents into the knowledge base",
	Long: `Load documents into the knowledge base.

Accepts a text, markdown, HTML, or PDF file, a directory of such files, or a
web page URL. Use --delete to remove a previously ingested document by name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDelete, "delete", "", "Delete a document from the knowledge base by file name")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(false)

	container, err := dependency.New(cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := context.Background()

	if ingestDelete != "" {
		return container.Ingestor().Delete(ctx, ingestDelete)
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	return container.Ingestor().IngestPath(ctx, args[0])
}
