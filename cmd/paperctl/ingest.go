package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/scipaper/internal/app"
	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
)

var ingestDocID string

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Ingest a paper into the vector index",
	Long: `Extracts, chunks, embeds and summarizes one paper and writes it to
Postgres. Re-ingesting under the same id overwrites the previous chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDocID, "id", "", "document id (defaults to the file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	f, err := readPaper(args[0])
	if err != nil {
		return err
	}

	p, err := app.NewPipeline(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer p.Close()

	req := ingestion_engine.IngestRequest{DocumentID: documentID(f.Path, ingestDocID)}
	if f.isText() {
		req.Text = string(f.Data)
	} else {
		req.Data, req.ContentType = f.Data, f.ContentType
	}

	res, err := p.Ingestor.Ingest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", f.Path, err)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
