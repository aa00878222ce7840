package main

import (
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the text extracted from a paper",
	Long: `Extracts the text of a PDF page by page and drops the reference
section, printing what ingestion would chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	f, err := readPaper(args[0])
	if err != nil {
		return err
	}
	ingCfg, err := loadConfig().IngestConfig()
	if err != nil {
		return err
	}

	text, err := paperText(cmd.Context(), f, ingCfg.References)
	if err != nil {
		return err
	}
	cmd.Println(text)
	return nil
}
