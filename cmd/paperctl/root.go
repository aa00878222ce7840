package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/scipaper/internal/config"
	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
)

// loadConfig is swapped in tests.
var loadConfig = config.LoadConfig

var rootCmd = &cobra.Command{
	Use:   "paperctl",
	Short: "Inspect and ingest research papers",
	Long: `paperctl extracts, chunks and ingests papers from local files using
the same pipeline settings as the API server.`,
	SilenceUsage: true,
}

// paperFile is a local input with its detected content type.
type paperFile struct {
	Path        string
	Data        []byte
	ContentType string
}

// isText reports whether the file is already plain text and skips extraction.
func (f paperFile) isText() bool {
	return f.ContentType == "text/plain"
}

func readPaper(path string) (paperFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return paperFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return paperFile{Path: path, Data: data, ContentType: contentTypeFor(path, data)}, nil
}

func contentTypeFor(path string, data []byte) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// paperText returns the text the pipeline would chunk for f.
func paperText(ctx context.Context, f paperFile, policy ingestion_engine.ReferencePolicy) (string, error) {
	if f.isText() {
		return string(f.Data), nil
	}
	return ingestion_engine.NewPaperExtractor(false, policy).ExtractText(ctx, f.Data, f.ContentType)
}

// documentID defaults to the file name without its extension.
func documentID(path, override string) string {
	if override != "" {
		return override
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
