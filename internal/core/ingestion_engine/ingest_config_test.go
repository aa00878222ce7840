package ingestion_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markdave123-py/scipaper/internal/core"
)

func TestDefaultIngestConfig_Valid(t *testing.T) {
	cfg := DefaultIngestConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 20, cfg.BatchSize)
}

func TestIngestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *IngestConfig)
	}{
		{name: "zero chunk size", mutate: func(c *IngestConfig) { c.ChunkSize = 0 }},
		{name: "overlap not below size", mutate: func(c *IngestConfig) { c.ChunkOverlap = c.ChunkSize }},
		{name: "negative overlap", mutate: func(c *IngestConfig) { c.ChunkOverlap = -5 }},
		{name: "zero batch", mutate: func(c *IngestConfig) { c.BatchSize = 0 }},
		{name: "zero concurrency", mutate: func(c *IngestConfig) { c.EmbedConcurrency = 0 }},
		{name: "negative summary chunks", mutate: func(c *IngestConfig) { c.SummaryChunks = -1 }},
		{name: "negative queue", mutate: func(c *IngestConfig) { c.QueueSize = -1 }},
		{name: "header fraction above one", mutate: func(c *IngestConfig) { c.References.HeaderMinFraction = 1.5 }},
		{name: "negative tail fraction", mutate: func(c *IngestConfig) { c.References.CitationTailFraction = -0.1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultIngestConfig()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)
		})
	}
}

func TestIngestConfig_NilIsInvalid(t *testing.T) {
	var cfg *IngestConfig
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)
}
