package ingestion_engine

import (
	"fmt"

	"github.com/markdave123-py/scipaper/internal/core"
)

// Defaults mirror the values the pipeline has always been calibrated with.
const (
	DefaultChunkSize            = 1000
	DefaultChunkOverlap         = 200
	DefaultBatchSize            = 20
	DefaultEmbedConcurrency     = 1
	DefaultSummaryChunks        = 5
	DefaultSummaryChunkChars    = 2000
	DefaultQueueSize            = 64
	DefaultHeaderMinFraction    = 0.6
	DefaultCitationTailFraction = 0.3
)

// ReferencePolicy tunes the bibliography truncation heuristic.
//
// HeaderMinFraction:    a references header is only accepted past this fraction of the text.
// CitationTailFraction: the "[1] " fallback only scans this trailing fraction of the text.
type ReferencePolicy struct {
	HeaderMinFraction    float64
	CitationTailFraction float64
}

// IngestConfig tunes the ingestion pipeline.
//
// ChunkSize:         characters per chunk window.
// ChunkOverlap:      characters shared by consecutive windows; must be below ChunkSize.
// BatchSize:         chunks per embedding request (provider request-size limit).
// EmbedConcurrency:  embedding batches in flight at once.
// SummaryChunks:     leading chunks fed to the summarizer.
// SummaryChunkChars: per-chunk character cap for the summarizer.
// QueueSize:         capacity of the background job queue.
type IngestConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	BatchSize         int
	EmbedConcurrency  int
	SummaryChunks     int
	SummaryChunkChars int
	QueueSize         int
	References        ReferencePolicy
}

// DefaultReferencePolicy returns the 60% header / 30% tail policy.
func DefaultReferencePolicy() ReferencePolicy {
	return ReferencePolicy{
		HeaderMinFraction:    DefaultHeaderMinFraction,
		CitationTailFraction: DefaultCitationTailFraction,
	}
}

// DefaultIngestConfig returns the stock pipeline settings.
func DefaultIngestConfig() *IngestConfig {
	return &IngestConfig{
		ChunkSize:         DefaultChunkSize,
		ChunkOverlap:      DefaultChunkOverlap,
		BatchSize:         DefaultBatchSize,
		EmbedConcurrency:  DefaultEmbedConcurrency,
		SummaryChunks:     DefaultSummaryChunks,
		SummaryChunkChars: DefaultSummaryChunkChars,
		QueueSize:         DefaultQueueSize,
		References:        DefaultReferencePolicy(),
	}
}

// Validate reports the first unusable setting.
func (c *IngestConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil ingest config", core.ErrInvalidConfig)
	}
	if err := validateWindow(c.ChunkSize, c.ChunkOverlap); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", core.ErrInvalidConfig, c.BatchSize)
	}
	if c.EmbedConcurrency <= 0 {
		return fmt.Errorf("%w: embed concurrency must be positive, got %d", core.ErrInvalidConfig, c.EmbedConcurrency)
	}
	if c.SummaryChunks < 0 || c.SummaryChunkChars < 0 {
		return fmt.Errorf("%w: summary limits must not be negative", core.ErrInvalidConfig)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: queue size must not be negative", core.ErrInvalidConfig)
	}
	return c.References.Validate()
}

// Validate checks both fractions lie in [0, 1].
func (p ReferencePolicy) Validate() error {
	if p.HeaderMinFraction < 0 || p.HeaderMinFraction > 1 {
		return fmt.Errorf("%w: header fraction %v outside [0,1]", core.ErrInvalidConfig, p.HeaderMinFraction)
	}
	if p.CitationTailFraction < 0 || p.CitationTailFraction > 1 {
		return fmt.Errorf("%w: citation tail fraction %v outside [0,1]", core.ErrInvalidConfig, p.CitationTailFraction)
	}
	return nil
}

// validateWindow rejects settings where the window offset would never advance.
func validateWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", core.ErrInvalidConfig, overlap, size)
	}
	return nil
}
