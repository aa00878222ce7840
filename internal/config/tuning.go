package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
)

// Tuning is the optional YAML file of pipeline knobs. Unset keys keep the
// built-in defaults.
type Tuning struct {
	Chunking struct {
		Size    *int `yaml:"size"`
		Overlap *int `yaml:"overlap"`
	} `yaml:"chunking"`
	Embedding struct {
		BatchSize   *int `yaml:"batch_size"`
		Concurrency *int `yaml:"concurrency"`
	} `yaml:"embedding"`
	Summary struct {
		Chunks     *int `yaml:"chunks"`
		ChunkChars *int `yaml:"chunk_chars"`
	} `yaml:"summary"`
	References struct {
		HeaderMinFraction    *float64 `yaml:"header_min_fraction"`
		CitationTailFraction *float64 `yaml:"citation_tail_fraction"`
	} `yaml:"references"`
	QueueSize *int `yaml:"queue_size"`
}

// ParseTuning decodes a tuning document, rejecting unknown keys.
func ParseTuning(data []byte) (*Tuning, error) {
	var t Tuning
	if len(data) == 0 {
		return &t, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse tuning: %w", err)
	}
	return &t, nil
}

// Apply overlays the set keys onto cfg.
func (t *Tuning) Apply(cfg *ingestion_engine.IngestConfig) {
	setInt(&cfg.ChunkSize, t.Chunking.Size)
	setInt(&cfg.ChunkOverlap, t.Chunking.Overlap)
	setInt(&cfg.BatchSize, t.Embedding.BatchSize)
	setInt(&cfg.EmbedConcurrency, t.Embedding.Concurrency)
	setInt(&cfg.SummaryChunks, t.Summary.Chunks)
	setInt(&cfg.SummaryChunkChars, t.Summary.ChunkChars)
	setInt(&cfg.QueueSize, t.QueueSize)
	if t.References.HeaderMinFraction != nil {
		cfg.References.HeaderMinFraction = *t.References.HeaderMinFraction
	}
	if t.References.CitationTailFraction != nil {
		cfg.References.CitationTailFraction = *t.References.CitationTailFraction
	}
}

// IngestConfig resolves pipeline settings: built-in defaults, then the tuning
// file, then non-zero environment overrides.
func (c *Config) IngestConfig() (*ingestion_engine.IngestConfig, error) {
	cfg := ingestion_engine.DefaultIngestConfig()

	if c.IngestTuningFile != "" {
		data, err := os.ReadFile(c.IngestTuningFile)
		if err != nil {
			return nil, fmt.Errorf("read tuning file: %w", err)
		}
		t, err := ParseTuning(data)
		if err != nil {
			return nil, err
		}
		t.Apply(cfg)
	}

	overrideInt(&cfg.ChunkSize, c.ChunkSize)
	overrideInt(&cfg.ChunkOverlap, c.ChunkOverlap)
	overrideInt(&cfg.BatchSize, c.EmbedBatchSize)
	overrideInt(&cfg.EmbedConcurrency, c.EmbedConcurrency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func overrideInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
