// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/markdave123-py/scipaper/internal/config"
	"github.com/markdave123-py/scipaper/internal/core"
	db "github.com/markdave123-py/scipaper/internal/core/database"
	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
	"github.com/markdave123-py/scipaper/internal/core/llm"
	objectclient "github.com/markdave123-py/scipaper/internal/core/object-client"
	"github.com/markdave123-py/scipaper/internal/core/paperrec"
	"github.com/markdave123-py/scipaper/internal/services"
)

type App struct {
	Pipeline *Pipeline
	Server   *Server
}

// Pipeline holds the ingestion components shared by the server and the CLI.
type Pipeline struct {
	DB       *db.DatabaseClient
	Objects  core.ObjectClient
	Embedder *llm.GeminiEmbedder
	LLM      *llm.GeminiLLM
	Ingestor *ingestion_engine.DocumentIngestor
}

// Close releases the provider clients and the database pool.
func (p *Pipeline) Close() {
	if p.Embedder != nil {
		_ = p.Embedder.Close()
	}
	if p.LLM != nil {
		_ = p.LLM.Close()
	}
	if p.DB != nil {
		_ = p.DB.Close()
	}
}

// NewPipeline connects to Postgres, the optional bucket and Gemini and builds
// the document ingestor.
func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ingCfg, err := cfg.IngestConfig()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{}
	ok := false
	defer func() {
		if !ok {
			p.Close()
		}
	}()

	p.DB, err = db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	// Keep the interface nil when storage is off so callers can test for it.
	if cfg.ObjectStorageEnabled() {
		s3c, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.Objects = s3c
		log.Println("Object client initialized and ready.")
	} else {
		log.Println("Object storage disabled; uploads are not archived.")
	}

	p.Embedder, err = llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	p.LLM, err = llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the generator, %w", err)
	}

	useReadability := false
	extractor := ingestion_engine.NewPaperExtractor(useReadability, ingCfg.References)

	p.Ingestor, err = ingestion_engine.NewDocumentIngestor(ingestion_engine.Collaborators{
		Vectors:   p.DB,
		Texts:     p.DB,
		Summaries: p.DB,
		Embedder:  p.Embedder,
		LLM:       p.LLM,
		Extractor: extractor,
		Documents: p.DB,
		Objects:   p.Objects,
	}, ingCfg)
	if err != nil {
		return nil, err
	}

	ok = true
	return p, nil
}

// NewApp builds the pipeline, the services and the HTTP server and starts the
// background ingestion workers. Workers stop when ctx is cancelled.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET", config.ErrMissingConfig)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	p, err := NewPipeline(appCtx, cfg)
	if err != nil {
		return nil, err
	}

	chat := services.NewChatService(p.Embedder, p.DB, p.DB, p.DB, p.LLM, cfg.DefaultTopK)
	analyze := services.NewAnalyzeService(paperrec.NewClient(cfg.PaperRecSearchURL, 0), p.Ingestor, p.DB)
	docs := services.NewDocumentService(p.DB, p.Objects, p.Ingestor, p.DB)
	users := services.NewUserService(p.DB, cfg.AdminEmails)

	server := NewServer(cfg, Services{Users: users, Papers: docs, Analyzer: analyze, Chat: chat})

	p.Ingestor.Start(ctx, cfg.IngestWorkers)
	log.Printf("Started %d ingestion workers.", cfg.IngestWorkers)

	return &App{Pipeline: p, Server: server}, nil
}

func (a *App) Close() {
	if a.Pipeline != nil {
		a.Pipeline.Close()
	}
}
