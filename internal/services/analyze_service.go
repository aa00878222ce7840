package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/scipaper/internal/core"
	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
	"github.com/markdave123-py/scipaper/internal/core/paperrec"
)

const (
	// neighboursPerSeed is k in the recommendation query; it includes the seed.
	neighboursPerSeed  = 5
	ingestConcurrency  = 4
	summaryUnavailable = "Could not generate a summary for paper %s."
)

// PaperSource finds similar papers and downloads their PDFs.
type PaperSource interface {
	Enabled() bool
	Search(ctx context.Context, url string, k int) ([]paperrec.Neighbor, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// PaperIngestor is the part of the ingestion engine analysis drives.
type PaperIngestor interface {
	Ingest(ctx context.Context, req ingestion_engine.IngestRequest) (*ingestion_engine.IngestResult, error)
	Summarize(ctx context.Context, chunks []string) (string, error)
}

// AnalyzeResult lists every paper of the session and a summary per seed.
type AnalyzeResult struct {
	SessionPaperIDs []string          `json:"session_paper_ids"`
	Summaries       map[string]string `json:"summaries"`
}

// AnalyzeService expands seed URLs into a corpus, ingests it and summarizes
// the seeds.
type AnalyzeService struct {
	source   PaperSource
	ingestor PaperIngestor
	texts    core.TextStore
}

func NewAnalyzeService(source PaperSource, ingestor PaperIngestor, texts core.TextStore) *AnalyzeService {
	return &AnalyzeService{source: source, ingestor: ingestor, texts: texts}
}

// Analyze ingests every seed and its neighbours under their arXiv ids.
// Papers that cannot be downloaded or ingested are logged and skipped.
func (s *AnalyzeService) Analyze(ctx context.Context, urls []string) (*AnalyzeResult, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no URLs provided", core.ErrInvalidInput)
	}

	var (
		order  []string
		papers = make(map[string]paperrec.Metadata)
		seeds  = make(map[string]struct{})
	)
	for _, url := range urls {
		neighbours := s.neighbours(ctx, url)
		if len(neighbours) == 0 {
			log.Printf("AnalyzeService: no paper found for %s, skipping", url)
			continue
		}
		seeds[neighbours[0].ID] = struct{}{}
		for _, n := range neighbours {
			if n.ID == "" {
				continue
			}
			if _, seen := papers[n.ID]; seen {
				continue
			}
			papers[n.ID] = n.Metadata
			order = append(order, n.ID)
		}
	}

	s.ingestAll(ctx, order, papers)

	seedIDs := make([]string, 0, len(seeds))
	for id := range seeds {
		seedIDs = append(seedIDs, id)
	}
	sort.Strings(seedIDs)

	summaries := make(map[string]string, len(seedIDs))
	for _, id := range seedIDs {
		summaries[id] = s.summarizeSeed(ctx, id, papers[id])
	}

	if order == nil {
		order = []string{}
	}
	return &AnalyzeResult{SessionPaperIDs: order, Summaries: summaries}, nil
}

// neighbours asks the recommendation service and otherwise falls back to the
// URL itself when it is an arXiv link.
func (s *AnalyzeService) neighbours(ctx context.Context, url string) []paperrec.Neighbor {
	if s.source.Enabled() {
		found, err := s.source.Search(ctx, url, neighboursPerSeed)
		if err != nil {
			log.Printf("AnalyzeService: similarity search for %s failed: %v", url, err)
		}
		if len(found) > 0 && found[0].ID != "" {
			return found
		}
	}

	id, ok := paperrec.ArxivID(url)
	if !ok {
		return nil
	}
	return []paperrec.Neighbor{{ID: id, Metadata: paperrec.Metadata{LinkPDF: paperrec.PDFLink(url)}}}
}

func (s *AnalyzeService) ingestAll(ctx context.Context, ids []string, papers map[string]paperrec.Metadata) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)

	for _, id := range ids {
		link := papers[id].LinkPDF
		if link == "" {
			link = "https://arxiv.org/pdf/" + id
		}
		link = paperrec.PDFLink(link)

		g.Go(func() error {
			data, err := s.source.Download(gctx, link)
			if err != nil {
				log.Printf("AnalyzeService: failed to download %s: %v", link, err)
				return nil
			}
			if _, err := s.ingestor.Ingest(gctx, ingestion_engine.IngestRequest{
				DocumentID:  id,
				Data:        data,
				ContentType: "application/pdf",
			}); err != nil {
				log.Printf("AnalyzeService: failed to ingest %s: %v", id, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// summarizeSeed prefers stored chunks, then the abstract.
func (s *AnalyzeService) summarizeSeed(ctx context.Context, id string, meta paperrec.Metadata) string {
	fallback := fmt.Sprintf(summaryUnavailable, id)

	var texts []string
	chunks, err := s.texts.ListChunks(ctx, id)
	if err != nil {
		log.Printf("AnalyzeService: could not list chunks for %s: %v", id, err)
	}
	for _, ch := range chunks {
		texts = append(texts, ch.Text)
	}
	if len(texts) == 0 && strings.TrimSpace(meta.Abstract) != "" {
		texts = []string{meta.Abstract}
	}
	if len(texts) == 0 {
		return fallback
	}

	summary, err := s.ingestor.Summarize(ctx, texts)
	if err != nil || summary == "" {
		log.Printf("AnalyzeService: summary for %s failed: %v", id, err)
		return fallback
	}
	return summary
}
