package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/scipaper/internal/core"
	"github.com/markdave123-py/scipaper/internal/core/paperrec"
)

func TestAnalyze_ExpandsIngestsAndSummarizes(t *testing.T) {
	db := newMemDB()
	ing := &fakeIngestor{db: db, summary: "seed summary"}
	src := &fakeSource{
		enabled: true,
		neighbours: map[string][]paperrec.Neighbor{
			"https://arxiv.org/abs/2401.08406v1": {
				{ID: "2401.08406v1", Metadata: paperrec.Metadata{LinkPDF: "https://arxiv.org/abs/2401.08406v1"}},
				{ID: "2305.10601v1", Metadata: paperrec.Metadata{LinkPDF: "https://arxiv.org/pdf/2305.10601v1"}},
				{ID: "1111.00001v1"},
			},
			"https://arxiv.org/abs/2305.10601v1": {
				{ID: "2305.10601v1", Metadata: paperrec.Metadata{LinkPDF: "https://arxiv.org/pdf/2305.10601v1", Abstract: "abstract"}},
			},
		},
		files: map[string][]byte{
			"https://arxiv.org/pdf/2401.08406v1": []byte("%PDF a"),
			"https://arxiv.org/pdf/2305.10601v1": []byte("%PDF b"),
		},
	}

	res, err := NewAnalyzeService(src, ing, db).Analyze(context.Background(), []string{
		"https://arxiv.org/abs/2401.08406v1",
		"https://arxiv.org/abs/2305.10601v1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2401.08406v1", "2305.10601v1", "1111.00001v1"}, res.SessionPaperIDs)
	assert.Equal(t, []string{"2305.10601v1", "2401.08406v1"}, ing.ingestedSorted())
	assert.Contains(t, src.downloads, "https://arxiv.org/pdf/1111.00001v1")
	assert.Equal(t, map[string]string{
		"2305.10601v1": "seed summary",
		"2401.08406v1": "seed summary",
	}, res.Summaries)
	assert.Contains(t, ing.summarize, []string{"body of 2401.08406v1"})
}

func TestAnalyze_FallsBackWithoutService(t *testing.T) {
	db := newMemDB()
	ing := &fakeIngestor{db: db, summary: "s"}
	src := &fakeSource{files: map[string][]byte{"https://arxiv.org/pdf/2401.08406v1": []byte("%PDF")}}

	res, err := NewAnalyzeService(src, ing, db).Analyze(context.Background(), []string{
		"https://arxiv.org/abs/2401.08406v1",
		"https://example.com/not-arxiv",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2401.08406v1"}, res.SessionPaperIDs)
	assert.Equal(t, []string{"https://arxiv.org/pdf/2401.08406v1"}, src.downloads)
	assert.Equal(t, "s", res.Summaries["2401.08406v1"])
}

func TestAnalyze_SearchErrorFallsBack(t *testing.T) {
	db := newMemDB()
	ing := &fakeIngestor{db: db, summary: "s"}
	src := &fakeSource{enabled: true, searchErr: errors.New("down"), files: map[string][]byte{}}

	res, err := NewAnalyzeService(src, ing, db).Analyze(context.Background(), []string{"https://arxiv.org/abs/2401.08406v1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2401.08406v1"}, res.SessionPaperIDs)
}

func TestAnalyze_SummaryFallbacks(t *testing.T) {
	db := newMemDB()
	ing := &fakeIngestor{summary: "from abstract"}
	src := &fakeSource{
		enabled: true,
		neighbours: map[string][]paperrec.Neighbor{
			"u1": {{ID: "a1", Metadata: paperrec.Metadata{Abstract: "the abstract"}}},
			"u2": {{ID: "b2"}},
		},
		files: map[string][]byte{},
	}

	res, err := NewAnalyzeService(src, ing, db).Analyze(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, "from abstract", res.Summaries["a1"])
	assert.Equal(t, "Could not generate a summary for paper b2.", res.Summaries["b2"])
	assert.Empty(t, ing.ingestedSorted())
	assert.Equal(t, [][]string{{"the abstract"}}, ing.summarize)
}

func TestAnalyze_IngestFailureIsSkipped(t *testing.T) {
	db := newMemDB()
	ing := &fakeIngestor{db: db, summary: "s", ingestErr: map[string]error{"bad": errors.New("embed quota")}}
	src := &fakeSource{
		enabled: true,
		neighbours: map[string][]paperrec.Neighbor{
			"u": {{ID: "good"}, {ID: "bad"}},
		},
		files: map[string][]byte{
			"https://arxiv.org/pdf/good": []byte("%PDF"),
			"https://arxiv.org/pdf/bad":  []byte("%PDF"),
		},
	}

	res, err := NewAnalyzeService(src, ing, db).Analyze(context.Background(), []string{"u"})
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "bad"}, res.SessionPaperIDs)
	assert.Equal(t, "s", res.Summaries["good"])
}

func TestAnalyze_NoURLs(t *testing.T) {
	_, err := NewAnalyzeService(&fakeSource{}, &fakeIngestor{}, newMemDB()).Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
