package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/scipaper/internal/core"
)

var _ core.DocumentExtractor = (*PaperExtractor)(nil)

// PageReader returns the text of every page in document order. A page that
// cannot be read is returned as "".
type PageReader interface {
	ReadPages(data []byte) ([]string, error)
}

// PaperExtractor reads PDFs page by page and hands every other content type
// to docconv. The result has its bibliography truncated.
type PaperExtractor struct {
	pages          PageReader
	useReadability bool
	policy         ReferencePolicy
}

// NewPaperExtractor builds an extractor backed by the pure Go PDF reader.
func NewPaperExtractor(useReadability bool, policy ReferencePolicy) *PaperExtractor {
	return NewPaperExtractorWithPages(PDFPageReader{}, useReadability, policy)
}

// NewPaperExtractorWithPages allows swapping the PDF page reader.
func NewPaperExtractorWithPages(pages PageReader, useReadability bool, policy ReferencePolicy) *PaperExtractor {
	return &PaperExtractor{pages: pages, useReadability: useReadability, policy: policy}
}

// ExtractText returns the document text without its reference section.
func (e *PaperExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	ct := mediaType(contentType)
	switch {
	case isPDF(ct):
		pages, err := e.pages.ReadPages(data)
		if err != nil {
			return "", err
		}
		text = strings.Join(pages, "\n")
	case docconvHandles(ct):
		res, err := docconv.Convert(bytes.NewReader(data), ct, e.useReadability)
		if err != nil {
			log.Printf("docconv: extraction failed for content type '%s': %v", ct, err)
			return "", fmt.Errorf("%w: docconv %s: %v", core.ErrMalformedInput, ct, err)
		}
		text = res.Body
	default:
		return "", fmt.Errorf("%w: unsupported content type %s", core.ErrMalformedInput, ct)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	kept, _ := TruncateReferences(text, e.policy)
	return kept, nil
}

// docconvHandles lists the content types docconv converts without build tags.
// docconv returns an empty body and no error for anything else.
func docconvHandles(ct string) bool {
	switch ct {
	case "application/msword",
		"application/vnd.ms-word",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.oasis.opendocument.text",
		"application/rtf", "application/x-rtf", "text/rtf", "text/richtext",
		"text/html", "text/xml", "application/xml",
		"text/plain":
		return true
	}
	return false
}

func mediaType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
}

// isPDF sends untyped uploads to the PDF reader, which rejects non-PDF bytes.
func isPDF(ct string) bool {
	switch ct {
	case "application/pdf", "application/x-pdf", "", "application/octet-stream":
		return true
	}
	return false
}
