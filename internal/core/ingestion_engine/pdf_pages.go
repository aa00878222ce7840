package ingestion_engine

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ledongthuc/pdf"

	"github.com/markdave123-py/scipaper/internal/core"
)

// PDFPageReader extracts page text with github.com/ledongthuc/pdf.
type PDFPageReader struct{}

// ReadPages fails only when the document itself cannot be opened.
func (PDFPageReader) ReadPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: pdf: %v", core.ErrMalformedInput, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", core.ErrMalformedInput, err)
	}

	n := r.NumPage()
	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = pageText(r, i)
	}
	return pages, nil
}

// pageText returns "" for pages the reader chokes on.
func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("pdf: page %d unreadable: %v", num, rec)
			text = ""
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return ""
	}
	t, err := p.GetPlainText(nil)
	if err != nil {
		log.Printf("pdf: page %d unreadable: %v", num, err)
		return ""
	}
	return t
}
