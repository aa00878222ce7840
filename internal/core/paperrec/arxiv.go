package paperrec

import (
	"regexp"
	"strings"
)

var arxivPath = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([^?#]+?)(?:\.pdf)?/?(?:[?#].*)?$`)

// ArxivID returns the identifier in an arXiv abs or pdf link, e.g.
// "2401.08406v1" or "hep-th/9901001".
func ArxivID(link string) (string, bool) {
	m := arxivPath.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// PDFLink rewrites arXiv abs links to their pdf form. Other links are
// returned unchanged.
func PDFLink(link string) string {
	id, ok := ArxivID(link)
	if !ok {
		return strings.TrimSpace(link)
	}
	return "https://arxiv.org/pdf/" + id
}
