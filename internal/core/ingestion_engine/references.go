package ingestion_engine

import (
	"log"
	"regexp"
	"unicode/utf8"
)

// Header forms, tried in order. The last match of a pattern is the candidate;
// earlier ones tend to be table of contents entries.
var referenceHeaders = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\n\s*(?:References|Bibliography|Works Cited|Literature Cited)\s*(?:\n|$)`),
	regexp.MustCompile(`(?i)\n\s*\d{1,2}\.?\s*(?:References|Bibliography)\s*(?:\n|$)`),
}

// citationStart matches the first entry of a numbered citation list.
var citationStart = regexp.MustCompile(`\n\s*\[1\]\s+`)

// Truncation rules reported by TruncateReferences.
const (
	CutHeader   = "header"
	CutCitation = "citation"
	CutNone     = "none"
)

// TruncateReferences drops a trailing bibliography from text. It returns the
// kept text and the rule that fired. Positions are measured in characters.
func TruncateReferences(text string, policy ReferencePolicy) (string, string) {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return text, CutNone
	}

	// Patterns are checked one at a time; the last match of the first pattern
	// that matches wins, not the last match across all patterns.
	for _, re := range referenceHeaders {
		matches := re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		at := matches[len(matches)-1][0]
		if float64(utf8.RuneCountInString(text[:at])) > float64(total)*policy.HeaderMinFraction {
			log.Printf("extractor: references header at offset %d, truncating", at)
			return text[:at], CutHeader
		}
	}

	tailStart := byteOffset(text, int(float64(total)*(1-policy.CitationTailFraction)))
	if loc := citationStart.FindStringIndex(text[tailStart:]); loc != nil {
		at := tailStart + loc[0]
		log.Printf("extractor: citation list start at offset %d, truncating", at)
		return text[:at], CutCitation
	}

	log.Printf("extractor: no references section detected, keeping full text")
	return text, CutNone
}

// byteOffset converts a rune index into a byte index of s.
func byteOffset(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}
