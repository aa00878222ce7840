package ingestion_engine

import (
	"strings"
)

// Window is one untrimmed chunk span. Start and End are character offsets,
// End exclusive.
type Window struct {
	Start int
	End   int
	Text  string
}

// SplitWindows cuts text into windows of size characters, each starting
// size-overlap characters after the previous one. The last window ends at the
// end of the text.
func SplitWindows(text string, size, overlap int) ([]Window, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	step := size - overlap
	out := make([]Window, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+size, n)
		out = append(out, Window{Start: start, End: end, Text: string(runes[start:end])})
		if end == n {
			break
		}
	}
	return out, nil
}

// ChunkText returns the trimmed, non-empty windows of text in order. The
// index of a chunk in the result is its ordinal.
func ChunkText(text string, size, overlap int) ([]string, error) {
	windows, err := SplitWindows(text, size, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		if t := strings.TrimSpace(w.Text); t != "" {
			chunks = append(chunks, t)
		}
	}
	return chunks, nil
}
