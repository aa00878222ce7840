package core

import (
	"context"
)

// DocumentExtractor turns raw document bytes into one logical text stream.
// The contentType hint selects the parsing strategy.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
