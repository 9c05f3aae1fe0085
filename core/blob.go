package core

import (
	"context"
	"io"
)

// BlobStore stores uploaded files and returns a publicly resolvable URL.
// The engine never interprets the stored content; file-upload submissions
// persist the returned URL verbatim.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}
