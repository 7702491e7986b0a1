package blob

import "context"

// Store is the narrow interface the document-upload path depends on; the core
// only records the returned reference on a document.
type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}
