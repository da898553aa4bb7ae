package blob

import "context"

// Store is the opaque blob boundary: bytes in, public URL out. The server
// never reads deck bytes back; clients fetch them by URL.
type Store interface {
	// Put uploads an object and returns the URL clients should load it from.
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
