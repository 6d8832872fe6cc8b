// Package upload stores raw image payloads and hands back publicly
// fetchable URLs. The chat engine never sees the bytes, only the URL
// string carried inside messages.
package upload

import "context"

// Storage saves a binary payload and returns its public URL.
type Storage interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}
