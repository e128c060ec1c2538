// Package storage defines the object-storage boundary for report artifacts.
package storage

import "context"

// ArtifactStore abstracts the bucket that holds generated report files.
// Version: 1.0
type ArtifactStore interface {
	// Upload writes the artifact bytes under the given key with the given
	// content type, overwriting any previous object at that key.
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}
