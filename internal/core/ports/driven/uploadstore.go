package driven

import "context"

// UploadStore keeps the original bytes of uploaded documents.
type UploadStore interface {
	// Save writes content as {id}{ext} and returns its path.
	Save(ctx context.Context, id, ext string, content []byte) (string, error)

	// Remove deletes every stored file for id. Missing files are not an error.
	Remove(ctx context.Context, id string) error

	// Dir returns the directory uploads are written to.
	Dir() string
}
