package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Save prefixes stored file names with the upload timestamp in epoch
// milliseconds, so List returns names of the form "<millis>_<fileName>".
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	List(ctx context.Context, userId string) (fileNames []string, err error)
}
