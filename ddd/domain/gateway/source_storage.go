package gateway

import "context"

// SourceStorageGateway fetches source uploads that arrive through object
// storage instead of a direct HTTP upload.
type SourceStorageGateway interface {
	// DownloadFile copies the object at objectKey into localPath.
	DownloadFile(ctx context.Context, objectKey, localPath string) error
	// Exists reports whether the object is present.
	Exists(ctx context.Context, objectKey string) (bool, error)
	// RemoveFile deletes the object after a successful ingest.
	RemoveFile(ctx context.Context, objectKey string) error
}
