package artifacts

import "context"

// Store port (interface untuk penyimpanan artefak)
type Store interface {
	// Upload copies localPath to key and returns where it can be fetched.
	Upload(ctx context.Context, localPath, key string) (string, error)
	// UploadAndCleanup uploads and then removes the local file.
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
