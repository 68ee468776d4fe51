package adapter

import "context"

// StoredFile describes a blob placed by the storage provider.
type StoredFile struct {
	Path             string // provider-relative reference, stored on the document
	OriginalFilename string
	Mimetype         string
	SizeBytes        int64
}

// FileStorage is the collaborator boundary for upload placement and pipeline
// reads. The pipeline only ever needs the two byte-level operations.
type FileStorage interface {
	// Write stores the bytes and returns the reference to persist.
	Write(ctx context.Context, userID, documentID, filename, mimetype string, data []byte) (*StoredFile, error)
	// Read returns the bytes behind a previously returned reference.
	Read(ctx context.Context, path string) ([]byte, error)
}
