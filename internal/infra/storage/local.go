// Package storage places uploaded files on the local filesystem under
// <root>/<user_id>/<document_id>-<safe-name>.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"paperhulp/internal/domain/ports/adapter"
)

var _ adapter.FileStorage = (*Local)(nil)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: root}, nil
}

func (s *Local) Write(ctx context.Context, userID, documentID, filename, mimetype string, data []byte) (*adapter.StoredFile, error) {
	dir := filepath.Join(s.root, safeName(userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create user dir: %w", err)
	}

	// the document id prefix keeps names unique per upload
	name := fmt.Sprintf("%s-%s", safeName(documentID), safeName(filename))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &adapter.StoredFile{
		Path:             path,
		OriginalFilename: filename,
		Mimetype:         mimetype,
		SizeBytes:        int64(len(data)),
	}, nil
}

func (s *Local) Read(ctx context.Context, path string) ([]byte, error) {
	// refuse references that escape the storage root
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q outside storage root", path)
	}
	return os.ReadFile(abs)
}

// safeName flattens anything that could break out of the directory layout.
func safeName(s string) string {
	s = filepath.Base(s)
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "" || s == "." || s == ".." {
		return "file"
	}
	return s
}
