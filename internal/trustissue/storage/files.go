package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload kinds, each stored under its own subdirectory.
const (
	KindProducts      = "products"
	KindPaymentProofs = "payment_proofs"
)

// FileStore writes uploaded files under a base directory and hands back
// relative URLs. Files are opaque blobs addressed by path; no versioning
// or integrity checks.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a store rooted at baseDir
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Save writes the upload under its kind subdirectory with a random name,
// keeping the original extension, and returns the URL it is served at.
func (fs *FileStore) Save(kind, originalName string, r io.Reader) (string, error) {
	dir := filepath.Join(fs.baseDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + sanitizeExt(originalName)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}

	return fmt.Sprintf("/uploads/%s/%s", kind, name), nil
}

// BaseDir returns the directory uploads are stored under.
func (fs *FileStore) BaseDir() string {
	return fs.baseDir
}

// sanitizeExt returns the file extension of name, stripped of anything
// that could escape the upload directory.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
