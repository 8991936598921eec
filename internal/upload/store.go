// Package upload keeps uploaded files on disk for the duration of one request.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const maxExtensionLength = 8

// Store writes uploads under one directory
type Store struct {
	dir string
}

// NewStore creates dir if needed. An empty dir uses the OS temp directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "mirada-uploads")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Upload is one stored file. Call Remove when the request is done with it.
type Upload struct {
	Path         string
	OriginalName string
	Size         int64

	removeOnce sync.Once
	removeErr  error
}

// Save copies the multipart file to a name that cannot collide with
// concurrent uploads.
func (s *Store) Save(fh *multipart.FileHeader) (*Upload, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + SanitizeExtension(fh.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &Upload{
		Path:         path,
		OriginalName: filepath.Base(fh.Filename),
		Size:         n,
	}, nil
}

func (u *Upload) Bytes() ([]byte, error) {
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// Remove deletes the file. Later calls return the first call's result.
func (u *Upload) Remove() error {
	u.removeOnce.Do(func() {
		err := os.Remove(u.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			u.removeErr = fmt.Errorf("remove upload: %w", err)
		}
	})
	return u.removeErr
}

// SanitizeExtension keeps a short alphanumeric extension from a client
// supplied filename and drops everything else.
func SanitizeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || len(ext) > maxExtensionLength {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return "." + ext
}
