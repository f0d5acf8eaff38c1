package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the object storage gateway: it accepts a blob and hands back a
// publicly resolvable URL. Implementations own durability of the blob only;
// linking the URL to an event is the caller's job.
type Store interface {
	Upload(ctx context.Context, key string, data io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a public URL back to the object key, reporting false
	// for URLs served by someone else.
	KeyFromURL(url string) (string, bool)
}

type fileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore stores objects under basePath and resolves them as
// baseURL/<key>. The directory is served statically by the router.
func NewFileStore(basePath, baseURL string) Store {
	return &fileStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *fileStore) Upload(ctx context.Context, key string, data io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to prepare media dir: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create object %s: %w", key, err)
	}
	defer file.Close()

	if _, err = io.Copy(file, data); err != nil {
		// A half-written object is worse than none.
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.basePath, key)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *fileStore) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
