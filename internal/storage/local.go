package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService writes pictures under a directory that the HTTP server exposes at URLPrefix.
type LocalService struct {
	root      string
	urlPrefix string
}

func NewLocalService(root, urlPrefix string) (*LocalService, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalService{
		root:      filepath.Clean(root),
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root is the directory pictures are written to.
func (s *LocalService) Root() string {
	return s.root
}

func (s *LocalService) Put(ctx context.Context, obj Object) (string, error) {
	path, rel, err := s.resolve(obj.Key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", path, err)
	}
	_, err = io.Copy(f, obj.Body)
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close file %s: %w", path, closeErr)
	}

	return s.urlPrefix + "/" + rel, nil
}

func (s *LocalService) Delete(ctx context.Context, key string) error {
	path, _, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}

func (s *LocalService) resolve(key string) (string, string, error) {
	clean := filepath.Clean("/" + key)
	rel := strings.TrimPrefix(filepath.ToSlash(clean), "/")
	if rel == "" {
		return "", "", fmt.Errorf("object key is required")
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), rel, nil
}

var _ Service = (*LocalService)(nil)
