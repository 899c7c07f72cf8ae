package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps photos on the local filesystem below root.
type LocalStore struct {
	root string
	now  func() time.Time
}

func NewLocalStore(root string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("blob: local root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &LocalStore{root: root, now: time.Now}, nil
}

func (store *LocalStore) Put(ctx context.Context, ownerID uint, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := NewKey(ownerID, contentType, store.now())
	target := store.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("blob: create owner dir: %w", err)
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("blob: create %s: %w", key, err)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("blob: write %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("blob: close %s: %w", key, err)
	}
	return key, nil
}

func (store *LocalStore) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	if err := validRef(ref); err != nil {
		return nil, "", err
	}
	file, err := os.Open(store.pathFor(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("blob: open %s: %w", ref, err)
	}
	return file, contentTypeFor(ref), nil
}

// URL is always empty: local photos are streamed by the API.
func (store *LocalStore) URL(_ context.Context, ref string) (string, error) {
	return "", validRef(ref)
}

func (store *LocalStore) Delete(_ context.Context, ref string) error {
	if err := validRef(ref); err != nil {
		return err
	}
	if err := os.Remove(store.pathFor(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob: delete %s: %w", ref, err)
	}
	return nil
}

func (store *LocalStore) DeleteOwner(_ context.Context, ownerID uint) error {
	if err := os.RemoveAll(store.pathFor(ownerPrefix(ownerID))); err != nil {
		return fmt.Errorf("blob: delete owner %d: %w", ownerID, err)
	}
	return nil
}

func (store *LocalStore) pathFor(key string) string {
	return filepath.Join(store.root, filepath.FromSlash(key))
}
