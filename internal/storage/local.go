package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tailor/internal/errors"
)

// LocalStore implements ObjectStore on the local filesystem. Objects are
// namespaced per user by a hash of the user id so keys never expose it,
// and display names are sanitized before they reach the filesystem.
type LocalStore struct {
	root   string
	logger *errors.Logger
}

// NewLocalStore creates the root directory if needed and returns a store
// rooted there.
func NewLocalStore(root string, logger *errors.Logger) (*LocalStore, error) {
	if root == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Object store root directory is required", nil)
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeObjectStoreFailed,
			fmt.Sprintf("Cannot create object store root: %s", root), err)
	}
	return &LocalStore{root: root, logger: logger}, nil
}

// Save writes the content under <hash(userID)>/<uuid>_<sanitized name>.
func (s *LocalStore) Save(ctx context.Context, userID, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	key := path.Join(userNamespace(userID), uuid.NewString()+"_"+sanitizeName(name))
	target := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return "", 0, errors.NewStorageError(errors.ErrCodeObjectStoreFailed,
			"Cannot create object directory", err)
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", 0, errors.NewStorageError(errors.ErrCodeObjectStoreFailed,
			"Cannot create object file", err)
	}

	size, err := io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := os.Remove(target); removeErr != nil && s.logger != nil {
			s.logger.Warn("Failed to remove partial object", "key", key, "error", removeErr)
		}
		return "", 0, errors.NewStorageError(errors.ErrCodeObjectStoreFailed,
			"Failed to write object content", err)
	}

	return key, size, nil
}

// Open returns the stored content for a key.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("Object not found: %s", key), err)
		}
		return nil, errors.NewStorageError(errors.ErrCodeObjectStoreFailed,
			fmt.Sprintf("Cannot open object: %s", key), err)
	}
	return file, nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.NewStorageError(errors.ErrCodeObjectStoreFailed,
			fmt.Sprintf("Cannot delete object: %s", key), err)
	}
	return nil
}

// resolve maps a key to a filesystem path, rejecting keys that would
// escape the store root.
func (s *LocalStore) resolve(key string) (string, error) {
	if key == "" || path.Clean("/"+key) != "/"+key {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Invalid object key: %s", key), nil)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func userNamespace(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}

// sanitizeName reduces a user-supplied display name to a safe filename
// component.
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return "document"
	}
	if len(cleaned) > 100 {
		cleaned = cleaned[len(cleaned)-100:]
	}
	return cleaned
}
