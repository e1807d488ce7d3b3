package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrInvalidName is returned for empty names or names that escape the root
	ErrInvalidName = errors.New("invalid file name")

	// ErrAlreadyExists is returned when a blob with the same name is stored
	ErrAlreadyExists = errors.New("file already exists")

	// ErrTooLarge is returned when a blob exceeds the size limit
	ErrTooLarge = errors.New("file too large")
)

// BlobStore keeps uploaded files under a root directory of an afero filesystem
type BlobStore struct {
	fs       afero.Fs
	root     string
	maxBytes int64
	logger   *zap.Logger
}

// NewBlobStore creates the root directory if needed and returns a store on fs.
// maxBytes <= 0 disables the size limit.
func NewBlobStore(fs afero.Fs, root string, maxBytes int64, logger *zap.Logger) (*BlobStore, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &BlobStore{
		fs:       fs,
		root:     root,
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// Save writes r under name. Existing files are never overwritten and a
// partially written file is removed on failure.
func (s *BlobStore) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target, err := s.resolve(name)
	if err != nil {
		return 0, err
	}

	f, err := s.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
		}
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}

	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("failed to write file: %w", copyErr)
	case s.maxBytes > 0 && written > s.maxBytes:
		err = fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	case closeErr != nil:
		err = fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err != nil {
		if rmErr := s.fs.Remove(target); rmErr != nil {
			s.logger.Warn("failed to remove partial upload", zap.String("file", name), zap.Error(rmErr))
		}
		return 0, err
	}

	s.logger.Debug("blob stored", zap.String("file", name), zap.Int64("bytes", written))
	return written, nil
}

// resolve maps a client supplied name to a path directly under root
func (s *BlobStore) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path.Join(s.root, name), nil
}
