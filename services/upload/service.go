package upload

import (
	"context"
	"io"

	"github.com/upb/core-platform/services"
	"go.uber.org/zap"
)

// BlobSaver persists an uploaded file under its name
type BlobSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
}

// Service stores client uploads
type Service struct {
	store  BlobSaver
	logger *zap.Logger
}

// NewService creates a new upload service
func NewService(store BlobSaver, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Save stores r under name. Every failure is reported as ErrUploadFailed
// wrapping the storage cause.
func (s *Service) Save(ctx context.Context, name string, r io.Reader) error {
	written, err := s.store.Save(ctx, name, r)
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("file", name), zap.Error(err))
		return services.ErrUploadFailed.Wrap(err)
	}

	s.logger.Info("file uploaded", zap.String("file", name), zap.Int64("bytes", written))
	return nil
}
