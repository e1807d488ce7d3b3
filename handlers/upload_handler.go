package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

// uploadField is the multipart form field carrying the file
const uploadField = "file"

// multipart overhead allowed on top of the file size limit
const multipartSlack = 1 << 20

// Uploader stores uploaded files
type Uploader interface {
	Save(ctx context.Context, name string, r io.Reader) error
}

// UploadHandler handles file uploads
type UploadHandler struct {
	uploader Uploader
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploader Uploader, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// HandleUpload handles POST /city/upload.
// Failures are reported as 417 with a message naming the file.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartSlack)
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			_ = utils.WriteBadRequest(w, fmt.Sprintf("multipart field %q is required", uploadField), nil)
			return
		}
		h.writeFailure(w, "", err)
		return
	}
	defer file.Close()

	if err := h.uploader.Save(r.Context(), header.Filename, file); err != nil {
		// report the storage cause rather than the generic domain message
		cause := errors.Unwrap(err)
		if cause == nil {
			cause = err
		}
		h.writeFailure(w, header.Filename, cause)
		return
	}

	_ = utils.WriteOK(w, models.FileUploadResponse{
		Message: "Uploaded the file successfully: " + header.Filename,
	})
}

func (h *UploadHandler) writeFailure(w http.ResponseWriter, name string, cause error) {
	h.logger.Warn("upload failed", zap.String("file", name), zap.Error(cause))
	_ = utils.WriteExpectationFailed(w, models.FileUploadResponse{
		Message: fmt.Sprintf("Could not upload the file: %s. Error: %v", name, cause),
	})
}
