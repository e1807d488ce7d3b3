package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

// DocsHandler serves the OpenAPI document
type DocsHandler struct {
	document []byte
	logger   *zap.Logger
}

// NewDocsHandler renders doc once; the same bytes are served on every request
func NewDocsHandler(doc *openapi3.T, logger *zap.Logger) (*DocsHandler, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render API document: %w", err)
	}
	return &DocsHandler{
		document: data,
		logger:   logger,
	}, nil
}

// HandleAPIDocs handles GET /v3/api-docs
func (h *DocsHandler) HandleAPIDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.document); err != nil {
		h.logger.Error("failed to write API document", zap.Error(err))
	}
}

// HandleSwaggerUI handles GET /swagger-ui/*.
// No UI is bundled; clients are sent to the raw document.
func (h *DocsHandler) HandleSwaggerUI(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/v3/api-docs", http.StatusFound)
}
