package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
	"github.com/custodia-labs/valvex/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService loads input documents through the registered readers.
type DocumentService struct {
	source driven.DocumentSource
}

// NewDocumentService creates a new document service.
func NewDocumentService(source driven.DocumentSource) *DocumentService {
	return &DocumentService{source: source}
}

// Load reads the document at uri.
func (s *DocumentService) Load(ctx context.Context, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}

	doc, err := s.source.Load(ctx, uri, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %s: %d bytes", uri, doc.Len())
	return doc, nil
}

// SupportedExtensions returns the file extensions that can be loaded.
func (s *DocumentService) SupportedExtensions() []string {
	return s.source.SupportedExtensions()
}
