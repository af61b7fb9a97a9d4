package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// stubSource serves fixed documents by URI.
type stubSource struct {
	docs     map[string]string
	lastOpts driven.SourceOptions
}

func (s *stubSource) Load(_ context.Context, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	s.lastOpts = opts
	content, ok := s.docs[uri]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Document{ID: uri, URI: uri, Content: content}, nil
}

func (s *stubSource) Register(driven.DocumentReader) {}

func (s *stubSource) SupportedExtensions() []string {
	return []string{".txt", ".xlsx"}
}

func TestDocumentService_Load(t *testing.T) {
	source := &stubSource{docs: map[string]string{"specs.txt": "Gate valve GV-1"}}
	service := NewDocumentService(source)

	doc, err := service.Load(context.Background(), "specs.txt", driven.SourceOptions{Column: "Notes"})

	require.NoError(t, err)
	assert.Equal(t, "Gate valve GV-1", doc.Content)
	assert.Equal(t, "Notes", source.lastOpts.Column)
}

func TestDocumentService_Load_Errors(t *testing.T) {
	service := NewDocumentService(&stubSource{})

	_, err := service.Load(context.Background(), "", driven.SourceOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Load(context.Background(), "missing.txt", driven.SourceOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_SupportedExtensions(t *testing.T) {
	service := NewDocumentService(&stubSource{})

	assert.Equal(t, []string{".txt", ".xlsx"}, service.SupportedExtensions())
}
