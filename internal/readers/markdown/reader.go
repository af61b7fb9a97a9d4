// Package markdown reads Markdown documents as plain text.
package markdown

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/readers/plaintext"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

var (
	codeFence     = regexp.MustCompile("(?m)^```.*$")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	blockquote    = regexp.MustCompile(`(?m)^>[ \t]?`)
	horizontal    = regexp.MustCompile(`(?m)^[-*_]{3,}[ \t]*$`)
	listMarkers   = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	tableRule     = regexp.MustCompile(`(?m)^\|?([ \t]*:?-+:?[ \t]*\|)+[ \t]*:?-*:?[ \t]*$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Reader handles Markdown documents.
type Reader struct{}

// New creates a new Markdown reader.
func New() *Reader {
	return &Reader{}
}

// Name returns the reader name.
func (r *Reader) Name() string {
	return "markdown"
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Read loads the input and strips Markdown formatting.
func (r *Reader) Read(ctx context.Context, in io.Reader, uri string, _ driven.SourceOptions) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}

	content, err := plaintext.Normalise(data)
	if err != nil {
		return nil, err
	}
	return &domain.Document{URI: uri, Content: Strip(content)}, nil
}

// Strip removes common Markdown formatting. Code and link text are kept;
// underscores are left alone since serial numbers often contain them.
func Strip(content string) string {
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = tableRule.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")

	content = blockquote.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
