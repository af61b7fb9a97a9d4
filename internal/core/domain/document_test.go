package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Len tests Document length in bytes
func TestDocument_Len(t *testing.T) {
	doc := &Document{ID: "doc", URI: "valves.txt", Content: "Größe"}
	assert.Equal(t, 7, doc.Len())

	empty := &Document{}
	assert.Equal(t, 0, empty.Len())
}

// TestChunk_EndAndLen tests Chunk span helpers
func TestChunk_EndAndLen(t *testing.T) {
	c := Chunk{Index: 2, Offset: 100, Text: "gate valve"}

	assert.Equal(t, 10, c.Len())
	assert.Equal(t, 110, c.End())
}
