// Package readers provides the DocumentSource that loads input documents.
// Each format is handled by a DocumentReader in a sub-package; readers
// are registered by file extension at startup.
package readers
