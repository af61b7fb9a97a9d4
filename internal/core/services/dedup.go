package services

import (
	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/logger"
)

// MergeVerdict tells what happened to a candidate offered to the Deduplicator.
type MergeVerdict int

// Merge verdicts.
const (
	// VerdictAccepted means the candidate was the first with its identifier.
	VerdictAccepted MergeVerdict = iota

	// VerdictDuplicate means an earlier candidate had the same identifier.
	VerdictDuplicate

	// VerdictUnmergeable means the candidate had no usable identifier.
	VerdictUnmergeable
)

// String returns the string representation.
func (v MergeVerdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictDuplicate:
		return "duplicate"
	case VerdictUnmergeable:
		return "unmergeable"
	default:
		return "unknown"
	}
}

// Deduplicator merges candidates into a ResultSet keyed by the schema identifier.
// The first candidate seen for an identifier wins; later ones are discarded whole.
// A Deduplicator is not safe for concurrent use.
type Deduplicator struct {
	schema      *domain.RecordSchema
	seen        map[string]struct{}
	records     []domain.Record
	duplicates  int
	unmergeable int
}

// NewDeduplicator creates an empty deduplicator for schema.
func NewDeduplicator(schema *domain.RecordSchema) *Deduplicator {
	return &Deduplicator{
		schema: schema,
		seen:   make(map[string]struct{}),
	}
}

// Add offers one candidate.
func (d *Deduplicator) Add(r domain.Record) MergeVerdict {
	key, ok := d.schema.IdentifierKey(r)
	if !ok {
		d.unmergeable++
		logger.Debug("Chunk %d: dropping %s without %s", r.ChunkIndex, d.schema.Name, d.schema.Identifier)
		return VerdictUnmergeable
	}
	if _, dup := d.seen[key]; dup {
		d.duplicates++
		logger.Debug("Chunk %d: discarding duplicate %s %q", r.ChunkIndex, d.schema.Identifier, key)
		return VerdictDuplicate
	}
	d.seen[key] = struct{}{}
	d.records = append(d.records, r)
	return VerdictAccepted
}

// Merge offers candidates in order and returns the resulting set.
func (d *Deduplicator) Merge(candidates []domain.Record) domain.ResultSet {
	for _, c := range candidates {
		d.Add(c)
	}
	return d.Result()
}

// Result returns the records accepted so far in first-seen order.
func (d *Deduplicator) Result() domain.ResultSet {
	records := make([]domain.Record, len(d.records))
	copy(records, d.records)
	return domain.ResultSet{Schema: d.schema, Records: records}
}

// Duplicates returns how many candidates were discarded as duplicates.
func (d *Deduplicator) Duplicates() int {
	return d.duplicates
}

// Unmergeable returns how many candidates had no usable identifier.
func (d *Deduplicator) Unmergeable() int {
	return d.unmergeable
}

// Merge deduplicates candidates with a fresh Deduplicator.
func Merge(schema *domain.RecordSchema, candidates []domain.Record) domain.ResultSet {
	return NewDeduplicator(schema).Merge(candidates)
}
