// Package store is the persistence leaf of the backend: plain
// create/read/update/delete plus equality and array-contains queries over
// named collections. No relationship or integrity logic lives here; the
// services above it own that.
package store

import "context"

// Collection names. The join collection holds one record per campaign
// membership edge.
const (
	Campaigns          = "campaigns"
	Characters         = "characters"
	Sessions           = "sessions"
	Maps               = "maps"
	CampaignCharacters = "campaignCharacters"
)

// Filter operators understood by Query.
const (
	OpEqual         = "=="
	OpArrayContains = "array-contains"
)

// Filter narrows a Query to documents whose field at Path matches Value
// under Op.
type Filter struct {
	Path  string
	Op    string
	Value any
}

// Document is one stored record.
type Document interface {
	ID() string
	DataTo(dest any) error
}

// Store addresses records by (collection, id). Individual writes are
// serialized by the backing store; multi-record sequences are not, so every
// caller-side sequence must be safe under partial completion.
type Store interface {
	// NewID reserves a fresh identifier for the collection.
	NewID(collection string) string
	// Get returns the record or api.ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set writes the whole record, creating or replacing it.
	Set(ctx context.Context, collection, id string, data any) error
	// Merge writes only the given fields, leaving the rest of the record
	// untouched.
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the record. Deleting an absent record is not an error;
	// delete-if-exists is what keeps retries of multi-step sequences safe.
	Delete(ctx context.Context, collection, id string) error
	// Query returns every document matching all filters.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
}

// Eq is shorthand for an equality filter.
func Eq(path string, value any) Filter {
	return Filter{Path: path, Op: OpEqual, Value: value}
}

// Contains is shorthand for an array-contains filter.
func Contains(path string, value any) Filter {
	return Filter{Path: path, Op: OpArrayContains, Value: value}
}
