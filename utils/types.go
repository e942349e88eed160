package utils

import (
	"fmt"

	"github.com/fatih/structs"

	"questLog/store"
)

func ToPointer[T any](value T) *T {
	return &value
}

// DocsToStructs decodes a slice of store documents into typed records.
func DocsToStructs[T any](docs []store.Document) ([]T, error) {
	result := make([]T, len(docs))
	for i, doc := range docs {
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to convert doc %s: %w", doc.ID(), err)
		}
		result[i] = item
	}
	return result, nil
}

// UpdateMap flattens a struct into the field map used for merge writes.
// Field names come from the structs tags, so they line up with the
// firestore tags on the same fields.
func UpdateMap(v any) map[string]any {
	s := structs.New(v)
	s.TagName = "structs"
	return s.Map()
}
