package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"questLog/api"
)

type testRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	OwnerID string   `json:"ownerId"`
	Tags    []string `json:"tags"`
	Count   int      `json:"count"`
}

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	id := db.NewID(Campaigns)
	require.NotEmpty(t, id)
	require.NotEqual(t, id, db.NewID(Campaigns))

	record := testRecord{ID: id, Name: "Lost Mines", OwnerID: "owner-1"}
	require.NoError(t, db.Set(ctx, Campaigns, id, record))

	doc, err := db.Get(ctx, Campaigns, id)
	require.NoError(t, err)
	require.Equal(t, id, doc.ID())
	got := testRecord{}
	require.NoError(t, doc.DataTo(&got))
	require.Equal(t, record, got)

	require.NoError(t, db.Delete(ctx, Campaigns, id))
	_, err = db.Get(ctx, Campaigns, id)
	require.ErrorIs(t, err, api.ErrNotFound)

	// Deleting an absent record is not an error.
	require.NoError(t, db.Delete(ctx, Campaigns, id))
}

func TestMemoryGetMissing(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	_, err := db.Get(ctx, Characters, "missing")
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestMemoryMerge(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	id := db.NewID(Characters)
	require.NoError(t, db.Set(ctx, Characters, id, testRecord{ID: id, Name: "Thorn", Count: 3}))

	require.NoError(t, db.Merge(ctx, Characters, id, map[string]any{"count": 4}))

	doc, err := db.Get(ctx, Characters, id)
	require.NoError(t, err)
	got := testRecord{}
	require.NoError(t, doc.DataTo(&got))
	require.Equal(t, "Thorn", got.Name, "unmerged fields survive")
	require.Equal(t, 4, got.Count)
}

func TestMemoryQuery(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	records := []testRecord{
		{ID: "a", Name: "one", OwnerID: "alice", Tags: []string{"x", "y"}, Count: 1},
		{ID: "b", Name: "two", OwnerID: "alice", Tags: []string{"y"}, Count: 2},
		{ID: "c", Name: "three", OwnerID: "bob", Tags: []string{}, Count: 1},
	}
	for _, r := range records {
		require.NoError(t, db.Set(ctx, Maps, r.ID, r))
	}

	tests := []struct {
		name    string
		filters []Filter
		wantIDs []string
	}{
		{"by owner", []Filter{Eq("ownerId", "alice")}, []string{"a", "b"}},
		{"by number", []Filter{Eq("count", 1)}, []string{"a", "c"}},
		{"combined", []Filter{Eq("ownerId", "alice"), Eq("count", 2)}, []string{"b"}},
		{"array contains", []Filter{Contains("tags", "x")}, []string{"a"}},
		{"array contains shared", []Filter{Contains("tags", "y")}, []string{"a", "b"}},
		{"no match", []Filter{Eq("ownerId", "carol")}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := db.Query(ctx, Maps, tt.filters...)
			require.NoError(t, err)
			ids := make([]string, 0, len(docs))
			for _, doc := range docs {
				ids = append(ids, doc.ID())
			}
			require.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestMemoryCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	require.NoError(t, db.Set(ctx, Campaigns, "shared-id", testRecord{ID: "shared-id", Name: "campaign"}))
	require.NoError(t, db.Set(ctx, Characters, "shared-id", testRecord{ID: "shared-id", Name: "character"}))

	doc, err := db.Get(ctx, Campaigns, "shared-id")
	require.NoError(t, err)
	got := testRecord{}
	require.NoError(t, doc.DataTo(&got))
	require.Equal(t, "campaign", got.Name)
}
