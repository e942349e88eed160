package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"questLog/api"
)

type firestoreStore struct {
	client *firestore.Client
}

var _ Store = (*firestoreStore)(nil)

// NewFirestore wraps a Firestore client in the Store contract.
func NewFirestore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

type firestoreDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d firestoreDocument) ID() string {
	return d.snap.Ref.ID
}

func (d firestoreDocument) DataTo(dest any) error {
	return d.snap.DataTo(dest)
}

func (s *firestoreStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, api.ErrNotFound)
		}
		return nil, err
	}
	return firestoreDocument{snap: snap}, nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, data any) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, data)
	return err
}

func (s *firestoreStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	return err
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

func (s *firestoreStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.WhereEntity(firestore.PropertyFilter{
			Path:     f.Path,
			Operator: f.Op,
			Value:    f.Value,
		})
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	docs := make([]Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, firestoreDocument{snap: snap})
	}
	return docs, nil
}
