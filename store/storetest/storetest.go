// Package storetest holds store decorators for service tests. Faulty fails
// chosen operations per collection so a test can stop a multi-record write
// sequence partway through and inspect what the crash left behind.
package storetest

import (
	"context"

	"questLog/store"
)

// Faulty passes everything through to the wrapped store except operations
// with an error registered for their collection. Removing the entry clears
// the fault, which lets a test drive the retry path after a mid-sequence
// failure.
type Faulty struct {
	store.Store
	FailGet    map[string]error
	FailSet    map[string]error
	FailDelete map[string]error
}

var _ store.Store = (*Faulty)(nil)

func NewFaulty(db store.Store) *Faulty {
	return &Faulty{
		Store:      db,
		FailGet:    map[string]error{},
		FailSet:    map[string]error{},
		FailDelete: map[string]error{},
	}
}

func (f *Faulty) Get(ctx context.Context, collection, id string) (store.Document, error) {
	if err := f.FailGet[collection]; err != nil {
		return nil, err
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *Faulty) Set(ctx context.Context, collection, id string, data any) error {
	if err := f.FailSet[collection]; err != nil {
		return err
	}
	return f.Store.Set(ctx, collection, id, data)
}

func (f *Faulty) Delete(ctx context.Context, collection, id string) error {
	if err := f.FailDelete[collection]; err != nil {
		return err
	}
	return f.Store.Delete(ctx, collection, id)
}
