package repo

import (
	"context"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/store"
	"github.com/hpungsan/quill/internal/thesis"
)

// Metadata owns the single thesis metadata record.
type Metadata struct {
	store store.Store
}

// NewMetadata creates a metadata repository backed by s.
func NewMetadata(s store.Store) *Metadata {
	return &Metadata{store: s}
}

// MetadataUpdate is a partial update; nil fields are left unchanged.
type MetadataUpdate struct {
	Title      *string
	Author     *string
	Field      *string
	Supervisor *string
	University *string
	Abstract   *string
	Keywords   *[]string
	Template   *string
}

// Get returns the metadata record, or nil if none has been written yet.
func (m *Metadata) Get(ctx context.Context) (*thesis.Metadata, error) {
	var md thesis.Metadata
	found, err := loadJSON(ctx, m.store, store.KeyMetadata, &md)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &md, nil
}

// Upsert merges the update into the existing record, seeding a new record
// with a fresh ID when none exists. There is no explicit create step.
func (m *Metadata) Upsert(ctx context.Context, update MetadataUpdate) (*thesis.Metadata, error) {
	current, err := m.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		id, err := newULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		current = &thesis.Metadata{ID: id}
	}

	if update.Title != nil {
		current.Title = *update.Title
	}
	if update.Author != nil {
		current.Author = *update.Author
	}
	if update.Field != nil {
		current.Field = *update.Field
	}
	if update.Supervisor != nil {
		current.Supervisor = *update.Supervisor
	}
	if update.University != nil {
		current.University = *update.University
	}
	if update.Abstract != nil {
		current.Abstract = *update.Abstract
	}
	if update.Keywords != nil {
		current.Keywords = *update.Keywords
	}
	if update.Template != nil {
		current.Template = *update.Template
	}

	if err := saveJSON(ctx, m.store, store.KeyMetadata, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Reset removes the metadata record.
func (m *Metadata) Reset(ctx context.Context) error {
	if err := m.store.Delete(ctx, store.KeyMetadata); err != nil {
		return errors.NewStore("delete", store.KeyMetadata, err)
	}
	return nil
}
