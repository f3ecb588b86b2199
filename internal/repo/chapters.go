package repo

import (
	"context"
	"strconv"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/store"
	"github.com/hpungsan/quill/internal/thesis"
)

// Chapters owns the ordered chapter sequence. All chapter operations address
// chapters by ID; there is deliberately no positional variant (positional and
// ID addressing diverge after deletions and can delete the wrong chapter).
type Chapters struct {
	store store.Store
}

// NewChapters creates a chapter repository backed by s.
func NewChapters(s store.Store) *Chapters {
	return &Chapters{store: s}
}

// ChapterUpdate is a partial update; nil fields are left unchanged.
type ChapterUpdate struct {
	Title *string
}

// loadChapters reads the full chapter sequence, empty if none stored.
// Shared with the section repository, which operates on the same key.
func loadChapters(ctx context.Context, s store.Store) ([]thesis.Chapter, error) {
	chapters := []thesis.Chapter{}
	if _, err := loadJSON(ctx, s, store.KeyChapters, &chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

// saveChapters rewrites the full chapter sequence in one Put.
func saveChapters(ctx context.Context, s store.Store, chapters []thesis.Chapter) error {
	return saveJSON(ctx, s, store.KeyChapters, chapters)
}

// List returns the persisted chapter sequence in order.
func (c *Chapters) List(ctx context.Context) ([]thesis.Chapter, error) {
	return loadChapters(ctx, c.store)
}

// Add appends a chapter with ID (count+1) and persists the sequence.
//
// The count+1 scheme can re-mint a previously used ID after a deletion
// (delete chapter 2 of 3, add one, the new chapter is "3" again). Preserved
// for compatibility with existing documents; see DESIGN.md.
func (c *Chapters) Add(ctx context.Context, title string) (*thesis.Chapter, error) {
	chapters, err := loadChapters(ctx, c.store)
	if err != nil {
		return nil, err
	}

	chapter := thesis.Chapter{
		ID:       strconv.Itoa(len(chapters) + 1),
		Title:    title,
		Sections: []thesis.Section{},
	}
	chapters = append(chapters, chapter)

	if err := saveChapters(ctx, c.store, chapters); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// UpdateByID merges the update into the chapter with the given ID.
func (c *Chapters) UpdateByID(ctx context.Context, id string, update ChapterUpdate) (*thesis.Chapter, error) {
	chapters, err := loadChapters(ctx, c.store)
	if err != nil {
		return nil, err
	}

	idx := findChapter(chapters, id)
	if idx == -1 {
		return nil, errors.NewNotFound("chapter", id)
	}

	if update.Title != nil {
		chapters[idx].Title = *update.Title
	}

	if err := saveChapters(ctx, c.store, chapters); err != nil {
		return nil, err
	}
	return &chapters[idx], nil
}

// DeleteByID removes the chapter with the given ID, and with it every
// section it owns.
func (c *Chapters) DeleteByID(ctx context.Context, id string) error {
	chapters, err := loadChapters(ctx, c.store)
	if err != nil {
		return err
	}

	idx := findChapter(chapters, id)
	if idx == -1 {
		return errors.NewNotFound("chapter", id)
	}

	chapters = append(chapters[:idx], chapters[idx+1:]...)
	return saveChapters(ctx, c.store, chapters)
}

// Reorder replaces the persisted sequence wholesale with the caller-supplied
// ordering. No permutation check happens here; the caller owns that trust
// boundary (the reorder-chapters command validates before calling).
func (c *Chapters) Reorder(ctx context.Context, chapters []thesis.Chapter) error {
	return saveChapters(ctx, c.store, chapters)
}

// Reset removes the chapter collection (and all sections with it).
func (c *Chapters) Reset(ctx context.Context) error {
	if err := c.store.Delete(ctx, store.KeyChapters); err != nil {
		return errors.NewStore("delete", store.KeyChapters, err)
	}
	return nil
}

// findChapter returns the index of the chapter with the given ID, or -1.
func findChapter(chapters []thesis.Chapter, id string) int {
	for i := range chapters {
		if chapters[i].ID == id {
			return i
		}
	}
	return -1
}
