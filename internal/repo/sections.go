package repo

import (
	"context"
	"strconv"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/store"
	"github.com/hpungsan/quill/internal/thesis"
)

// Sections owns section operations. Sections live inside the chapter
// collection, so every mutation here is one rewrite of the chapters key;
// the two-site merge mutation in particular is never observable half-applied.
type Sections struct {
	store store.Store
}

// NewSections creates a section repository backed by s.
func NewSections(s store.Store) *Sections {
	return &Sections{store: s}
}

// SectionUpdate is a partial update; nil fields are left unchanged.
type SectionUpdate struct {
	Title   *string
	Content *string
}

// List returns the sections of one chapter, or of every chapter in chapter
// order when chapterID is empty. An unknown chapterID yields an empty list,
// not an error.
func (s *Sections) List(ctx context.Context, chapterID string) ([]thesis.Section, error) {
	chapters, err := loadChapters(ctx, s.store)
	if err != nil {
		return nil, err
	}

	if chapterID != "" {
		if idx := findChapter(chapters, chapterID); idx != -1 {
			return chapters[idx].Sections, nil
		}
		return []thesis.Section{}, nil
	}

	all := []thesis.Section{}
	for _, ch := range chapters {
		all = append(all, ch.Sections...)
	}
	return all, nil
}

// Add appends a section to the chapter. The new ID is the chapter's maximum
// numeric section ID plus one, so IDs stay strictly increasing even after
// deletions leave gaps.
func (s *Sections) Add(ctx context.Context, chapterID, title, content string) (*thesis.Section, error) {
	chapters, err := loadChapters(ctx, s.store)
	if err != nil {
		return nil, err
	}

	idx := findChapter(chapters, chapterID)
	if idx == -1 {
		return nil, errors.NewNotFound("chapter", chapterID)
	}

	maxID := 0
	for _, sec := range chapters[idx].Sections {
		if n, err := strconv.Atoi(sec.ID); err == nil && n > maxID {
			maxID = n
		}
	}

	section := thesis.Section{
		ID:      strconv.Itoa(maxID + 1),
		Title:   title,
		Content: content,
	}
	chapters[idx].Sections = append(chapters[idx].Sections, section)

	if err := saveChapters(ctx, s.store, chapters); err != nil {
		return nil, err
	}
	return &section, nil
}

// Edit merges the update into the section within its chapter.
func (s *Sections) Edit(ctx context.Context, chapterID, sectionID string, update SectionUpdate) (*thesis.Section, error) {
	chapters, err := loadChapters(ctx, s.store)
	if err != nil {
		return nil, err
	}

	chIdx := findChapter(chapters, chapterID)
	if chIdx == -1 {
		return nil, errors.NewNotFound("chapter", chapterID)
	}
	secIdx := findSection(chapters[chIdx].Sections, sectionID)
	if secIdx == -1 {
		return nil, errors.NewNotFound("section", sectionID)
	}

	sec := &chapters[chIdx].Sections[secIdx]
	if update.Title != nil {
		sec.Title = *update.Title
	}
	if update.Content != nil {
		sec.Content = *update.Content
	}

	if err := saveChapters(ctx, s.store, chapters); err != nil {
		return nil, err
	}
	return sec, nil
}

// Delete removes a section from its chapter. An unknown chapter is an error;
// an unknown section within an existing chapter is a silent no-op
// (filter-based removal).
func (s *Sections) Delete(ctx context.Context, chapterID, sectionID string) error {
	chapters, err := loadChapters(ctx, s.store)
	if err != nil {
		return err
	}

	chIdx := findChapter(chapters, chapterID)
	if chIdx == -1 {
		return errors.NewNotFound("chapter", chapterID)
	}

	kept := chapters[chIdx].Sections[:0]
	for _, sec := range chapters[chIdx].Sections {
		if sec.ID != sectionID {
			kept = append(kept, sec)
		}
	}
	chapters[chIdx].Sections = kept

	return saveChapters(ctx, s.store, chapters)
}

// Merge appends the source section's content onto the target section
// (separated by a blank line), removes the source section from its chapter,
// and persists both mutations in a single rewrite. The target keeps its own
// ID and title.
func (s *Sections) Merge(ctx context.Context, sourceChapterID, sourceID, targetChapterID, targetID string) (*thesis.Section, error) {
	chapters, err := loadChapters(ctx, s.store)
	if err != nil {
		return nil, err
	}

	srcChIdx := findChapter(chapters, sourceChapterID)
	if srcChIdx == -1 {
		return nil, errors.NewNotFound("chapter", sourceChapterID)
	}
	srcIdx := findSection(chapters[srcChIdx].Sections, sourceID)
	if srcIdx == -1 {
		return nil, errors.NewNotFound("section", sourceID)
	}

	tgtChIdx := findChapter(chapters, targetChapterID)
	if tgtChIdx == -1 {
		return nil, errors.NewNotFound("chapter", targetChapterID)
	}
	tgtIdx := findSection(chapters[tgtChIdx].Sections, targetID)
	if tgtIdx == -1 {
		return nil, errors.NewNotFound("section", targetID)
	}

	source := chapters[srcChIdx].Sections[srcIdx]
	if srcChIdx == tgtChIdx && srcIdx == tgtIdx {
		return nil, errors.NewInvalidRequest("cannot merge a section into itself")
	}

	chapters[tgtChIdx].Sections[tgtIdx].Content += "\n\n" + source.Content
	merged := chapters[tgtChIdx].Sections[tgtIdx]

	// Remove the source after the content update; recompute the index in
	// case source and target share a chapter.
	srcIdx = findSection(chapters[srcChIdx].Sections, sourceID)
	chapters[srcChIdx].Sections = append(
		chapters[srcChIdx].Sections[:srcIdx],
		chapters[srcChIdx].Sections[srcIdx+1:]...)

	if srcChIdx == tgtChIdx {
		// The target may have shifted left when the source was removed.
		merged = chapters[tgtChIdx].Sections[findSection(chapters[tgtChIdx].Sections, targetID)]
	}

	if err := saveChapters(ctx, s.store, chapters); err != nil {
		return nil, err
	}
	return &merged, nil
}

// findSection returns the index of the section with the given ID, or -1.
func findSection(sections []thesis.Section, id string) int {
	for i := range sections {
		if sections[i].ID == id {
			return i
		}
	}
	return -1
}
