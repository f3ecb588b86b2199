package repo

import (
	"context"
	"time"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/store"
	"github.com/hpungsan/quill/internal/thesis"
)

// References owns the bibliographic reference collection and the persisted
// citation style setting.
type References struct {
	store        store.Store
	defaultStyle thesis.CitationStyle
}

// NewReferences creates a reference repository backed by s. defaultStyle is
// returned by GetCitationStyle until a style has been stored.
func NewReferences(s store.Store, defaultStyle thesis.CitationStyle) *References {
	if defaultStyle == "" {
		defaultStyle = thesis.DefaultStyle
	}
	return &References{store: s, defaultStyle: defaultStyle}
}

// ReferenceInput contains the caller-supplied fields for Add.
type ReferenceInput struct {
	Type      string
	Title     string
	Authors   []string
	Year      *int
	Publisher string
	URL       string
	DOI       string
	Extra     map[string]string
}

// List returns all references in insertion order.
func (r *References) List(ctx context.Context) ([]thesis.Reference, error) {
	refs := []thesis.Reference{}
	if _, err := loadJSON(ctx, r.store, store.KeyReferences, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// Add assigns a ULID and a creation timestamp, defaults the type to book,
// appends, and persists.
func (r *References) Add(ctx context.Context, input ReferenceInput) (*thesis.Reference, error) {
	refType := thesis.TypeBook
	if input.Type != "" {
		parsed, ok := thesis.ParseReferenceType(input.Type)
		if !ok {
			return nil, errors.NewInvalidRequest("reference type must be one of: book, article, website, other")
		}
		refType = parsed
	}

	refs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	id, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	ref := thesis.Reference{
		ID:        id,
		Type:      refType,
		Title:     input.Title,
		Authors:   input.Authors,
		Year:      input.Year,
		Publisher: input.Publisher,
		URL:       input.URL,
		DOI:       input.DOI,
		Extra:     input.Extra,
		CreatedAt: time.Now().Unix(),
	}
	refs = append(refs, ref)

	if err := saveJSON(ctx, r.store, store.KeyReferences, refs); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Search returns the references where any field's textual form contains the
// query, case-insensitively.
func (r *References) Search(ctx context.Context, query string) ([]thesis.Reference, error) {
	refs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := []thesis.Reference{}
	for _, ref := range refs {
		if ref.Matches(query) {
			matched = append(matched, ref)
		}
	}
	return matched, nil
}

// Delete removes the reference with the given ID. An absent ID is a silent
// no-op (filter-based removal).
func (r *References) Delete(ctx context.Context, id string) error {
	refs, err := r.List(ctx)
	if err != nil {
		return err
	}

	kept := refs[:0]
	for _, ref := range refs {
		if ref.ID != id {
			kept = append(kept, ref)
		}
	}
	return saveJSON(ctx, r.store, store.KeyReferences, kept)
}

// GenerateBibliography renders one formatted line per reference in the given
// style. An empty style uses the stored setting.
func (r *References) GenerateBibliography(ctx context.Context, style thesis.CitationStyle) ([]string, error) {
	if style == "" {
		stored, err := r.GetCitationStyle(ctx)
		if err != nil {
			return nil, err
		}
		style = stored
	}

	refs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(refs))
	for i, ref := range refs {
		lines[i] = thesis.FormatCitation(ref, style)
	}
	return lines, nil
}

// SetCitationStyle persists the citation style setting.
func (r *References) SetCitationStyle(ctx context.Context, style thesis.CitationStyle) error {
	if err := r.store.Put(ctx, store.KeyCitationStyle, string(style)); err != nil {
		return errors.NewStore("put", store.KeyCitationStyle, err)
	}
	return nil
}

// GetCitationStyle returns the stored citation style, or the default when
// none has been set.
func (r *References) GetCitationStyle(ctx context.Context) (thesis.CitationStyle, error) {
	raw, ok, err := r.store.Get(ctx, store.KeyCitationStyle)
	if err != nil {
		return "", errors.NewStore("get", store.KeyCitationStyle, err)
	}
	if !ok {
		return r.defaultStyle, nil
	}
	style, valid := thesis.ParseStyle(raw)
	if !valid {
		return r.defaultStyle, nil
	}
	return style, nil
}

// Reset removes the reference collection and the citation style setting.
func (r *References) Reset(ctx context.Context) error {
	if err := r.store.Delete(ctx, store.KeyReferences); err != nil {
		return errors.NewStore("delete", store.KeyReferences, err)
	}
	if err := r.store.Delete(ctx, store.KeyCitationStyle); err != nil {
		return errors.NewStore("delete", store.KeyCitationStyle, err)
	}
	return nil
}
