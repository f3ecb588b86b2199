package repo

import (
	"context"
	"encoding/json"

	"github.com/hpungsan/quill/internal/config"
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/store"
	"github.com/hpungsan/quill/internal/thesis"
)

// Status labels derived from progress thresholds.
const (
	StatusNotStarted     = "Not Started"
	StatusInitialized    = "Initialized"
	StatusEarlyStage     = "Early Stage"
	StatusDeveloping     = "Developing"
	StatusAdvanced       = "Advanced"
	StatusNearCompletion = "Near Completion"
)

// Progress is the coarse four-point completion checklist: metadata present,
// any chapter, any section, any reference. Each satisfied check contributes
// 25 points to the percentage.
type Progress struct {
	ChapterCount       int     `json:"chapterCount"`
	SectionCount       int     `json:"sectionCount"`
	ReferenceCount     int     `json:"referenceCount"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// Snapshot is the export/import interchange payload.
type Snapshot struct {
	Metadata   *thesis.Metadata   `json:"metadata"`
	Chapters   []thesis.Chapter   `json:"chapters"`
	References []thesis.Reference `json:"references"`
	Progress   *Progress          `json:"progress,omitempty"`
	Status     string             `json:"status,omitempty"`
}

// Document composes the repositories and exposes the cross-cutting
// operations: progress, status, whole-document export/import, and reset.
type Document struct {
	Metadata   *Metadata
	Chapters   *Chapters
	Sections   *Sections
	References *References
}

// NewDocument wires all repositories onto one store handle.
func NewDocument(s store.Store, cfg *config.Config) *Document {
	defaultStyle := thesis.DefaultStyle
	if cfg != nil {
		if style, ok := thesis.ParseStyle(cfg.DefaultCitationStyle); ok {
			defaultStyle = style
		}
	}
	return &Document{
		Metadata:   NewMetadata(s),
		Chapters:   NewChapters(s),
		Sections:   NewSections(s),
		References: NewReferences(s, defaultStyle),
	}
}

// ComputeProgress counts chapters, sections, and references and derives the
// checklist percentage.
func (d *Document) ComputeProgress(ctx context.Context) (*Progress, error) {
	md, err := d.Metadata.Get(ctx)
	if err != nil {
		return nil, err
	}
	chapters, err := d.Chapters.List(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := d.References.List(ctx)
	if err != nil {
		return nil, err
	}

	sectionCount := 0
	for _, ch := range chapters {
		sectionCount += len(ch.Sections)
	}

	checks := []bool{
		md != nil,
		len(chapters) > 0,
		sectionCount > 0,
		len(refs) > 0,
	}
	satisfied := 0
	for _, ok := range checks {
		if ok {
			satisfied++
		}
	}

	return &Progress{
		ChapterCount:       len(chapters),
		SectionCount:       sectionCount,
		ReferenceCount:     len(refs),
		ProgressPercentage: float64(satisfied) / float64(len(checks)) * 100,
	}, nil
}

// ComputeStatus derives the status label from progress via fixed thresholds.
// Absent metadata short-circuits to "Not Started" regardless of percentage.
func (d *Document) ComputeStatus(ctx context.Context) (string, error) {
	md, err := d.Metadata.Get(ctx)
	if err != nil {
		return "", err
	}
	if md == nil {
		return StatusNotStarted, nil
	}

	progress, err := d.ComputeProgress(ctx)
	if err != nil {
		return "", err
	}

	switch p := progress.ProgressPercentage; {
	case p == 0:
		return StatusInitialized, nil
	case p < 25:
		return StatusEarlyStage, nil
	case p < 50:
		return StatusDeveloping, nil
	case p < 75:
		return StatusAdvanced, nil
	default:
		return StatusNearCompletion, nil
	}
}

// ExportAll serializes the whole document, including derived progress and
// status, as indented JSON.
func (d *Document) ExportAll(ctx context.Context) (string, error) {
	md, err := d.Metadata.Get(ctx)
	if err != nil {
		return "", err
	}
	chapters, err := d.Chapters.List(ctx)
	if err != nil {
		return "", err
	}
	refs, err := d.References.List(ctx)
	if err != nil {
		return "", err
	}
	progress, err := d.ComputeProgress(ctx)
	if err != nil {
		return "", err
	}
	status, err := d.ComputeStatus(ctx)
	if err != nil {
		return "", err
	}

	snapshot := Snapshot{
		Metadata:   md,
		Chapters:   chapters,
		References: refs,
		Progress:   progress,
		Status:     status,
	}
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(raw), nil
}

// ImportAll parses a snapshot and applies it best-effort: metadata first,
// then chapters (with their sections), then references, each through the
// normal add path. Imported chapter, section, and reference IDs are re-minted
// by those adds rather than preserved; a failure partway through leaves the
// earlier phases applied. A payload that does not parse applies nothing.
func (d *Document) ImportAll(ctx context.Context, data string) error {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return errors.NewBadFormat(err)
	}

	if snapshot.Metadata != nil {
		md := snapshot.Metadata
		update := MetadataUpdate{
			Title:      &md.Title,
			Author:     &md.Author,
			Field:      &md.Field,
			Supervisor: &md.Supervisor,
			University: &md.University,
			Abstract:   &md.Abstract,
			Template:   &md.Template,
		}
		if md.Keywords != nil {
			update.Keywords = &md.Keywords
		}
		if _, err := d.Metadata.Upsert(ctx, update); err != nil {
			return err
		}
	}

	for _, ch := range snapshot.Chapters {
		added, err := d.Chapters.Add(ctx, ch.Title)
		if err != nil {
			return err
		}
		for _, sec := range ch.Sections {
			if _, err := d.Sections.Add(ctx, added.ID, sec.Title, sec.Content); err != nil {
				return err
			}
		}
	}

	for _, ref := range snapshot.References {
		input := ReferenceInput{
			Type:      string(ref.Type),
			Title:     ref.Title,
			Authors:   ref.Authors,
			Year:      ref.Year,
			Publisher: ref.Publisher,
			URL:       ref.URL,
			DOI:       ref.DOI,
			Extra:     ref.Extra,
		}
		if _, err := d.References.Add(ctx, input); err != nil {
			return err
		}
	}

	return nil
}

// Reset clears metadata, chapters, sections, and references back to their
// lazy-init absent state. A reset on a document with no metadata is a no-op.
func (d *Document) Reset(ctx context.Context) error {
	md, err := d.Metadata.Get(ctx)
	if err != nil {
		return err
	}
	if md == nil {
		return nil
	}

	if err := d.Metadata.Reset(ctx); err != nil {
		return err
	}
	if err := d.Chapters.Reset(ctx); err != nil {
		return err
	}
	return d.References.Reset(ctx)
}
