// Package thesis holds the domain model for a thesis document: one metadata
// record, an ordered list of chapters (each owning its sections), and a flat
// reference collection with a citation style.
package thesis

import "strings"

// Metadata is the singleton thesis metadata record. It is created implicitly
// on first write; if present, ID is non-empty.
type Metadata struct {
	// ID is a ULID generated on first upsert
	ID string `json:"id"`

	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Field      string `json:"field,omitempty"`
	Supervisor string `json:"supervisor,omitempty"`
	University string `json:"university,omitempty"`
	Abstract   string `json:"abstract,omitempty"`

	// Keywords is an ordered list of free-form keywords
	Keywords []string `json:"keywords,omitempty"`

	// Template is the citation/formatting template tag (APA, MLA, Chicago)
	Template string `json:"template,omitempty"`
}

// Section is a titled block of free text. Its ID is unique within the owning
// chapter only; the same section ID may appear in different chapters.
type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Chapter is a titled, ordered container of sections. Chapter IDs are unique
// within the thesis. Sections have no existence outside their chapter;
// deleting a chapter deletes its sections with it.
type Chapter struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// ReferenceType enumerates the supported bibliographic entry types.
type ReferenceType string

const (
	TypeBook    ReferenceType = "book"
	TypeArticle ReferenceType = "article"
	TypeWebsite ReferenceType = "website"
	TypeOther   ReferenceType = "other"
)

// ParseReferenceType matches a type token case-insensitively.
// Returns false for anything outside the enumeration.
func ParseReferenceType(s string) (ReferenceType, bool) {
	t := ReferenceType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeBook, TypeArticle, TypeWebsite, TypeOther:
		return t, true
	}
	return "", false
}

// Reference is one bibliographic entry. IDs are ULIDs and globally unique for
// the lifetime of the document. Retrieval order is insertion order but carries
// no semantic weight.
type Reference struct {
	ID        string        `json:"id"`
	Type      ReferenceType `json:"type"`
	Title     string        `json:"title,omitempty"`
	Authors   []string      `json:"authors,omitempty"`
	Year      *int          `json:"year,omitempty"`
	Publisher string        `json:"publisher,omitempty"`
	URL       string        `json:"url,omitempty"`
	DOI       string        `json:"doi,omitempty"`

	// Extra carries free-form bibliographic fields (edition, pages, ...)
	Extra map[string]string `json:"extra,omitempty"`

	// CreatedAt is the Unix timestamp when the reference was added
	CreatedAt int64 `json:"createdAt"`
}
