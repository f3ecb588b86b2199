package thesis

import (
	"fmt"
	"sort"
	"strings"
)

// CitationStyle selects the bibliography formatting convention.
type CitationStyle string

const (
	StyleAPA     CitationStyle = "APA"
	StyleMLA     CitationStyle = "MLA"
	StyleChicago CitationStyle = "Chicago"
)

// DefaultStyle is used when no citation style has been set.
const DefaultStyle = StyleAPA

// ParseStyle matches a style token case-insensitively.
func ParseStyle(s string) (CitationStyle, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "APA":
		return StyleAPA, true
	case "MLA":
		return StyleMLA, true
	case "CHICAGO":
		return StyleChicago, true
	}
	return "", false
}

// FormatCitation renders one reference as a bibliography line in the given
// style. Unknown styles fall back to APA.
func FormatCitation(ref Reference, style CitationStyle) string {
	switch style {
	case StyleMLA:
		return formatMLA(ref)
	case StyleChicago:
		return formatChicago(ref)
	default:
		return formatAPA(ref)
	}
}

// formatAPA: Authors. (Year). Title. Publisher.
func formatAPA(ref Reference) string {
	var b strings.Builder
	b.WriteString(joinAuthors(ref.Authors))
	b.WriteString(fmt.Sprintf(" (%s). ", yearOrND(ref.Year)))
	if ref.Title != "" {
		b.WriteString(ref.Title + ". ")
	}
	if ref.Publisher != "" {
		b.WriteString(ref.Publisher + ".")
	}
	return appendLocator(strings.TrimSpace(b.String()), ref)
}

// formatMLA: Authors. "Title." Publisher, Year.
func formatMLA(ref Reference) string {
	var b strings.Builder
	b.WriteString(joinAuthors(ref.Authors))
	b.WriteString(" ")
	if ref.Title != "" {
		b.WriteString(fmt.Sprintf("%q ", ref.Title+"."))
	}
	if ref.Publisher != "" {
		b.WriteString(ref.Publisher + ", ")
	}
	b.WriteString(yearOrND(ref.Year) + ".")
	return appendLocator(strings.TrimSpace(b.String()), ref)
}

// formatChicago: Authors. Title. Publisher, Year.
func formatChicago(ref Reference) string {
	var b strings.Builder
	b.WriteString(joinAuthors(ref.Authors))
	b.WriteString(" ")
	if ref.Title != "" {
		b.WriteString(ref.Title + ". ")
	}
	if ref.Publisher != "" {
		b.WriteString(ref.Publisher + ", ")
	}
	b.WriteString(yearOrND(ref.Year) + ".")
	return appendLocator(strings.TrimSpace(b.String()), ref)
}

// joinAuthors renders the author list with a trailing period.
// Empty author lists render as "Unknown."
func joinAuthors(authors []string) string {
	cleaned := make([]string, 0, len(authors))
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return "Unknown."
	}
	joined := strings.Join(cleaned, ", ")
	if !strings.HasSuffix(joined, ".") {
		joined += "."
	}
	return joined
}

// yearOrND renders the year, or "n.d." when absent.
func yearOrND(year *int) string {
	if year == nil {
		return "n.d."
	}
	return fmt.Sprintf("%d", *year)
}

// appendLocator appends DOI or URL, DOI preferred.
func appendLocator(line string, ref Reference) string {
	if ref.DOI != "" {
		return line + " https://doi.org/" + ref.DOI
	}
	if ref.URL != "" {
		return line + " " + ref.URL
	}
	return line
}

// FieldStrings returns the textual form of every field of the reference,
// used by substring search. Extra fields are included in key order so the
// output is deterministic.
func (r Reference) FieldStrings() []string {
	fields := []string{r.ID, string(r.Type), r.Title, r.Publisher, r.URL, r.DOI}
	fields = append(fields, r.Authors...)
	if r.Year != nil {
		fields = append(fields, fmt.Sprintf("%d", *r.Year))
	}
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, r.Extra[k])
	}
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Matches reports whether any field of the reference contains the query,
// case-insensitively.
func (r Reference) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, f := range r.FieldStrings() {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
