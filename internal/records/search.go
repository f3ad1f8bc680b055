package records

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips diacritics so "São" matches "sao".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Cells renders the list columns of rec.
func (d *Descriptor[T]) Cells(rec *T) []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Value(rec)
	}
	return out
}

// Headers returns the column titles.
func (d *Descriptor[T]) Headers() []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Header
	}
	return out
}

// Search returns the loaded records whose displayed columns contain query,
// ignoring case and accents. An empty query matches everything.
func (l *List[T]) Search(query string) []T {
	records := l.Records()
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	var out []T
	for i := range records {
		for _, cell := range l.desc.Cells(&records[i]) {
			if strings.Contains(fold(cell), q) {
				out = append(out, records[i])
				break
			}
		}
	}
	return out
}
