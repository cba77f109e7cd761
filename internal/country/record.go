// Package country defines the country record served by the table and its
// column catalog.
package country

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// NativeName is a country name in one of its own languages.
type NativeName struct {
	Official string `json:"official"`
	Common   string `json:"common"`
}

// Name holds the name variants of a country.
type Name struct {
	Common     string                `json:"common"`
	Official   string                `json:"official,omitempty"`
	NativeName map[string]NativeName `json:"nativeName,omitempty"`
}

// Record is one row of the country dataset.
type Record struct {
	Name       Name              `json:"name"`
	Capital    []string          `json:"capital,omitempty"`
	Region     string            `json:"region"`
	Population int64             `json:"population"`
	Languages  map[string]string `json:"languages,omitempty"`
}

// FirstCapital returns the first listed capital, or "" when there is none.
func (r Record) FirstCapital() string {
	if len(r.Capital) == 0 {
		return ""
	}
	return r.Capital[0]
}

// LanguageNames returns the language names ordered by language code.
func (r Record) LanguageNames() []string {
	if len(r.Languages) == 0 {
		return nil
	}
	codes := make([]string, 0, len(r.Languages))
	for code := range r.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, r.Languages[code])
	}
	return out
}

// Normalize returns a copy with whitespace trimmed from names and a negative
// population clamped to zero.
func (r Record) Normalize() Record {
	r.Name.Common = strings.TrimSpace(r.Name.Common)
	r.Name.Official = strings.TrimSpace(r.Name.Official)
	r.Region = strings.TrimSpace(r.Region)
	if r.Population < 0 {
		r.Population = 0
	}
	return r
}

// utf8BOM is the byte order mark some editors prepend to saved snapshots.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func skipBOM(rd io.Reader) io.Reader {
	br := bufio.NewReader(rd)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// Decode parses a JSON array of records. A leading UTF-8 BOM is ignored.
// Missing fields decode to zero values; only a malformed document is an
// error.
func Decode(rd io.Reader) ([]Record, error) {
	var raw []Record
	if err := json.NewDecoder(skipBOM(rd)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	out := make([]Record, len(raw))
	for i, r := range raw {
		out[i] = r.Normalize()
	}
	return out, nil
}
