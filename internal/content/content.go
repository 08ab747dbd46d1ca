// Package content turns raw text-generation output into the fixed category
// catalogue the workspace renders.
package content

import (
	"bytes"
	"encoding/json"
)

// Format identifies which calling mode produced a raw response.
type Format string

const (
	// FormatDelimited is a single text blob with "### <Title>" section markers.
	FormatDelimited Format = "delimited"
	// FormatObject is a JSON object keyed by category id.
	FormatObject Format = "object"
)

// RawResponse is the untouched output of one text-generation call.
type RawResponse struct {
	Format Format
	Body   string
}

// Citation is one web source returned by a grounded request.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ParsedContent maps every catalogue category to its ordered items. Values
// are immutable once built; accessors hand out copies.
type ParsedContent struct {
	sections  map[CategoryID][]string
	citations []Citation
}

// Section is one category with its items, used for ordered iteration.
type Section struct {
	Category Category
	Items    []string
}

// Get returns the items for id. Unknown ids yield an empty, non-nil slice.
func (p ParsedContent) Get(id CategoryID) []string {
	items := p.sections[id]
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// Has reports whether id is present. Every catalogue id is present on values
// produced by this package.
func (p ParsedContent) Has(id CategoryID) bool {
	_, ok := p.sections[id]
	return ok
}

// Sections returns the categories in catalogue order.
func (p ParsedContent) Sections() []Section {
	out := make([]Section, 0, len(catalogue.ordered))
	for _, c := range catalogue.ordered {
		out = append(out, Section{Category: c, Items: p.Get(c.ID)})
	}
	return out
}

// Citations returns the grounding sources, if any.
func (p ParsedContent) Citations() []Citation {
	out := make([]Citation, len(p.citations))
	copy(out, p.citations)
	return out
}

// WithCitations returns a copy of p carrying the given citations. Entries
// without a URI are dropped.
func (p ParsedContent) WithCitations(citations []Citation) ParsedContent {
	kept := make([]Citation, 0, len(citations))
	for _, c := range citations {
		if c.URI == "" {
			continue
		}
		kept = append(kept, c)
	}
	return ParsedContent{sections: p.sections, citations: kept}
}

// Total returns the number of items across all categories.
func (p ParsedContent) Total() int {
	n := 0
	for _, items := range p.sections {
		n += len(items)
	}
	return n
}

// MarshalJSON encodes categories in catalogue order followed by citations.
func (p ParsedContent) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"categories":{`)
	for i, c := range catalogue.ordered {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(c.ID))
		if err != nil {
			return nil, err
		}
		items := p.sections[c.ID]
		if items == nil {
			items = []string{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`},"citations":`)
	citations := p.citations
	if citations == nil {
		citations = []Citation{}
	}
	val, err := json.Marshal(citations)
	if err != nil {
		return nil, err
	}
	buf.Write(val)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
