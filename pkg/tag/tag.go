// Package tag defines the tagged span produced by the tokenizers: a name
// plus a small set of metadata keys, each either a bare flag or a
// key/value pair.
package tag

import (
	"sort"
	"strings"
)

const (
	tagOpen  = '《'
	tagClose = '》'
	fieldSep = '〡'
	valueSep = '〓'
)

// Tag is a named span with metadata. A key with an empty value is a flag.
type Tag struct {
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// New returns a tag with no metadata.
func New(name string) *Tag {
	return &Tag{Name: name}
}

// Flag adds a bare key and returns the tag for chaining.
func (t *Tag) Flag(key string) *Tag {
	return t.Set(key, "")
}

// Set adds a key/value pair, replacing any previous value, and returns the
// tag for chaining.
func (t *Tag) Set(key, value string) *Tag {
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
	t.Metadata[key] = value
	return t
}

// Has reports whether key is present, as a flag or with a value.
func (t *Tag) Has(key string) bool {
	_, ok := t.Metadata[key]
	return ok
}

// Get returns the value stored for key.
func (t *Tag) Get(key string) string {
	return t.Metadata[key]
}

// Keys returns the metadata keys in sorted order.
func (t *Tag) Keys() []string {
	keys := make([]string, 0, len(t.Metadata))
	for k := range t.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the tag as 《name〡flag〡key〓value》 with keys sorted.
func (t *Tag) String() string {
	var b strings.Builder
	b.WriteRune(tagOpen)
	b.WriteString(t.Name)
	for _, k := range t.Keys() {
		b.WriteRune(fieldSep)
		b.WriteString(k)
		if v := t.Metadata[k]; v != "" {
			b.WriteRune(valueSep)
			b.WriteString(v)
		}
	}
	b.WriteRune(tagClose)
	return b.String()
}

// Join renders tags as a bracketed, comma separated list.
func Join(tags []*Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
