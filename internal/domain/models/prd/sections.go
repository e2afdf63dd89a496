package prd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Sections is an ordered mapping from section key to markdown body.
// Keys keep the position of their first insertion; Set on an existing key
// replaces the body in place (last write wins).
type Sections struct {
	keys   []string
	bodies map[string]string
}

// NewSections creates an empty section mapping
func NewSections() *Sections {
	return &Sections{bodies: make(map[string]string)}
}

// SectionsFromPairs builds a mapping from alternating key/body arguments.
// Mostly useful in tests and seed data.
func SectionsFromPairs(pairs ...string) *Sections {
	s := NewSections()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(pairs[i], pairs[i+1])
	}
	return s
}

// Set inserts or replaces a section body
func (s *Sections) Set(key, body string) {
	if s.bodies == nil {
		s.bodies = make(map[string]string)
	}
	if _, ok := s.bodies[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.bodies[key] = body
}

// Get returns the body for key and whether it exists
func (s *Sections) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	body, ok := s.bodies[key]
	return body, ok
}

// Has reports whether key exists
func (s *Sections) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (s *Sections) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of sections
func (s *Sections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns an independent copy
func (s *Sections) Clone() *Sections {
	out := NewSections()
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		out.Set(k, s.bodies[k])
	}
	return out
}

// Merge writes every incoming section into s. Existing keys keep their
// position, new keys are appended in incoming order, keys absent from
// incoming are untouched. Merging the same incoming twice is a no-op the
// second time.
func (s *Sections) Merge(incoming *Sections) *Sections {
	if incoming == nil {
		return s
	}
	for _, k := range incoming.keys {
		s.Set(k, incoming.bodies[k])
	}
	return s
}

// Equal reports whether both mappings hold the same keys in the same order
// with the same bodies.
func (s *Sections) Equal(other *Sections) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, k := range s.Keys() {
		if other.keys[i] != k || other.bodies[k] != s.bodies[k] {
			return false
		}
	}
	return true
}

// ToMap returns an unordered copy of the mapping
func (s *Sections) ToMap() map[string]string {
	out := make(map[string]string, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.bodies {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order
func (s Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.bodies[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the source
func (s *Sections) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeSections(data)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// DecodeSections reconstructs a mapping from its stored form. It accepts a
// JSON object, JSON null / empty input (empty mapping), or a JSON string whose
// content is itself an encoded object (rows written pre-serialized).
func DecodeSections(raw []byte) (*Sections, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return NewSections(), nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode sections: invalid JSON")
	}

	result := gjson.ParseBytes(raw)
	switch {
	case result.Type == gjson.Null:
		return NewSections(), nil
	case result.Type == gjson.String:
		return DecodeSections([]byte(result.Str))
	case !result.IsObject():
		return nil, fmt.Errorf("decode sections: expected object, got %s", result.Type)
	}

	// ForEach walks members in document order
	out := NewSections()
	result.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String:
			out.Set(key.Str, value.Str)
		case gjson.Null:
			out.Set(key.Str, "")
		default:
			// Non-string bodies are kept as their JSON text
			out.Set(key.Str, value.Raw)
		}
		return true
	})
	return out, nil
}
