package prd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections_SetKeepsPosition(t *testing.T) {
	s := NewSections()
	s.Set("title", "one")
	s.Set("scope", "two")
	s.Set("title", "three")

	assert.Equal(t, []string{"title", "scope"}, s.Keys())
	body, ok := s.Get("title")
	assert.True(t, ok)
	assert.Equal(t, "three", body)
}

func TestSections_NilSafe(t *testing.T) {
	var s *Sections
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Keys())
	assert.False(t, s.Has("title"))
	assert.Equal(t, 0, s.Clone().Len())
	assert.Empty(t, s.ToMap())
}

func TestSections_Merge(t *testing.T) {
	tests := []struct {
		name     string
		existing *Sections
		incoming *Sections
		wantKeys []string
		wantBody map[string]string
	}{
		{
			name:     "into empty",
			existing: NewSections(),
			incoming: SectionsFromPairs("title", "T", "scope", "S"),
			wantKeys: []string{"title", "scope"},
		},
		{
			name:     "overwrite keeps position, new appended",
			existing: SectionsFromPairs("title", "T", "scope", "S"),
			incoming: SectionsFromPairs("context", "C", "title", "T2"),
			wantKeys: []string{"title", "scope", "context"},
			wantBody: map[string]string{"title": "T2", "scope": "S", "context": "C"},
		},
		{
			name:     "nil incoming",
			existing: SectionsFromPairs("title", "T"),
			incoming: nil,
			wantKeys: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.existing.Merge(tt.incoming)
			assert.Equal(t, tt.wantKeys, got.Keys())
			for k, want := range tt.wantBody {
				body, _ := got.Get(k)
				assert.Equal(t, want, body)
			}

			again := got.Clone().Merge(tt.incoming)
			assert.True(t, got.Equal(again), "merge must be idempotent")
		})
	}
}

func TestSections_JSONPreservesOrder(t *testing.T) {
	s := SectionsFromPairs("zeta", "Z", "title", "# T", "alpha", "line1\nline2")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"Z","title":"# T","alpha":"line1\nline2"}`, string(data))

	var decoded Sections
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, s.Equal(&decoded))
}

func TestSections_EmbeddedInStruct(t *testing.T) {
	doc := Document{ID: "d1", Sections: SectionsFromPairs("title", "T")}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.Sections)
	assert.Equal(t, []string{"title"}, back.Sections.Keys())
}

func TestDecodeSections(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKeys []string
		wantBody map[string]string
		wantErr  bool
	}{
		{name: "empty input", raw: "", wantKeys: []string{}},
		{name: "null", raw: "null", wantKeys: []string{}},
		{name: "empty object", raw: "{}", wantKeys: []string{}},
		{
			name:     "object",
			raw:      `{"title":"T","overview":"O"}`,
			wantKeys: []string{"title", "overview"},
			wantBody: map[string]string{"title": "T", "overview": "O"},
		},
		{
			name:     "double encoded",
			raw:      `"{\"scope\":\"S\",\"title\":\"T\"}"`,
			wantKeys: []string{"scope", "title"},
			wantBody: map[string]string{"scope": "S"},
		},
		{
			name:     "non string values",
			raw:      `{"a":null,"b":3,"c":["x"]}`,
			wantKeys: []string{"a", "b", "c"},
			wantBody: map[string]string{"a": "", "b": "3", "c": `["x"]`},
		},
		{name: "array", raw: `["title"]`, wantErr: true},
		{name: "truncated", raw: `{"title":"T"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSections([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			keys := got.Keys()
			assert.Equal(t, tt.wantKeys, keys)
			for k, want := range tt.wantBody {
				body, _ := got.Get(k)
				assert.Equal(t, want, body)
			}
		})
	}
}
