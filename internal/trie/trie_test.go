package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixLookup(t *testing.T) {
	t.Parallel()

	tr := New()
	for _, code := range []string{"F401", "F403", "F841", "E501", "E711", "PLE0117", "F401"} {
		tr.Insert(code)
	}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"empty prefix lists every key", "", []string{"E501", "E711", "F401", "F403", "F841", "PLE0117"}},
		{"category", "F", []string{"F401", "F403", "F841"}},
		{"group", "F40", []string{"F401", "F403"}},
		{"exact", "E711", []string{"E711"}},
		{"multi letter", "PLE", []string{"PLE0117"}},
		{"no match", "W", nil},
		{"past the end", "F4011", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tr.WithPrefix(tc.prefix))
			assert.Equal(t, tc.want != nil, tr.HasPrefix(tc.prefix))
		})
	}

	assert.True(t, tr.Contains("F403"))
	assert.False(t, tr.Contains("F40"))
}
