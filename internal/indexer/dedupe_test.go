package indexer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	got := Dedupe([]string{"u1", "u2", "u1", "u3"})
	assert.Equal(t, []string{"u1", "u2", "u3"}, got)
}

func TestDedupeEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Dedupe(nil))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	urls := make([]string, 500)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/p/%d", i)
	}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "cap", n: 200, want: 200},
		{name: "zero means unlimited", n: 0, want: 500},
		{name: "negative means unlimited", n: -1, want: 500},
		{name: "cap above length", n: 1000, want: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Truncate(urls, tt.n)
			assert.Len(t, got, tt.want)
			assert.Equal(t, urls[0], got[0])
		})
	}
}
