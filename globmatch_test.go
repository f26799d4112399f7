package iofio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*.txt", "a.txt", true},
		{"*.txt", "a.bin", false},
		{"foo.txt", "foo.txt", true},
		{"foo?.txt", "foo1.txt", true},
		{"foo?.txt", "foo12.txt", false},
	}
	for _, tt := range tests {
		got, err := matchGlob(tt.pattern, tt.name)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "pattern=%q name=%q", tt.pattern, tt.name)
	}
}

func TestMatchGlob_MalformedPatternIsNoMatchNotError(t *testing.T) {
	got, err := matchGlob("[", "anything")
	require.NoError(t, err)
	require.False(t, got)
}
