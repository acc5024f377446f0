package id

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValidAndSorted(t *testing.T) {
	t.Parallel()

	prev := ""
	for i := 0; i < 100; i++ {
		s := New()
		require.True(t, Valid(s), s)
		assert.Greater(t, s, prev)
		prev = s
	}
}

func TestNewAtCarriesTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2023, 1, 1, 9, 15, 0, 0, time.UTC)
	got, ok := Time(NewAt(at))
	require.True(t, ok)
	assert.True(t, at.Equal(got), "got %v", got)
}

func TestValid(t *testing.T) {
	t.Parallel()

	s := New()
	tests := []struct {
		in   string
		want bool
	}{
		{s, true},
		{strings.ToLower(s), false},
		{"", false},
		{"../../etc/passwd", false},
		{s + "0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.in), tt.in)
	}
}
