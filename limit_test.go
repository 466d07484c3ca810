package bodyparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1mb", 1 << 20},
		{"56kb", 56 << 10},
		{"1048576", 1048576},
		{"2MB", 2 << 20},
		{" 10kb ", 10 << 10},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLimit(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLimitInvalid(t *testing.T) {
	for _, in := range []string{"", "lots", "-1kb", "1xb"} {
		_, err := ParseLimit(in)
		assert.Error(t, err, in)
	}
}
