package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"100", 100},
		{"100B", 100},
		{"1KB", 1024},
		{"1K", 1024},
		{"5MB", 5 * 1024 * 1024},
		{"5M", 5 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"1.5MB", int64(1.5 * 1024 * 1024)},
		{" 10 MB ", 10 * 1024 * 1024},
		{"500kb", 500 * 1024},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSizeErrors(t *testing.T) {
	for _, in := range []string{"", "invalid", "-5MB", "5TB", "0", "MB"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseSize(in)
			assert.Error(t, err)
		})
	}
}
