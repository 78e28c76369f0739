package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	s := &s3Storage{publicURL: "https://files.example.com"}

	tests := []struct {
		name    string
		fileURL string
		want    string
	}{
		{"public url prefix", "https://files.example.com/algebra_final_2024_1700000000000.pdf", "algebra_final_2024_1700000000000.pdf"},
		{"public url prefix with nested key", "https://files.example.com/papers/algebra.pdf", "papers/algebra.pdf"},
		{"foreign host falls back to path parsing", "https://old-cdn.example.org/bucket/algebra.pdf", "bucket/algebra.pdf"},
		{"bare path", "uploads/algebra.pdf", "uploads/algebra.pdf"},
		{"no separator at all", "algebra.pdf", "algebra.pdf"},
		{"empty locator", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.objectKeyFromURL(tt.fileURL))
		})
	}
}

func TestObjectKeyFromURL_NoPublicURL(t *testing.T) {
	s := &s3Storage{}

	assert.Equal(t, "key.pdf", s.objectKeyFromURL("https://somewhere.example.com/key.pdf"))
}
