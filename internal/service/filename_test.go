package service

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{"simple title", "Data Structures Final 2024", 60, "data_structures_final_2024"},
		{"special characters stripped", "C++ & OOP: Mid-Term (Set A)!", 60, "c_oop_mid-term_set_a"},
		{"whitespace collapsed", "Physics   II \t Sem  4", 60, "physics_ii_sem_4"},
		{"empty title", "", 60, "untitled-paper"},
		{"only special characters", "???!!!", 60, "untitled-paper"},
		{"truncated", strings.Repeat("a", 100), 10, "aaaaaaaaaa"},
		{"trailing separator trimmed after truncation", "aaaa aaaa", 5, "aaaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeTitle(tt.title, tt.max))
		})
	}
}

func TestGeneratePaperKey(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	key := generatePaperKey("Data Structures Final 2024", now)

	assert.Equal(t, fmt.Sprintf("data_structures_final_2024_%d.pdf", now.UnixMilli()), key)
	assert.Regexp(t, regexp.MustCompile(`^data_structures_final_2024_\d+\.pdf$`), key)
}

func TestGeneratePaperKey_UniquePerTimestamp(t *testing.T) {
	t1 := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Millisecond)

	assert.NotEqual(t, generatePaperKey("Same Title", t1), generatePaperKey("Same Title", t2))
}
