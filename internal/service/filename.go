package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxKeyTitleLength = 60
	fallbackKeyTitle  = "untitled-paper"
)

var (
	nonFilenameChars = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// sanitizeTitle reduces a paper title to a storage-key-safe slug:
// characters outside [\w\s-] are stripped, whitespace runs collapse to a
// single underscore, the result is lowercased and truncated.
func sanitizeTitle(title string, maxLength int) string {
	clean := nonFilenameChars.ReplaceAllString(title, "")
	clean = strings.TrimSpace(clean)
	clean = strings.ToLower(clean)
	clean = whitespaceRuns.ReplaceAllString(clean, "_")

	if runes := []rune(clean); len(runes) > maxLength {
		clean = string(runes[:maxLength])
	}
	clean = strings.Trim(clean, "_")

	if clean == "" {
		return fallbackKeyTitle
	}
	return clean
}

// generatePaperKey derives the storage key for a submission. The creation
// timestamp keeps keys unique even for repeated titles.
func generatePaperKey(title string, now time.Time) string {
	return fmt.Sprintf("%s_%d.pdf", sanitizeTitle(title, maxKeyTitleLength), now.UnixMilli())
}
