package clips

import (
	"strings"
	"unicode"
)

const maxTitleRunes = 100

// SanitizeName makes a video title safe for use in output filenames:
// control characters are dropped, characters outside the allowlist become
// underscores, the result is capped at maxLen runes and stripped of leading
// and trailing spaces and dots. Applied once per run, before deriving every
// clip filename.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return strings.Trim(cleaned, ". ")
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}
