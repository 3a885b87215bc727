package reader

import "strings"

// CleanText normalizes line endings and collapses extra in-line whitespace.
func CleanText(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		clean := strings.Join(strings.Fields(line), " ")
		if clean == "" {
			continue
		}
		paragraphs = append(paragraphs, clean)
	}

	return strings.Join(paragraphs, "\n\n")
}

// Preview clips text to maxChars runes on a single line, ending in an ellipsis when clipped.
func Preview(raw string, maxChars int) string {
	flat := strings.Join(strings.Fields(raw), " ")
	if maxChars <= 0 {
		return flat
	}

	runes := []rune(flat)
	if len(runes) <= maxChars {
		return flat
	}
	if maxChars == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:maxChars-1])) + "…"
}
