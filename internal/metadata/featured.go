package metadata

import (
	"regexp"
	"strings"
)

// Tried in order, first match wins:
//  1. "ft. (Name) - ..." where the marker comes before the dash
//  2. "... - ... ft. (Name)" where the marker trails the string
//
// The marker is not word-bounded: "Songft. X - Y" still names X.
var featuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:ft|feat)\.\s*\(?(.*?)\)?\s*-`),
	regexp.MustCompile(`(?i)-\s*.*?(?:ft|feat)\.\s*\(?(.*?)\)?$`),
}

// ExtractFeatured returns the featured artist named by an "ft." or "feat."
// clause in text. ok is false when no clause is found or it names nobody.
func ExtractFeatured(text string) (name string, ok bool) {
	for _, p := range featuredPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name = strings.TrimSpace(m[1])
		return name, name != ""
	}
	return "", false
}
