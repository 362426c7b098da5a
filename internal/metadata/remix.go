package metadata

import (
	"regexp"
	"strings"
)

// A parenthesised group whose last word is "remix" or "bootleg", e.g. "(DJ X Remix)".
var remixPattern = regexp.MustCompile(`(?i)\(\s*([^()]*?\b(?:bootleg|remix))\s*\)`)

// ExtractParenthetical cuts the first remix/bootleg group out of text.
// It returns the remaining text and the group's inner text; when there is no
// such group text comes back unchanged and ok is false.
func ExtractParenthetical(text string) (residual, extracted string, ok bool) {
	loc := remixPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, "", false
	}

	extracted = strings.TrimSpace(text[loc[2]:loc[3]])
	residual = strings.TrimSpace(collapseSpaces(text[:loc[0]] + text[loc[1]:]))
	return residual, extracted, true
}
