package metadata

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Left behind once a noise phrase or featured name is cut out of a bracket.
	emptyBrackets = strings.NewReplacer("( )", "", "[ ]", "", "()", "", "[]", "")

	// Marker forms left over once the featured artist name has been removed.
	bracketedMarker = regexp.MustCompile(`(?i)\(\s*(?:ft|feat)\.?\s*\)`)
	bareMarker      = regexp.MustCompile(`(?i)\b(?:ft|feat)\.?(?:\s+|$)`)
)

// Clean strips the default noise vocabulary from text and tidies the result.
func Clean(text string) string {
	return CleanWith(text, NoiseWords)
}

// CleanWith strips every phrase of vocab from text, drops empty bracket pairs,
// collapses whitespace and trims. The result is stable under a second call.
func CleanWith(text string, vocab Vocabulary) string {
	return clean(text, "", vocab)
}

// clean runs the removal passes until nothing changes, since cutting one
// phrase out can join its neighbours into another.
func clean(text, featured string, vocab Vocabulary) string {
	text = norm.NFC.String(text)
	for {
		next := vocab.strip(text)
		next = removeFeatured(next, featured)
		next = norm.NFC.String(tidy(next))
		if next == text {
			return next
		}
		text = next
	}
}

func removeFeatured(s, featured string) string {
	if featured == "" {
		return s
	}
	s = strings.ReplaceAll(s, featured, "")
	s = bracketedMarker.ReplaceAllLiteralString(s, "")
	return bareMarker.ReplaceAllLiteralString(s, "")
}

func tidy(s string) string {
	s = collapseSpaces(s)
	s = emptyBrackets.Replace(s)
	return strings.TrimSpace(collapseSpaces(s))
}

func collapseSpaces(s string) string {
	return whitespaceRun.ReplaceAllLiteralString(s, " ")
}
