package metadata

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFilenameLength is the longest path component most filesystems accept, in bytes.
const MaxFilenameLength = 255

const forbiddenChars = `\/*?:"<>|`

// Separators inside a proposed name would create directories.
var separatorReplacer = strings.NewReplacer("/", "-", "\\", "-")

// Sanitize deletes the characters \ / * ? : " < > | (and control characters)
// from name, trims it and cuts it to MaxFilenameLength bytes.
func Sanitize(name string) string {
	return SanitizeWithExt(name, "")
}

// SanitizeWithExt sanitizes stem+ext, shortening the stem so the extension survives.
func SanitizeWithExt(stem, ext string) string {
	ext = stripForbidden(ext)
	stem = strings.TrimSpace(stripForbidden(stem))

	budget := MaxFilenameLength - len(ext)
	if budget < 0 {
		ext = truncateBytes(ext, MaxFilenameLength)
		budget = 0
	}
	stem = strings.TrimSpace(truncateBytes(stem, budget))
	return stem + ext
}

func stripForbidden(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenChars, r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
