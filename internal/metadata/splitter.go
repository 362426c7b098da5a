package metadata

import (
	"strings"
	"unicode/utf8"
)

// Hyphen, en dash and em dash all separate artist from title on YouTube.
const dashes = "-–—"

func hasDash(s string) bool {
	return strings.ContainsAny(s, dashes)
}

// Split separates an "Author - Title" video title on its first dash. Any later
// dashes stay in the title. Without a dash the channel name is the author and
// rawTitle is returned untouched.
func Split(rawTitle, channel string) (author, title string) {
	i := strings.IndexAny(rawTitle, dashes)
	if i < 0 {
		return channel, rawTitle
	}
	_, width := utf8.DecodeRuneInString(rawTitle[i:])

	author = collapseSpaces(strings.TrimSpace(rawTitle[:i]))
	title = collapseSpaces(strings.TrimSpace(rawTitle[i+width:]))
	return author, title
}
