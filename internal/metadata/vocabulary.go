package metadata

import (
	"regexp"
	"sort"
)

// Vocabulary is an immutable set of noise phrases stripped from titles and authors.
// Matching is case-insensitive and literal, so a phrase inside a longer word is removed too.
type Vocabulary struct {
	phrases  []string
	patterns []*regexp.Regexp
}

// NewVocabulary builds a Vocabulary from phrases. Duplicates (ignoring case) are
// dropped and longer phrases are tried first so "Official Video" wins over "Official".
func NewVocabulary(phrases ...string) Vocabulary {
	seen := make(map[string]bool, len(phrases))
	var uniq []string
	for _, p := range phrases {
		if p == "" {
			continue
		}
		key := fold(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, p)
	}

	sort.SliceStable(uniq, func(i, j int) bool {
		return len(uniq[i]) > len(uniq[j])
	})

	v := Vocabulary{phrases: uniq, patterns: make([]*regexp.Regexp, len(uniq))}
	for i, p := range uniq {
		v.patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
	}
	return v
}

// Phrases returns a copy of the vocabulary entries in matching order.
func (v Vocabulary) Phrases() []string {
	out := make([]string, len(v.phrases))
	copy(out, v.phrases)
	return out
}

// strip removes every vocabulary phrase from s once.
func (v Vocabulary) strip(s string) string {
	for _, p := range v.patterns {
		s = p.ReplaceAllLiteralString(s, "")
	}
	return s
}

// NoiseWords is the default vocabulary of marketing and upload boilerplate.
var NoiseWords = NewVocabulary(
	"Official Music Video",
	"Official Lyric Video",
	"Official Video",
	"Official Audio",
	"Lyric Video",
	"Performance Video",
	"Extended Version",
	"Radio Edit",
	"Clip Officiel",
	"Visualizer",
	"Instrumental",
	"Official",
	"Audio",
	"Cover",
	"Teaser",
	"Explicit",
	"(Clean)",
	"(FREE)",
	"Demo",
	"VEVO",
	"MV",
	"HD",
	"4K",
)
