package metadata

import (
	"strings"

	"golang.org/x/text/cases"
)

// More specific names come before the names they contain
// ("Deep House" before "House", "Trap" before "Rap").
var genreNames = []string{
	"Deep House",
	"Tech House",
	"Progressive House",
	"Tropical House",
	"Future House",
	"Bass House",
	"Afro House",
	"Acid House",
	"House",
	"Techno",
	"Trance",
	"Drum and Bass",
	"Drum & Bass",
	"Liquid DnB",
	"DnB",
	"Dubstep",
	"Drumstep",
	"UK Garage",
	"Garage",
	"Breakbeat",
	"Electro Swing",
	"Electronic",
	"EDM",
	"Synthwave",
	"Vaporwave",
	"Lo-Fi",
	"Lofi",
	"Chillout",
	"Chillhop",
	"Downtempo",
	"Ambient",
	"Trip Hop",
	"Hip Hop",
	"Hip-Hop",
	"Trap",
	"Drill",
	"Grime",
	"Rap",
	"Neo Soul",
	"R&B",
	"Soul",
	"Funk",
	"Disco",
	"K-Pop",
	"J-Pop",
	"Synthpop",
	"Indie Pop",
	"Pop Punk",
	"Punk Rock",
	"Hard Rock",
	"Alternative Rock",
	"Indie Rock",
	"Classic Rock",
	"Rock",
	"Heavy Metal",
	"Death Metal",
	"Metalcore",
	"Metal",
	"Punk",
	"Grunge",
	"Indie",
	"Alternative",
	"Pop",
	"Reggaeton",
	"Reggae",
	"Dancehall",
	"Afrobeats",
	"Latin",
	"Salsa",
	"Bossa Nova",
	"Jazz",
	"Blues",
	"Country",
	"Folk",
	"Bluegrass",
	"Gospel",
	"Classical",
	"Soundtrack",
}

var foldedGenres = func() []string {
	out := make([]string, len(genreNames))
	for i, g := range genreNames {
		out[i] = fold(g)
	}
	return out
}()

// fold returns the case-folded form of s. A Caser carries state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Genres returns the genre vocabulary in matching order.
func Genres() []string {
	out := make([]string, len(genreNames))
	copy(out, genreNames)
	return out
}

// GuessGenre returns the first genre whose name appears in playlistTitle,
// ignoring case.
func GuessGenre(playlistTitle string) (string, bool) {
	title := fold(playlistTitle)
	if strings.TrimSpace(title) == "" {
		return "", false
	}
	for i, g := range foldedGenres {
		if strings.Contains(title, g) {
			return genreNames[i], true
		}
	}
	return "", false
}
