package metadata

import "strings"

// Slot names a tag field the tag writer knows how to fill.
type Slot int

const (
	SlotTitle Slot = iota
	SlotArtist
	SlotFeaturedArtist
	SlotAlbum
	SlotComment
	SlotDate
	SlotGenre
	SlotArtwork
)

var slotNames = map[Slot]string{
	SlotTitle:          "title",
	SlotArtist:         "artist",
	SlotFeaturedArtist: "featured_artist",
	SlotAlbum:          "album",
	SlotComment:        "comment",
	SlotDate:           "date",
	SlotGenre:          "genre",
	SlotArtwork:        "artwork",
}

func (s Slot) String() string {
	if name, ok := slotNames[s]; ok {
		return name
	}
	return "unknown"
}

// TagEntry is one write: Value goes into Slot. For SlotArtwork, Value is a URL.
type TagEntry struct {
	Slot  Slot
	Value string
}

// TagPlan is the ordered list of writes for one file. Each slot appears at most once.
type TagPlan []TagEntry

// Get returns the value planned for slot.
func (p TagPlan) Get(slot Slot) (string, bool) {
	for _, e := range p {
		if e.Slot == slot {
			return e.Value, true
		}
	}
	return "", false
}

// Text returns the plan without its artwork entry.
func (p TagPlan) Text() TagPlan {
	out := make(TagPlan, 0, len(p))
	for _, e := range p {
		if e.Slot != SlotArtwork {
			out = append(out, e)
		}
	}
	return out
}

// PlanOptions tunes BuildPlan.
type PlanOptions struct {
	// FeaturedSlot writes the featured artist into its own tag, in addition
	// to the " ft. " suffix already on the artist.
	FeaturedSlot bool

	// FeaturedFallback fills the featured slot from the artist found during
	// assembly when the title itself carries no "ft." clause. Assemble strips
	// that clause from the title, so without the fallback the slot is only
	// set for titles that still name a featured artist.
	FeaturedFallback bool
}

// DefaultPlanOptions returns the options used when nothing is configured.
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{FeaturedSlot: true}
}

// BuildPlan lists the tag writes for meta in a fixed order: title, artist,
// album, comment, date, genre, artwork, featured artist. Empty values are skipped.
func BuildPlan(meta NormalizedMetadata, opts PlanOptions) TagPlan {
	var plan TagPlan
	add := func(slot Slot, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		plan = append(plan, TagEntry{Slot: slot, Value: value})
	}

	add(SlotTitle, meta.Title)
	add(SlotArtist, meta.Author)
	add(SlotAlbum, deref(meta.Album))
	add(SlotComment, meta.Comment)
	add(SlotDate, deref(meta.Date))
	add(SlotGenre, deref(meta.Genre))
	add(SlotArtwork, meta.ArtworkURL)

	if opts.FeaturedSlot {
		featured, ok := ExtractFeatured(meta.Title)
		if !ok && opts.FeaturedFallback {
			featured = meta.Featured
		}
		add(SlotFeaturedArtist, featured)
	}
	return plan
}
