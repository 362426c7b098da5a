package tagger

import (
	"context"
	"errors"
	"fmt"

	"go.senan.xyz/taglib"

	"tubetag/internal/metadata"
)

// taglibKeys maps plan slots to taglib property names. The featured artist
// goes to ALBUMARTIST, which taglib stores as TPE2 in MP3 files.
var taglibKeys = map[metadata.Slot]string{
	metadata.SlotTitle:          taglib.Title,
	metadata.SlotArtist:         taglib.Artist,
	metadata.SlotFeaturedArtist: taglib.AlbumArtist,
	metadata.SlotAlbum:          taglib.Album,
	metadata.SlotComment:        taglib.Comment,
	metadata.SlotDate:           taglib.Date,
	metadata.SlotGenre:          taglib.Genre,
}

// TaglibWriter writes tags through taglib.
type TaglibWriter struct {
	artwork ArtworkFetcher
}

// NewTaglibWriter creates a TaglibWriter. artwork may be nil, in which case
// artwork slots fail and everything else is still written.
func NewTaglibWriter(artwork ArtworkFetcher) *TaglibWriter {
	return &TaglibWriter{artwork: artwork}
}

// Apply writes every text slot in one taglib call, then embeds the artwork.
// Existing tags not named in the plan are kept.
func (w *TaglibWriter) Apply(ctx context.Context, path string, plan metadata.TagPlan) error {
	var errs []error

	tags := make(map[string][]string)
	for _, e := range plan.Text() {
		key, ok := taglibKeys[e.Slot]
		if !ok {
			errs = append(errs, &SlotError{Slot: e.Slot, Err: fmt.Errorf("not supported by taglib")})
			continue
		}
		tags[key] = []string{e.Value}
	}

	if len(tags) > 0 {
		if err := taglib.WriteTags(path, tags, 0); err != nil {
			errs = append(errs, fmt.Errorf("failed to write tags to %s: %w", path, err))
		}
	}

	if url, ok := plan.Get(metadata.SlotArtwork); ok {
		if err := w.writeArtwork(ctx, path, url); err != nil {
			errs = append(errs, &SlotError{Slot: metadata.SlotArtwork, Err: err})
		}
	}

	return errors.Join(errs...)
}

func (w *TaglibWriter) writeArtwork(ctx context.Context, path, url string) error {
	data, err := fetchArtwork(ctx, w.artwork, url)
	if err != nil {
		return err
	}
	return WriteArtwork(path, data)
}

// WriteArtwork embeds artwork image data into an audio file.
func WriteArtwork(path string, imageData []byte) error {
	if len(imageData) == 0 {
		return nil
	}
	if err := taglib.WriteImage(path, imageData); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", path, err)
	}
	return nil
}

// lyricsKey is the taglib property holding unsynchronised lyrics (USLT in MP3).
const lyricsKey = "LYRICS"

// WriteLyrics stores text as the file's lyrics. Other tags are kept.
func (w *TaglibWriter) WriteLyrics(path, text string) error {
	if text == "" {
		return nil
	}
	if err := taglib.WriteTags(path, map[string][]string{lyricsKey: {text}}, 0); err != nil {
		return fmt.Errorf("failed to write lyrics to %s: %w", path, err)
	}
	return nil
}

// ReadTags returns the first value of every tag in the file, keyed by plan slot.
func ReadTags(path string) (map[metadata.Slot]string, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	out := make(map[metadata.Slot]string)
	for slot, key := range taglibKeys {
		if vals, ok := tags[key]; ok && len(vals) > 0 {
			out[slot] = vals[0]
		}
	}
	return out, nil
}
