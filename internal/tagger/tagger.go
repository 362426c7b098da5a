// Package tagger applies a metadata.TagPlan to an audio file's tag container.
//
// Two backends are available: TaglibWriter works for any format taglib
// understands, ID3Writer writes ID3v2.4 frames directly and only handles MP3.
// Both write the text slots first and the artwork last, so a failed artwork
// download never loses the title or artist.
package tagger

import (
	"context"
	"fmt"

	"tubetag/internal/metadata"
)

// ArtworkFetcher downloads the image behind an artwork URL.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Backend names accepted by New.
const (
	BackendTaglib = "taglib"
	BackendID3    = "id3v2"
)

// Writer applies a tag plan to the file at path. WriteLyrics replaces the
// embedded unsynchronised lyrics.
type Writer interface {
	Apply(ctx context.Context, path string, plan metadata.TagPlan) error
	WriteLyrics(path, text string) error
}

// New returns the writer for backend.
func New(backend string, artwork ArtworkFetcher) (Writer, error) {
	switch backend {
	case "", BackendTaglib:
		return NewTaglibWriter(artwork), nil
	case BackendID3:
		return NewID3Writer(artwork), nil
	default:
		return nil, fmt.Errorf("unknown tag backend %q", backend)
	}
}

// SlotError reports a slot that could not be written.
type SlotError struct {
	Slot metadata.Slot
	Err  error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("%s: %v", e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }

func fetchArtwork(ctx context.Context, fetcher ArtworkFetcher, url string) ([]byte, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("no artwork fetcher configured")
	}
	return fetcher.Fetch(ctx, url)
}
