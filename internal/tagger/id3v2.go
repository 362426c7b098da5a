package tagger

import (
	"context"
	"errors"
	"fmt"

	"github.com/bogem/id3v2/v2"

	"tubetag/internal/metadata"
)

// ID3Writer writes ID3v2.4 frames into MP3 files.
type ID3Writer struct {
	artwork ArtworkFetcher
}

// NewID3Writer creates an ID3Writer.
func NewID3Writer(artwork ArtworkFetcher) *ID3Writer {
	return &ID3Writer{artwork: artwork}
}

// Apply sets the planned frames, replacing any existing frame with the same
// ID, and saves the tag once. A failed artwork download is reported but does
// not stop the text frames from being saved.
func (w *ID3Writer) Apply(ctx context.Context, path string, plan metadata.TagPlan) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	var errs []error
	for _, e := range plan {
		switch e.Slot {
		case metadata.SlotTitle:
			tag.SetTitle(e.Value)
		case metadata.SlotArtist:
			tag.SetArtist(e.Value)
		case metadata.SlotFeaturedArtist:
			setText(tag, "TPE2", e.Value)
		case metadata.SlotAlbum:
			tag.SetAlbum(e.Value)
		case metadata.SlotGenre:
			tag.SetGenre(e.Value)
		case metadata.SlotDate:
			setText(tag, "TDRC", e.Value)
		case metadata.SlotComment:
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "desc",
				Text:        e.Value,
			})
		case metadata.SlotArtwork:
			data, err := fetchArtwork(ctx, w.artwork, e.Value)
			if err != nil {
				errs = append(errs, &SlotError{Slot: e.Slot, Err: err})
				continue
			}
			setPicture(tag, data)
		default:
			errs = append(errs, &SlotError{Slot: e.Slot, Err: fmt.Errorf("not supported by id3v2")})
		}
	}

	if err := tag.Save(); err != nil {
		errs = append(errs, fmt.Errorf("failed to save tags to %s: %w", path, err))
	}
	return errors.Join(errs...)
}

// WriteLyrics stores text in a USLT frame, replacing any existing lyrics.
func (w *ID3Writer) WriteLyrics(path, text string) error {
	if text == "" {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding: id3v2.EncodingUTF8,
		Language: "eng",
		Lyrics:   text,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save lyrics to %s: %w", path, err)
	}
	return nil
}

func setText(tag *id3v2.Tag, id, value string) {
	tag.DeleteFrames(id)
	tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
}

func setPicture(tag *id3v2.Tag, data []byte) {
	if len(data) == 0 {
		return
	}
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     data,
	})
}
