package tagger

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"go.senan.xyz/taglib"

	"tubetag/internal/metadata"
)

// createTestAudioFile generates a minimal MP3 using ffmpeg.
// Skips the test if ffmpeg is not available.
func createTestAudioFile(t *testing.T, dir string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping tagger test")
	}

	path := filepath.Join(dir, "test.mp3")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono", "-t", "0.1", "-q:a", "9", path)
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

func TestTaglibWriterApply(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	w := NewTaglibWriter(fetcherFunc(func(context.Context, string) ([]byte, error) {
		return fakeJPEG, nil
	}))
	if err := w.Apply(context.Background(), path, fullPlan()); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	got, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags() error: %v", err)
	}

	want := map[metadata.Slot]string{
		metadata.SlotTitle:          "Song",
		metadata.SlotArtist:         "Artist ft. Jane",
		metadata.SlotAlbum:          "Summer",
		metadata.SlotComment:        "Out now",
		metadata.SlotDate:           "2021-03-04",
		metadata.SlotGenre:          "House",
		metadata.SlotFeaturedArtist: "Jane",
	}
	for slot, w := range want {
		if got[slot] != w {
			t.Errorf("%s = %q, want %q", slot, got[slot], w)
		}
	}

	img, err := taglib.ReadImage(path)
	if err != nil {
		t.Fatalf("failed to read image: %v", err)
	}
	if len(img) == 0 {
		t.Error("expected embedded image data, got empty")
	}
}

func TestTaglibWriterArtworkFailureKeepsText(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	boom := errors.New("thumbnail gone")
	w := NewTaglibWriter(fetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, boom
	}))

	err := w.Apply(context.Background(), path, fullPlan())
	if !errors.Is(err, boom) {
		t.Fatalf("Apply() error = %v, want %v", err, boom)
	}

	got, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags() error: %v", err)
	}
	if got[metadata.SlotTitle] != "Song" {
		t.Errorf("title = %q, want Song", got[metadata.SlotTitle])
	}
}

func TestTaglibWriterEmptyPlan(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	if err := NewTaglibWriter(nil).Apply(context.Background(), path, nil); err != nil {
		t.Fatalf("Apply() with empty plan failed: %v", err)
	}
}

func TestTaglibWriterNonexistentFile(t *testing.T) {
	plan := metadata.TagPlan{{Slot: metadata.SlotTitle, Value: "x"}}
	if err := NewTaglibWriter(nil).Apply(context.Background(), "/nonexistent/file.mp3", plan); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestWriteArtworkEmpty(t *testing.T) {
	if err := WriteArtwork("/nonexistent", nil); err != nil {
		t.Errorf("expected nil error for empty image, got %v", err)
	}
}

func TestTaglibWriterWriteLyrics(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())
	w := NewTaglibWriter(nil)

	plan := metadata.TagPlan{{Slot: metadata.SlotTitle, Value: "Song"}}
	if err := w.Apply(context.Background(), path, plan); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := w.WriteLyrics(path, "la la la"); err != nil {
		t.Fatalf("WriteLyrics() error: %v", err)
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags() error: %v", err)
	}
	if got := tags[lyricsKey]; len(got) != 1 || got[0] != "la la la" {
		t.Errorf("lyrics = %v", got)
	}
	if got := tags[taglib.Title]; len(got) != 1 || got[0] != "Song" {
		t.Errorf("title = %v, want Song kept", got)
	}
}
