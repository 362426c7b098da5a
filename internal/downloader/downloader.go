package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"tubetag/internal/config"
	"tubetag/internal/logger"
	"tubetag/internal/metadata"
)

// RunFunc executes yt-dlp with args and returns its stdout.
type RunFunc func(ctx context.Context, args ...string) ([]byte, error)

// Downloader handles extracting playlists and downloading audio using yt-dlp
type Downloader struct {
	Config config.Config
	Logger *logger.Logger
	TmpDir string

	run RunFunc
}

// New creates a new Downloader instance
func New(cfg config.Config, log *logger.Logger, tmpDir string) *Downloader {
	d := &Downloader{
		Config: cfg,
		Logger: log,
		TmpDir: tmpDir,
	}
	d.run = d.ytdlp
	return d
}

// WithRunner replaces the yt-dlp invocation, e.g. with canned output.
func (d *Downloader) WithRunner(run RunFunc) *Downloader {
	d.run = run
	return d
}

func (d *Downloader) ytdlp(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if d.Config.Verbose {
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp failed: %w\nDetails: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// cookieArgs returns the browser cookie flags. If empty yt-dlp runs without cookies.
func (d *Downloader) cookieArgs() []string {
	if d.Config.CookiesBrowser == "" {
		return nil
	}
	return []string{"--cookies-from-browser", d.Config.CookiesBrowser}
}

// Playlist is the flat listing of a playlist.
type Playlist struct {
	Title string
	URLs  []string
}

type playlistJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	WebpageURL string `json:"webpage_url"`
	Entries    []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"entries"`
}

// ExtractPlaylist lists the entries of the configured playlist without
// downloading anything. A single video URL yields a one-entry playlist.
func (d *Downloader) ExtractPlaylist(ctx context.Context) (Playlist, error) {
	d.Logger.Info("=== Extracting URLs from playlist ===")
	d.Logger.Debug("Playlist URL: %s", d.Config.PlaylistURL)

	args := append([]string{"--flat-playlist", "--dump-single-json"}, d.cookieArgs()...)
	out, err := d.run(ctx, append(args, d.Config.PlaylistURL)...)
	if err != nil {
		return Playlist{}, fmt.Errorf("failed to extract playlist: %w", err)
	}

	pl, err := parsePlaylist(out)
	if err != nil {
		return Playlist{}, err
	}

	d.Logger.Info("Found %d videos", len(pl.URLs))
	return pl, nil
}

func parsePlaylist(data []byte) (Playlist, error) {
	var raw playlistJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Playlist{}, fmt.Errorf("failed to decode playlist listing: %w", err)
	}

	pl := Playlist{Title: raw.Title}
	for _, e := range raw.Entries {
		switch {
		case e.URL != "":
			pl.URLs = append(pl.URLs, e.URL)
		case e.ID != "":
			pl.URLs = append(pl.URLs, watchURL(e.ID))
		}
	}

	if raw.Entries == nil && raw.ID != "" {
		u := raw.WebpageURL
		if u == "" {
			u = watchURL(raw.ID)
		}
		pl.URLs = []string{u}
	}

	if len(pl.URLs) == 0 {
		return Playlist{}, fmt.Errorf("playlist %q has no entries", raw.Title)
	}
	return pl, nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

type descriptorJSON struct {
	ID          string   `json:"id"`
	Title       *string  `json:"title"`
	Uploader    *string  `json:"uploader"`
	Channel     *string  `json:"channel"`
	Thumbnail   string   `json:"thumbnail"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	UploadDate  string   `json:"upload_date"`
}

// FetchDescriptor fetches the metadata of one video without downloading it.
// A descriptor lacking a title or author is returned as a
// *metadata.MalformedDescriptorError.
func (d *Downloader) FetchDescriptor(ctx context.Context, url string) (metadata.RawVideoDescriptor, error) {
	args := append([]string{"-J", "--skip-download", "--no-playlist"}, d.cookieArgs()...)
	out, err := d.run(ctx, append(args, url)...)
	if err != nil {
		return metadata.RawVideoDescriptor{}, fmt.Errorf("failed to fetch metadata for %s: %w", url, err)
	}
	return parseDescriptor(out)
}

func parseDescriptor(data []byte) (metadata.RawVideoDescriptor, error) {
	var raw descriptorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return metadata.RawVideoDescriptor{}, fmt.Errorf("failed to decode video metadata: %w", err)
	}

	if raw.Title == nil {
		return metadata.RawVideoDescriptor{}, &metadata.MalformedDescriptorError{ID: raw.ID, Field: "title"}
	}
	author := raw.Uploader
	if author == nil {
		author = raw.Channel
	}
	if author == nil {
		return metadata.RawVideoDescriptor{}, &metadata.MalformedDescriptorError{ID: raw.ID, Field: "author"}
	}

	desc := metadata.RawVideoDescriptor{
		ID:           raw.ID,
		Title:        *raw.Title,
		Author:       *author,
		ThumbnailURL: raw.Thumbnail,
		Keywords:     raw.Tags,
		Description:  raw.Description,
	}
	if t, err := time.Parse("20060102", raw.UploadDate); err == nil {
		desc.PublishDate = &t
	}
	return desc, nil
}

// buildYtdlpArgs constructs command-line arguments for an audio download
func (d *Downloader) buildYtdlpArgs(url, stem string) []string {
	// yt-dlp expands % sequences in the output template.
	outputTemplate := filepath.Join(d.TmpDir, strings.ReplaceAll(stem, "%", "%%")+".%(ext)s")

	args := []string{
		"--extract-audio",
		"--audio-format", d.Config.AudioFormat,
		"-f", "bestaudio[ext=m4a]/bestaudio/best",
		"--concurrent-fragments", "1",
		"--no-playlist",
		"--no-progress",
		"-o", outputTemplate,
	}
	args = append(args, d.cookieArgs()...)
	return append(args, url)
}

// DownloadAudio downloads url and converts it to the configured audio format.
// The result is named stem.<format> inside the temp dir; its path is returned.
func (d *Downloader) DownloadAudio(ctx context.Context, url, stem string) (string, error) {
	d.Logger.Debug("Downloading %s as %s", url, stem)

	if _, err := d.run(ctx, d.buildYtdlpArgs(url, stem)...); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("download cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}

	path := filepath.Join(d.TmpDir, stem+"."+d.Config.AudioFormat)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("yt-dlp produced no %s file for %s", d.Config.AudioFormat, url)
	}
	return path, nil
}
