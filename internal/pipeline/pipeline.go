package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"tubetag/internal/artwork"
	"tubetag/internal/config"
	"tubetag/internal/downloader"
	"tubetag/internal/logger"
	"tubetag/internal/lyrics"
	"tubetag/internal/metadata"
	"tubetag/internal/tagger"
	"tubetag/pkg/utils"
)

// LockFile is created in the output directory while a run writes to it.
const LockFile = ".tubetag.lock"

// Source lists a playlist and fetches its entries.
type Source interface {
	ExtractPlaylist(ctx context.Context) (downloader.Playlist, error)
	FetchDescriptor(ctx context.Context, url string) (metadata.RawVideoDescriptor, error)
	DownloadAudio(ctx context.Context, url, stem string) (string, error)
}

// LyricsSource looks up lyrics for a track. An empty result means no match.
type LyricsSource interface {
	Fetch(ctx context.Context, meta metadata.NormalizedMetadata) (lyrics.Result, error)
}

type Hooks struct {
	OnPlaylist func(title string, total int)
	OnTrack    func(res Result)
	OnWarning  func(msg string)
}

// Result is the outcome of one playlist entry.
type Result struct {
	Index   int
	URL     string
	Meta    metadata.NormalizedMetadata
	Path    string // final location, or the planned one in dry-run mode
	Err     error  // entry failed and produced no file
	Warning error  // file was saved but some tags could not be written
}

// Stats summarizes a run.
type Stats struct {
	Playlist   string
	Genre      string
	Total      int
	Successful int
	Failed     int
	Results    []Result
}

// Runner processes one playlist.
type Runner struct {
	Config config.Config
	Logger *logger.Logger
	Source Source
	Tagger tagger.Writer
	Lyrics LyricsSource // nil disables the lyrics step

	moveMu sync.Mutex
	hookMu sync.Mutex
}

// Run executes the full pipeline: extract playlist → fetch metadata → download → tag → move.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks Hooks) (Stats, error) {
	w, err := tagger.New(cfg.TagBackend, artwork.NewFetcher(cfg.ArtworkMaxSize))
	if err != nil {
		return Stats{}, err
	}

	r := &Runner{
		Config: cfg,
		Logger: log,
		Source: downloader.New(cfg, log, tmpDir),
		Tagger: w,
	}
	if cfg.Lyrics {
		r.Lyrics = lyrics.NewClient()
	}
	return r.Run(ctx, hooks)
}

// Run processes every entry of the configured playlist. Entry failures are
// logged and counted; a malformed descriptor aborts the whole run.
func (r *Runner) Run(ctx context.Context, hooks Hooks) (Stats, error) {
	cfg := r.Config
	var stats Stats

	if !cfg.DryRun {
		unlock, err := lockOutputDir(cfg.OutputDir)
		if err != nil {
			return stats, err
		}
		defer unlock()
	}

	pl, err := r.Source.ExtractPlaylist(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to extract URLs: %w", err)
	}
	stats.Playlist = pl.Title
	stats.Total = len(pl.URLs)

	stats.Genre = cfg.Genre
	if stats.Genre == "" && cfg.GuessGenre {
		if g, ok := metadata.GuessGenre(pl.Title); ok {
			r.Logger.Info("Guessed genre %q from playlist title %q", g, pl.Title)
			stats.Genre = g
		} else {
			r.Logger.Debug("No genre found in playlist title %q", pl.Title)
		}
	}

	if hooks.OnPlaylist != nil {
		hooks.OnPlaylist(pl.Title, len(pl.URLs))
	}

	r.Logger.Info("=== Processing %d videos, %d parallel ===", len(pl.URLs), cfg.ParallelJobs)

	opts := metadata.AssembleOptions{Genre: stats.Genre, Album: cfg.Album}
	results := make([]Result, len(pl.URLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.ParallelJobs, 1))

	for i, url := range pl.URLs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			res, err := r.processEntry(gctx, i, url, opts)
			results[i] = res
			r.report(hooks, res)

			if errors.Is(err, metadata.ErrMalformedDescriptor) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		stats.count(results)
		return stats, fmt.Errorf("aborted: %w", err)
	}
	stats.count(results)

	if ctx.Err() != nil {
		return stats, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	if stats.Failed > 0 {
		msg := fmt.Sprintf("%d of %d videos failed (private, unavailable, or geo-restricted)", stats.Failed, stats.Total)
		r.Logger.Warn("%s", msg)
		if hooks.OnWarning != nil {
			hooks.OnWarning(msg)
		}
	}
	if stats.Total > 0 && stats.Successful == 0 {
		return stats, fmt.Errorf("all %d videos failed", stats.Total)
	}

	r.Logger.Info("Completed: %d successful, %d failed", stats.Successful, stats.Failed)
	return stats, nil
}

func (r *Runner) processEntry(ctx context.Context, idx int, url string, opts metadata.AssembleOptions) (Result, error) {
	res := Result{Index: idx, URL: url}

	raw, err := r.Source.FetchDescriptor(ctx, url)
	if err != nil {
		res.Err = err
		r.Logger.Warn("Skipping %s: %v", url, err)
		return res, err
	}

	res.Meta = metadata.Assemble(raw, opts)
	name := fileName(res.Meta, raw.ID, r.Config.AudioFormat)

	if r.Config.DryRun {
		res.Path = filepath.Join(r.Config.OutputDir, name)
		r.Logger.Info("[dry-run] %s", name)
		return res, nil
	}

	stem := fmt.Sprintf("%04d_%s", idx, metadata.Sanitize(raw.ID))
	tmpPath, err := r.Source.DownloadAudio(ctx, url, stem)
	if err != nil {
		res.Err = err
		r.Logger.Warn("Download failed for %s: %v", url, err)
		return res, err
	}

	plan := metadata.BuildPlan(res.Meta, metadata.PlanOptions{
		FeaturedSlot:     r.Config.FeaturedTag,
		FeaturedFallback: r.Config.FeaturedFallback,
	})
	if err := r.Tagger.Apply(ctx, tmpPath, plan); err != nil {
		res.Warning = err
		r.Logger.Warn("Some tags could not be written for %s: %v", name, err)
	}

	synced, err := r.addLyrics(ctx, tmpPath, res.Meta)
	if err != nil {
		res.Warning = errors.Join(res.Warning, err)
		r.Logger.Warn("Lyrics not added for %s: %v", name, err)
	}

	dst, err := r.move(tmpPath, filepath.Join(r.Config.OutputDir, name))
	if err != nil {
		res.Err = err
		r.Logger.Warn("Error moving %s: %v", tmpPath, err)
		return res, err
	}
	res.Path = dst

	if synced != "" {
		lrc := strings.TrimSuffix(dst, filepath.Ext(dst)) + ".lrc"
		if err := os.WriteFile(lrc, []byte(synced), 0644); err != nil {
			r.Logger.Warn("Failed to write %s: %v", lrc, err)
		}
	}

	r.Logger.Debug("Saved %s", dst)
	return res, nil
}

// addLyrics embeds the lyrics found for meta into the file at path and
// returns the synced LRC body, if any, for the sidecar file.
func (r *Runner) addLyrics(ctx context.Context, path string, meta metadata.NormalizedMetadata) (string, error) {
	if r.Lyrics == nil {
		return "", nil
	}

	found, err := r.Lyrics.Fetch(ctx, meta)
	if err != nil {
		return "", err
	}
	text := found.Text()
	if text == "" {
		r.Logger.Debug("No lyrics found for %s - %s", meta.Author, meta.Title)
		return "", nil
	}

	if err := r.Tagger.WriteLyrics(path, text); err != nil {
		return "", err
	}
	return strings.TrimSpace(found.Synced), nil
}

// move places src at dst, or at a numbered variant when dst is taken.
func (r *Runner) move(src, dst string) (string, error) {
	r.moveMu.Lock()
	defer r.moveMu.Unlock()

	dst = utils.UniquePath(dst)
	if err := utils.MoveFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (r *Runner) report(hooks Hooks, res Result) {
	if hooks.OnTrack == nil {
		return
	}
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	hooks.OnTrack(res)
}

// count fills the counters from results. Entries that never started are skipped.
func (s *Stats) count(results []Result) {
	s.Successful, s.Failed = 0, 0
	s.Results = s.Results[:0]
	for _, res := range results {
		if res.URL == "" {
			continue
		}
		s.Results = append(s.Results, res)
		if res.Err != nil {
			s.Failed++
		} else {
			s.Successful++
		}
	}
}

// fileName derives the on-disk name, falling back to the video ID when
// nothing survives sanitizing.
func fileName(meta metadata.NormalizedMetadata, id, format string) string {
	ext := "." + format
	if stem := metadata.Sanitize(meta.Filename); stem != "" {
		return metadata.SanitizeWithExt(stem, ext)
	}
	if stem := metadata.Sanitize(id); stem != "" {
		return metadata.SanitizeWithExt(stem, ext)
	}
	return "untitled" + ext
}

// lockOutputDir creates dir and takes an exclusive lock on it so two runs
// never write the same directory.
func lockOutputDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run is already writing to %s", dir)
	}

	return func() {
		lock.Unlock()
		os.Remove(lock.Path())
	}, nil
}
