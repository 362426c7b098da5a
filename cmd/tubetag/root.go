package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tubetag/internal/config"
	"tubetag/internal/logger"
	"tubetag/internal/pipeline"
	"tubetag/internal/progress"
	"tubetag/internal/shutdown"
	"tubetag/pkg/utils"
)

type options struct {
	configPath string
	dumpDir    string
	genre      string
	album      string
	browser    string
	format     string
	backend    string
	parallel   int
	guessGenre bool
	noFeatured bool
	fallback   bool
	lyrics     bool
	dryRun     bool
	verbose    bool
}

func newRootCommand() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "tubetag [flags] <playlist_url>",
		Short: "Download a YouTube playlist as cleanly tagged audio files",
		Long: `tubetag downloads every video of a YouTube playlist as audio, derives
artist and title from the video title, strips noise such as "(Official Video)",
and writes the result into the file's tags.

Configuration priority: flags > config file > defaults. Config files are
searched in ./tubetag.yaml, ~/.config/tubetag/config.yaml and ~/.tubetag.yaml.`,
		Example: `  tubetag -d ~/Music/Summer -g House https://www.youtube.com/playlist?list=...
  tubetag --dry-run https://www.youtube.com/playlist?list=...
  tubetag -p 8 -f flac --guess-genre https://www.youtube.com/playlist?list=...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configPath, err := loadConfig(cmd, &opts, args)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return runDownload(cmd, cfg, configPath)
		},
	}

	addRootFlags(rootCmd.Flags(), &opts)

	rootCmd.AddCommand(newInitConfigCommand())
	rootCmd.AddCommand(newGuessGenreCommand())

	return rootCmd
}

func addRootFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	flags.StringVarP(&opts.dumpDir, "dump-dir", "d", "", "Directory to save the files to")
	flags.StringVarP(&opts.genre, "genre", "g", "", "Genre written to every file")
	flags.StringVarP(&opts.album, "album", "a", "", "Album written to every file")
	flags.BoolVar(&opts.guessGenre, "guess-genre", false, "Guess the genre from the playlist title when --genre is not set")
	flags.IntVarP(&opts.parallel, "parallel", "p", 0, "Number of parallel downloads (1-10, default 4)")
	flags.StringVarP(&opts.browser, "browser", "b", "", "Browser to extract cookies from (brave, chrome, firefox, ...)")
	flags.StringVarP(&opts.format, "format", "f", "", "Audio format: mp3, m4a, opus, flac, wav, aac (default mp3)")
	flags.StringVar(&opts.backend, "tag-backend", "", "Tag writer: taglib or id3v2 (default taglib)")
	flags.BoolVar(&opts.noFeatured, "no-featured-tag", false, "Do not write the featured artist to its own tag")
	flags.BoolVar(&opts.fallback, "featured-fallback", false, "Fill the featured artist tag from the artist when the title names nobody")
	flags.BoolVar(&opts.lyrics, "lyrics", false, "Embed lyrics from LRCLib and save synced lyrics as .lrc files")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would be downloaded without downloading")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show detailed output")
}

// loadConfig reads the config file and overlays every flag the user set.
func loadConfig(cmd *cobra.Command, opts *options, args []string) (config.Config, string, error) {
	cfg, err := config.LoadConfigFile(opts.configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	if len(args) == 1 {
		cfg.PlaylistURL = args[0]
	}

	changed := cmd.Flags().Changed
	if changed("dump-dir") {
		cfg.OutputDir = config.ExpandHome(opts.dumpDir)
	}
	if changed("genre") {
		cfg.Genre = opts.genre
	}
	if changed("album") {
		cfg.Album = opts.album
	}
	if changed("guess-genre") {
		cfg.GuessGenre = opts.guessGenre
	}
	if changed("parallel") {
		cfg.ParallelJobs = opts.parallel
	}
	if changed("browser") {
		cfg.CookiesBrowser = opts.browser
	}
	if changed("format") {
		cfg.AudioFormat = opts.format
	}
	if changed("tag-backend") {
		cfg.TagBackend = opts.backend
	}
	if changed("no-featured-tag") {
		cfg.FeaturedTag = !opts.noFeatured
	}
	if changed("featured-fallback") {
		cfg.FeaturedFallback = opts.fallback
	}
	if changed("lyrics") {
		cfg.Lyrics = opts.lyrics
	}
	if changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if changed("verbose") {
		cfg.Verbose = opts.verbose
	}

	return cfg, configPath, nil
}

func runDownload(cmd *cobra.Command, cfg config.Config, configPath string) error {
	sh := shutdown.New()
	sh.Listen()
	defer sh.Shutdown()

	log := logger.New(cfg.Verbose)
	defer log.Close()

	if !cfg.Verbose {
		logFile := filepath.Join(config.GetDefaultLogPath(), fmt.Sprintf("tubetag_%s.log", time.Now().Format("2006-01-02_15-04-05")))
		if err := log.SetFileLog(logFile); err != nil {
			log.Warn("Failed to setup file logging: %v", err)
		} else {
			log.Debug("Logging to file: %s", logFile)
		}
	}

	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	log.Debug("Checking dependencies...")
	if err := utils.CheckDependencies(); err != nil {
		return fmt.Errorf("dependency check failed: %w", err)
	}

	tmpDir, err := utils.CreateTempDir()
	if err != nil {
		return fmt.Errorf("error creating temporary folder: %w", err)
	}
	log.Debug("Temporary folder: %s", tmpDir)

	sh.AddCleanup(func() {
		log.Debug("Cleaning up...")
		if err := utils.Cleanup(tmpDir); err != nil {
			log.Warn("Error during cleanup: %v", err)
		}
	})

	showBar := !cfg.Verbose && !cfg.DryRun && stdoutIsTerminal()

	var bar *progress.Bar
	hooks := pipeline.Hooks{
		OnPlaylist: func(title string, total int) {
			if title != "" {
				log.Info("Playlist: %s", title)
			}
			if showBar {
				bar = progress.NewWithWriter(total, cmd.OutOrStdout())
				log.SetProgressBar(true)
			}
		},
		OnTrack: func(res pipeline.Result) {
			if bar != nil {
				bar.Increment(res.Meta.Title)
			}
		},
	}

	stats, err := pipeline.Run(sh.Context(), cfg, log, tmpDir, hooks)

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	if cfg.DryRun && len(stats.Results) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(resultHeaders, resultRows(stats.Results), resultAligns))
	}

	if err != nil {
		return err
	}

	log.Info("=== Process completed: %d saved, %d failed ===", stats.Successful, stats.Failed)
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
