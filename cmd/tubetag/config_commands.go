package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tubetag/internal/config"
	"tubetag/internal/metadata"
)

func newInitConfigCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = config.GetDefaultConfigPath()
			} else {
				target = config.ExpandHome(target)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
			}

			if err := config.SaveConfigFile(config.DefaultConfig(), target); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created default config file at: %s\n", target)
			fmt.Fprintln(out, "\nAvailable options:")
			fmt.Fprintln(out, "  output_dir: where the tagged files are saved")
			fmt.Fprintln(out, "  genre, album: written to every file")
			fmt.Fprintln(out, "  guess_genre: true/false (derive genre from the playlist title)")
			fmt.Fprintln(out, "  parallel_jobs: 1-10 (number of parallel downloads)")
			fmt.Fprintln(out, "  cookies_browser: brave, chrome, firefox, etc.")
			fmt.Fprintln(out, "  audio_format: mp3, m4a, opus, flac, wav, aac")
			fmt.Fprintln(out, "  tag_backend: taglib or id3v2 (id3v2 requires mp3)")
			fmt.Fprintln(out, "  featured_tag: true/false (featured artist in its own tag)")
			fmt.Fprintln(out, "  featured_fallback: true/false (featured tag from the artist when the title names nobody)")
			fmt.Fprintln(out, "  lyrics: true/false (embed lyrics from LRCLib)")
			fmt.Fprintln(out, "  artwork_max_size: longest edge of embedded cover art in pixels")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "o", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newGuessGenreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "guess-genre <playlist title>",
		Short: "Show the genre that would be guessed from a playlist title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			genre, ok := metadata.GuessGenre(title)
			if !ok {
				return fmt.Errorf("no known genre in %q", title)
			}
			fmt.Fprintln(cmd.OutOrStdout(), genre)
			return nil
		},
	}
}
