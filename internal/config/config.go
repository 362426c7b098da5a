package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	PlaylistURL      string `yaml:"playlist_url"`
	OutputDir        string `yaml:"output_dir"`
	Genre            string `yaml:"genre"`
	Album            string `yaml:"album"`
	GuessGenre       bool   `yaml:"guess_genre"`
	Verbose          bool   `yaml:"verbose"`
	DryRun           bool   `yaml:"dry_run"`
	ParallelJobs     int    `yaml:"parallel_jobs"`
	CookiesBrowser   string `yaml:"cookies_browser"`
	AudioFormat      string `yaml:"audio_format"`
	TagBackend       string `yaml:"tag_backend"`
	FeaturedTag      bool   `yaml:"featured_tag"`
	FeaturedFallback bool   `yaml:"featured_fallback"`
	ArtworkMaxSize   int    `yaml:"artwork_max_size"`
	Lyrics           bool   `yaml:"lyrics"`
}

var (
	validFormats  = []string{"mp3", "m4a", "opus", "flac", "wav", "aac"}
	validBackends = []string{"taglib", "id3v2"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ParallelJobs:   4,
		AudioFormat:    "mp3",
		TagBackend:     "taglib",
		FeaturedTag:    true,
		ArtworkMaxSize: 1000,
		OutputDir:      filepath.Join(homeDir(), "Music"),
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.OutputDir = ExpandHome(cfg.OutputDir)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./tubetag.yaml",
		"./tubetag.yml",
		filepath.Join(home, ".config", "tubetag", "config.yaml"),
		filepath.Join(home, ".config", "tubetag", "config.yml"),
		filepath.Join(home, ".tubetag.yaml"),
		filepath.Join(home, ".tubetag.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "tubetag", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "tubetag", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PlaylistURL == "" {
		return fmt.Errorf("playlist URL cannot be empty")
	}
	if !strings.HasPrefix(c.PlaylistURL, "http://") && !strings.HasPrefix(c.PlaylistURL, "https://") {
		return fmt.Errorf("playlist URL must start with http:// or https://")
	}

	if c.ParallelJobs < 1 {
		return fmt.Errorf("parallel jobs must be at least 1, got %d", c.ParallelJobs)
	}
	if c.ParallelJobs > 10 {
		return fmt.Errorf("parallel jobs cannot exceed 10 (to avoid rate limiting), got %d", c.ParallelJobs)
	}

	if !slices.Contains(validFormats, c.AudioFormat) {
		return fmt.Errorf("unsupported audio format '%s', valid formats: %v", c.AudioFormat, validFormats)
	}

	if !slices.Contains(validBackends, c.TagBackend) {
		return fmt.Errorf("unknown tag backend %q, valid backends: %v", c.TagBackend, validBackends)
	}
	if c.TagBackend == "id3v2" && c.AudioFormat != "mp3" {
		return fmt.Errorf("tag backend id3v2 only supports mp3, got audio format %q", c.AudioFormat)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if c.ArtworkMaxSize < 0 {
		return fmt.Errorf("artwork_max_size cannot be negative, got %d", c.ArtworkMaxSize)
	}

	return nil
}
