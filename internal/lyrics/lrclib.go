// Package lyrics looks up lyrics for assembled tracks on LRCLib.
package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tubetag/internal/metadata"
)

const defaultAPIURL = "https://lrclib.net/api/get"

// Result holds what LRCLib knows about a track. Both fields may be empty.
type Result struct {
	Synced string // LRC body with timestamps
	Plain  string
}

// Text returns the lyrics to embed: plain text when available, otherwise the
// synced LRC body.
func (r Result) Text() string {
	if s := strings.TrimSpace(r.Plain); s != "" {
		return s
	}
	return strings.TrimSpace(r.Synced)
}

// Query is the lookup LRCLib receives for one track.
type Query struct {
	Artist string
	Title  string
	Album  string
}

// QueryFor builds the lookup for meta. The artist is the main performer only:
// the " ft. X" and " (X Remix)" suffixes Assemble appends are dropped, since
// LRCLib indexes tracks under the original artist.
func QueryFor(meta metadata.NormalizedMetadata) Query {
	artist, _, _ := strings.Cut(meta.Author, " ft. ")
	artist, _, _ = strings.Cut(artist, " (")

	q := Query{
		Artist: strings.TrimSpace(artist),
		Title:  strings.TrimSpace(meta.Title),
	}
	if meta.Album != nil {
		q.Album = strings.TrimSpace(*meta.Album)
	}
	return q
}

type Client struct {
	httpClient *http.Client
	apiURL     string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     defaultAPIURL,
	}
}

// Fetch looks up lyrics for meta. A track without a title or artist, or one
// LRCLib does not know, yields an empty Result and no error.
func (c *Client) Fetch(ctx context.Context, meta metadata.NormalizedMetadata) (Result, error) {
	q := QueryFor(meta)
	if q.Artist == "" || q.Title == "" {
		return Result{}, nil
	}

	params := url.Values{}
	params.Set("artist_name", q.Artist)
	params.Set("track_name", q.Title)
	if q.Album != "" {
		params.Set("album_name", q.Album)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create lrclib request: %w", err)
	}
	req.Header.Set("User-Agent", "tubetag/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("lrclib request for %s - %s failed: %w", q.Artist, q.Title, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Result{}, nil
	default:
		return Result{}, fmt.Errorf("lrclib returned status %d for %s - %s", resp.StatusCode, q.Artist, q.Title)
	}

	var body struct {
		SyncedLyrics string `json:"syncedLyrics"`
		PlainLyrics  string `json:"plainLyrics"`
		Instrumental bool   `json:"instrumental"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("failed to decode lrclib response: %w", err)
	}
	if body.Instrumental {
		return Result{}, nil
	}

	return Result{Synced: body.SyncedLyrics, Plain: body.PlainLyrics}, nil
}
