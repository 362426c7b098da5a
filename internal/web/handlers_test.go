package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tubetag/internal/config"
	"tubetag/internal/logger"
	"tubetag/internal/metadata"
	"tubetag/internal/pipeline"
)

func newTestServer(t *testing.T, run RunFunc) (*Server, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := NewServer(ctx, NewJobManager(), config.DefaultConfig(), logger.New(false))
	s.run = run

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

// twoTrackRun reports one good and one failed track.
func twoTrackRun(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks pipeline.Hooks) (pipeline.Stats, error) {
	hooks.OnPlaylist("Deep House Mix", 2)
	hooks.OnTrack(pipeline.Result{
		Index: 0,
		URL:   "u1",
		Meta:  metadata.NormalizedMetadata{Author: "Alpha", Title: "One"},
		Path:  "/music/One - Alpha.mp3",
	})
	hooks.OnTrack(pipeline.Result{Index: 1, URL: "u2", Err: errors.New("private video")})
	hooks.OnWarning("1 of 2 videos failed")
	return pipeline.Stats{Genre: cfg.Genre, Total: 2, Successful: 1, Failed: 1}, nil
}

func postDownload(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/download", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func waitFinished(t *testing.T, jm *JobManager, id string) JobResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := jm.GetJob(id)
		if err != nil {
			t.Fatal(err)
		}
		if job.Status.finished() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return JobResponse{}
}

func TestDownloadCompletesJob(t *testing.T) {
	s, ts := newTestServer(t, twoTrackRun)

	resp := postDownload(t, ts, `{"url":"https://www.youtube.com/playlist?list=PL1","genre":"House","album":"Summer"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var created JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.ID, "job_") {
		t.Errorf("job ID = %q", created.ID)
	}

	job := waitFinished(t, s.jobMgr, created.ID)
	if job.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %q", job.Status, job.Error)
	}
	if job.Playlist != "Deep House Mix" || job.Total != 2 || job.Progress != 2 || job.Failed != 1 {
		t.Errorf("job = %+v", job)
	}
	if job.Genre != "House" || job.Album != "Summer" {
		t.Errorf("genre/album = %q/%q", job.Genre, job.Album)
	}
	if len(job.Tracks) != 2 || job.Tracks[0].Filename != "One - Alpha.mp3" || job.Tracks[1].Error == "" {
		t.Errorf("tracks = %+v", job.Tracks)
	}
	if len(job.Warnings) != 1 {
		t.Errorf("warnings = %v", job.Warnings)
	}
}

func TestDownloadPassesOptions(t *testing.T) {
	var mu sync.Mutex
	var got config.Config
	done := make(chan struct{})
	s, ts := newTestServer(t, func(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks pipeline.Hooks) (pipeline.Stats, error) {
		mu.Lock()
		got = cfg
		mu.Unlock()
		close(done)
		return pipeline.Stats{Total: 1, Successful: 1}, nil
	})
	s.config.Genre = "Pop"

	postDownload(t, ts, `{"url":"https://www.youtube.com/playlist?list=PL1","guess_genre":true,"lyrics":true}`)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run not called")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.PlaylistURL != "https://www.youtube.com/playlist?list=PL1" {
		t.Errorf("PlaylistURL = %q", got.PlaylistURL)
	}
	if got.Genre != "Pop" {
		t.Errorf("Genre = %q, want server default Pop", got.Genre)
	}
	if !got.GuessGenre {
		t.Error("GuessGenre not passed through")
	}
	if !got.Lyrics {
		t.Error("Lyrics not passed through")
	}
}

func TestDownloadBadRequests(t *testing.T) {
	_, ts := newTestServer(t, twoTrackRun)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing url", `{"genre":"House"}`},
		{"bad scheme", `{"url":"ftp://example.com/list"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postDownload(t, ts, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestDownloadFailedRun(t *testing.T) {
	s, ts := newTestServer(t, func(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks pipeline.Hooks) (pipeline.Stats, error) {
		return pipeline.Stats{}, errors.New("all 3 videos failed")
	})

	var created JobResponse
	json.NewDecoder(postDownload(t, ts, `{"url":"https://www.youtube.com/playlist?list=PL1"}`).Body).Decode(&created)

	job := waitFinished(t, s.jobMgr, created.ID)
	if job.Status != StatusFailed || job.Error != "all 3 videos failed" {
		t.Errorf("job = %+v", job)
	}
}

func TestCancelRunningJob(t *testing.T) {
	started := make(chan struct{})
	s, ts := newTestServer(t, func(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks pipeline.Hooks) (pipeline.Stats, error) {
		close(started)
		<-ctx.Done()
		return pipeline.Stats{}, ctx.Err()
	})

	var created JobResponse
	json.NewDecoder(postDownload(t, ts, `{"url":"https://www.youtube.com/playlist?list=PL1"}`).Body).Decode(&created)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("run not started")
	}

	resp, err := http.Post(ts.URL+"/api/jobs/"+created.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}

	if job := waitFinished(t, s.jobMgr, created.ID); job.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", job.Status)
	}
}

func TestGetJob(t *testing.T) {
	s, ts := newTestServer(t, twoTrackRun)
	job := s.jobMgr.CreateJob("https://example.com", s.config)

	resp, err := http.Get(ts.URL + "/api/jobs/" + job.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/api/jobs/job_nope")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.StatusCode)
	}

	list, err := http.Get(ts.URL + "/api/jobs")
	if err != nil {
		t.Fatal(err)
	}
	defer list.Body.Close()
	var jobs []JobResponse
	if err := json.NewDecoder(list.Body).Decode(&jobs); err != nil || len(jobs) != 1 {
		t.Errorf("list = %v, err = %v", jobs, err)
	}
}

func TestGenreEndpoint(t *testing.T) {
	_, ts := newTestServer(t, twoTrackRun)

	tests := []struct {
		title     string
		wantGenre string
		wantFound bool
	}{
		{"Best of Deep House 2024", "Deep House", true},
		{"Road trip", "", false},
	}

	for _, tt := range tests {
		resp, err := http.Get(ts.URL + "/api/genre?title=" + strings.ReplaceAll(tt.title, " ", "+"))
		if err != nil {
			t.Fatal(err)
		}
		var got GenreResponse
		json.NewDecoder(resp.Body).Decode(&got)
		resp.Body.Close()

		if got.Genre != tt.wantGenre || got.Found != tt.wantFound || got.Title != tt.title {
			t.Errorf("genre(%q) = %+v", tt.title, got)
		}
	}
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t, twoTrackRun)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<title>tubetag</title>") {
		t.Errorf("index status = %d", resp.StatusCode)
	}
}

func TestWebSocketStreamsUntilFinished(t *testing.T) {
	release := make(chan struct{})
	_, ts := newTestServer(t, func(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks pipeline.Hooks) (pipeline.Stats, error) {
		<-release
		return twoTrackRun(ctx, cfg, log, tmpDir, hooks)
	})

	var created JobResponse
	json.NewDecoder(postDownload(t, ts, `{"url":"https://www.youtube.com/playlist?list=PL1"}`).Body).Decode(&created)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?job_id=" + created.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	close(release)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var last JobResponse
	for {
		var msg JobResponse
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		last = msg
		if msg.Status.finished() {
			break
		}
	}

	if last.ID != created.ID || last.Status != StatusCompleted {
		t.Errorf("last update = %+v", last)
	}
}

func TestWebSocketUnknownJob(t *testing.T) {
	_, ts := newTestServer(t, twoTrackRun)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?job_id=job_nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown job")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v", resp)
	}
}
