package web

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"tubetag/internal/metadata"
	"tubetag/internal/pipeline"
	"tubetag/pkg/utils"
)

// DownloadRequest starts a job. Empty fields fall back to the server config.
type DownloadRequest struct {
	URL        string `json:"url"`
	Genre      string `json:"genre"`
	Album      string `json:"album"`
	GuessGenre *bool  `json:"guess_genre"`
	Lyrics     *bool  `json:"lyrics"`
}

type GenreResponse struct {
	Title string `json:"title"`
	Genre string `json:"genre"`
	Found bool   `json:"found"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	jobConfig := s.config
	jobConfig.PlaylistURL = req.URL
	if g := strings.TrimSpace(req.Genre); g != "" {
		jobConfig.Genre = g
	}
	if a := strings.TrimSpace(req.Album); a != "" {
		jobConfig.Album = a
	}
	if req.GuessGenre != nil {
		jobConfig.GuessGenre = *req.GuessGenre
	}
	if req.Lyrics != nil {
		jobConfig.Lyrics = *req.Lyrics
	}

	if err := jobConfig.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobMgr.CreateJob(req.URL, jobConfig)
	s.logger.Info("Created job %s for URL: %s", job.ID, req.URL)

	s.jobs.Go(func() { s.processJob(job.ID) })

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobMgr.ListJobs())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobMgr.GetJob(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.jobMgr.CancelJob(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Info("Cancelled job %s", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusCancelled)})
}

// handleGenre suggests a genre for a playlist title so the form can be prefilled.
func (s *Server) handleGenre(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	genre, ok := metadata.GuessGenre(title)
	writeJSON(w, http.StatusOK, GenreResponse{Title: title, Genre: genre, Found: ok})
}

func (s *Server) processJob(id string) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	cfg, err := s.jobMgr.jobConfig(id)
	if err != nil {
		return
	}

	var cancelled bool
	s.jobMgr.UpdateJob(id, func(j *Job) {
		cancelled = j.Status == StatusCancelled
		j.Cancel = cancel
		j.Status = StatusRunning
	})
	if cancelled {
		return
	}

	s.logger.Info("Starting job %s", id)

	fail := func(err error) {
		s.jobMgr.UpdateJob(id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
		})
	}

	tempDir, err := utils.CreateTempDir()
	if err != nil {
		s.logger.Error("Failed to create temp dir: %v", err)
		fail(err)
		return
	}
	defer utils.Cleanup(tempDir)

	hooks := pipeline.Hooks{
		OnPlaylist: func(title string, total int) {
			s.jobMgr.UpdateJob(id, func(j *Job) {
				j.Playlist = title
				j.Total = total
			})
		},
		OnTrack: func(res pipeline.Result) {
			s.jobMgr.UpdateJob(id, func(j *Job) {
				j.Progress++
				if res.Err != nil {
					j.Failed++
				}
				j.Tracks = append(j.Tracks, trackFromResult(res))
			})
		},
		OnWarning: func(msg string) {
			s.jobMgr.UpdateJob(id, func(j *Job) {
				j.Warnings = append(j.Warnings, msg)
			})
		},
	}

	stats, err := s.run(ctx, cfg, s.logger, tempDir, hooks)
	s.jobMgr.UpdateJob(id, func(j *Job) { j.Genre = stats.Genre })

	switch {
	case ctx.Err() != nil:
		s.jobMgr.UpdateJob(id, func(j *Job) { j.Status = StatusCancelled })
		s.logger.Info("Job %s cancelled", id)
	case err != nil:
		s.logger.Error("Job %s failed: %v", id, err)
		fail(err)
	default:
		s.jobMgr.UpdateJob(id, func(j *Job) { j.Status = StatusCompleted })
		s.logger.Info("Job %s completed: %d successful, %d failed", id, stats.Successful, stats.Failed)
	}
}

func trackFromResult(res pipeline.Result) Track {
	t := Track{
		Artist: res.Meta.Author,
		Title:  res.Meta.Title,
	}
	if res.Path != "" {
		t.Filename = filepath.Base(res.Path)
	}
	if res.Err != nil {
		t.Error = res.Err.Error()
		if t.Title == "" {
			t.Title = res.URL
		}
	}
	if res.Warning != nil {
		t.Warning = res.Warning.Error()
	}
	return t
}
