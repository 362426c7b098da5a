package web

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"tubetag/internal/config"
)

// JobStatus represents the current status of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Track is one processed playlist entry as shown to the client.
type Track struct {
	Filename string `json:"filename"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Error    string `json:"error,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// Job represents a download job
type Job struct {
	ID          string
	URL         string
	Config      config.Config
	Status      JobStatus
	Playlist    string
	Genre       string
	Progress    int
	Failed      int
	Total       int
	Tracks      []Track
	Warnings    []string
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Cancel      context.CancelFunc
}

// JobResponse is the JSON view of a job. It is a copy and safe to use
// without holding the manager's lock.
type JobResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Status      JobStatus `json:"status"`
	Playlist    string    `json:"playlist,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Album       string    `json:"album,omitempty"`
	Progress    int       `json:"progress"`
	Failed      int       `json:"failed"`
	Total       int       `json:"total"`
	Tracks      []Track   `json:"tracks"`
	Warnings    []string  `json:"warnings,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   string    `json:"created_at"`
	StartedAt   *string   `json:"started_at,omitempty"`
	CompletedAt *string   `json:"completed_at,omitempty"`
}

const timeLayout = "2006-01-02 15:04:05"

func (j *Job) response() JobResponse {
	resp := JobResponse{
		ID:        j.ID,
		URL:       j.URL,
		Status:    j.Status,
		Playlist:  j.Playlist,
		Genre:     j.Genre,
		Album:     j.Config.Album,
		Progress:  j.Progress,
		Failed:    j.Failed,
		Total:     j.Total,
		Tracks:    slices.Clone(j.Tracks),
		Warnings:  slices.Clone(j.Warnings),
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(timeLayout),
	}
	if resp.Tracks == nil {
		resp.Tracks = []Track{}
	}

	if j.StartedAt != nil {
		started := j.StartedAt.Format(timeLayout)
		resp.StartedAt = &started
	}
	if j.CompletedAt != nil {
		completed := j.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &completed
	}
	return resp
}

// JobManager manages download jobs
type JobManager struct {
	jobs      map[string]*Job
	mu        sync.RWMutex
	listeners map[string][]chan JobResponse
}

const jobRetention = 1 * time.Hour

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:      make(map[string]*Job),
		listeners: make(map[string][]chan JobResponse),
	}
}

// StartCleanup starts a background goroutine that removes old finished jobs.
// Stops when ctx is cancelled.
func (jm *JobManager) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				jm.cleanup()
			}
		}
	}()
}

func (jm *JobManager) cleanup() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	cutoff := time.Now().Add(-jobRetention)
	for id, job := range jm.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(jm.jobs, id)
			for _, ch := range jm.listeners[id] {
				close(ch)
			}
			delete(jm.listeners, id)
		}
	}
}

// CreateJob creates a new job
func (jm *JobManager) CreateJob(url string, cfg config.Config) JobResponse {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        generateJobID(),
		URL:       url,
		Config:    cfg,
		Status:    StatusPending,
		Genre:     cfg.Genre,
		CreatedAt: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job.response()
}

// GetJob returns a snapshot of the job with the given ID
func (jm *JobManager) GetJob(id string) (JobResponse, error) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, ok := jm.jobs[id]
	if !ok {
		return JobResponse{}, fmt.Errorf("job not found: %s", id)
	}
	return job.response(), nil
}

// jobConfig returns the configuration the job was created with.
func (jm *JobManager) jobConfig(id string) (config.Config, error) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, ok := jm.jobs[id]
	if !ok {
		return config.Config{}, fmt.Errorf("job not found: %s", id)
	}
	return job.Config, nil
}

// ListJobs returns snapshots of all jobs, oldest first
func (jm *JobManager) ListJobs() []JobResponse {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job)
	}
	slices.SortFunc(jobs, func(a, b *Job) int { return a.CreatedAt.Compare(b.CreatedAt) })

	out := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		out[i] = job.response()
	}
	return out
}

// UpdateJob applies fn to the job and notifies subscribers.
// Once a job is finished its status no longer changes.
func (jm *JobManager) UpdateJob(id string, fn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, ok := jm.jobs[id]
	if !ok {
		return fmt.Errorf("job not found: %s", id)
	}

	oldStatus := job.Status
	fn(job)
	if oldStatus.finished() {
		job.Status = oldStatus
	}

	// Update timestamps based on status changes
	if oldStatus != job.Status {
		now := time.Now()
		switch {
		case job.Status == StatusRunning && job.StartedAt == nil:
			job.StartedAt = &now
		case job.Status.finished() && job.CompletedAt == nil:
			job.CompletedAt = &now
		}
	}

	jm.notifyListeners(id, job.response())
	return nil
}

// CancelJob stops a pending or running job.
func (jm *JobManager) CancelJob(id string) error {
	var cancel context.CancelFunc
	err := jm.UpdateJob(id, func(j *Job) {
		cancel = j.Cancel
		j.Status = StatusCancelled
	})
	if err != nil {
		return err
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// Subscribe subscribes to job updates
func (jm *JobManager) Subscribe(jobID string) <-chan JobResponse {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	ch := make(chan JobResponse, 10)
	jm.listeners[jobID] = append(jm.listeners[jobID], ch)
	return ch
}

// Unsubscribe removes a listener
func (jm *JobManager) Unsubscribe(jobID string, ch <-chan JobResponse) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	listeners := jm.listeners[jobID]
	for i, listener := range listeners {
		if listener == ch {
			jm.listeners[jobID] = append(listeners[:i], listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// notifyListeners sends updates to all listeners without blocking.
// A slow listener may miss updates.
func (jm *JobManager) notifyListeners(jobID string, resp JobResponse) {
	for _, ch := range jm.listeners[jobID] {
		select {
		case ch <- resp:
		default:
		}
	}
}

func generateJobID() string {
	return "job_" + uuid.NewString()
}
