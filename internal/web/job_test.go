package web

import (
	"strings"
	"testing"
	"time"

	"tubetag/internal/config"
)

func TestCleanup(t *testing.T) {
	jm := NewJobManager()
	cfg := config.DefaultConfig()

	// Create an old completed job (2 hours ago)
	old := jm.CreateJob("https://example.com/old", cfg)
	jm.UpdateJob(old.ID, func(j *Job) {
		j.Status = StatusCompleted
	})
	// Backdate CompletedAt
	jm.mu.Lock()
	past := time.Now().Add(-2 * time.Hour)
	jm.jobs[old.ID].CompletedAt = &past
	jm.mu.Unlock()

	// Create a recent completed job (5 minutes ago)
	recent := jm.CreateJob("https://example.com/recent", cfg)
	jm.UpdateJob(recent.ID, func(j *Job) {
		j.Status = StatusCompleted
	})

	// Create a running job (should never be cleaned)
	running := jm.CreateJob("https://example.com/running", cfg)
	jm.UpdateJob(running.ID, func(j *Job) {
		j.Status = StatusRunning
	})

	jm.cleanup()

	if _, err := jm.GetJob(old.ID); err == nil {
		t.Error("old completed job should have been cleaned up")
	}
	if _, err := jm.GetJob(recent.ID); err != nil {
		t.Error("recent completed job should NOT have been cleaned up")
	}
	if _, err := jm.GetJob(running.ID); err != nil {
		t.Error("running job should NOT have been cleaned up")
	}
}

func TestCreateJobUniqueIDs(t *testing.T) {
	jm := NewJobManager()
	cfg := config.DefaultConfig()

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		job := jm.CreateJob("https://example.com", cfg)
		if ids[job.ID] {
			t.Fatalf("duplicate job ID: %s", job.ID)
		}
		ids[job.ID] = true
	}
}

func TestJobIDFormat(t *testing.T) {
	jm := NewJobManager()
	cfg := config.DefaultConfig()

	job := jm.CreateJob("https://example.com", cfg)
	if !strings.HasPrefix(job.ID, "job_") {
		t.Errorf("job ID should start with 'job_', got %q", job.ID)
	}
}

func TestUpdateJobTimestamps(t *testing.T) {
	jm := NewJobManager()
	cfg := config.DefaultConfig()
	job := jm.CreateJob("https://example.com", cfg)

	// Pending → Running should set StartedAt
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusRunning
	})
	j, _ := jm.GetJob(job.ID)
	if j.StartedAt == nil {
		t.Error("StartedAt should be set when status changes to running")
	}

	// Running → Completed should set CompletedAt
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusCompleted
	})
	j, _ = jm.GetJob(job.ID)
	if j.CompletedAt == nil {
		t.Error("CompletedAt should be set when status changes to completed")
	}
}

func TestUpdateJobNotFound(t *testing.T) {
	jm := NewJobManager()
	err := jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("UpdateJob should return error for nonexistent job")
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	jm := NewJobManager()
	cfg := config.DefaultConfig()
	job := jm.CreateJob("https://example.com", cfg)

	ch := jm.Subscribe(job.ID)

	jm.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusRunning
	})

	select {
	case update := <-ch:
		if update.Status != StatusRunning {
			t.Errorf("expected status running, got %s", update.Status)
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for update")
	}

	jm.Unsubscribe(job.ID, ch)
}

func TestFinishedStatusIsFinal(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob("https://example.com", config.DefaultConfig())

	if err := jm.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob() error: %v", err)
	}
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusFailed
		j.Error = "late failure"
	})

	got, _ := jm.GetJob(job.ID)
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set on cancel")
	}
}

func TestCancelJobCallsCancel(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob("https://example.com", config.DefaultConfig())

	called := false
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = func() { called = true }
		j.Status = StatusRunning
	})

	if err := jm.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob() error: %v", err)
	}
	if !called {
		t.Error("cancel func not called")
	}
	if err := jm.CancelJob("job_missing"); err == nil {
		t.Error("expected error for unknown job")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob("https://example.com", config.DefaultConfig())
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Tracks = append(j.Tracks, Track{Title: "one"})
	})

	snap, _ := jm.GetJob(job.ID)
	snap.Tracks[0].Title = "changed"

	again, _ := jm.GetJob(job.ID)
	if again.Tracks[0].Title != "one" {
		t.Error("snapshot shares track storage with the job")
	}
}

func TestListJobsOldestFirst(t *testing.T) {
	jm := NewJobManager()
	cfg := config.DefaultConfig()
	first := jm.CreateJob("https://example.com/1", cfg)
	second := jm.CreateJob("https://example.com/2", cfg)

	jm.mu.Lock()
	jm.jobs[first.ID].CreatedAt = time.Now().Add(-time.Minute)
	jm.mu.Unlock()

	jobs := jm.ListJobs()
	if len(jobs) != 2 || jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Errorf("ListJobs() order = %v", jobs)
	}
}
