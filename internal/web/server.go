package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"tubetag/internal/config"
	"tubetag/internal/logger"
	"tubetag/internal/pipeline"
)

//go:embed static
var staticFiles embed.FS

// RunFunc runs one playlist job. pipeline.Run in production.
type RunFunc func(ctx context.Context, cfg config.Config, log *logger.Logger, tmpDir string, hooks pipeline.Hooks) (pipeline.Stats, error)

type Server struct {
	ctx    context.Context
	jobMgr *JobManager
	config config.Config
	logger *logger.Logger
	run    RunFunc
	jobs   sync.WaitGroup
}

// NewServer creates a server whose jobs inherit cfg and stop when ctx is cancelled.
func NewServer(ctx context.Context, jobMgr *JobManager, cfg config.Config, log *logger.Logger) *Server {
	return &Server{
		ctx:    ctx,
		jobMgr: jobMgr,
		config: cfg,
		logger: log,
		run:    pipeline.Run,
	}
}

// Wait blocks until every started job has returned.
func (s *Server) Wait() {
	s.jobs.Wait()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServerFS(static))

	mux.HandleFunc("POST /api/download", s.handleDownload)
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", s.handleCancelJob)
	mux.HandleFunc("GET /api/genre", s.handleGenre)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
