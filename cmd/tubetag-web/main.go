package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tubetag/internal/config"
	"tubetag/internal/logger"
	"tubetag/internal/shutdown"
	"tubetag/internal/web"
)

func main() {
	var (
		port       int
		configPath string
	)

	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&configPath, "config", "", "Config file path")
	flag.Parse()

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	l := logger.New(false)
	logPath := filepath.Join(config.GetDefaultLogPath(), fmt.Sprintf("tubetag-web-%d.log", time.Now().Unix()))
	if err := l.SetFileLog(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
	}
	defer l.Close()

	sh := shutdown.New()
	sh.Listen()

	jobMgr := web.NewJobManager()
	jobMgr.StartCleanup(sh.Context())
	server := web.NewServer(sh.Context(), jobMgr, cfg, l)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("Starting web server on port %d", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Server error: %v", err)
			sh.Shutdown()
		}
	}()

	<-sh.Context().Done()

	l.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		l.Error("Server shutdown error: %v", err)
	}

	// Running jobs see the cancelled context and remove their temp dirs.
	server.Wait()
	l.Info("Server stopped")
}
