package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// handleWebSocket streams job snapshots until the job finishes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job_id")
	if _, err := s.jobMgr.GetJob(jobID); err != nil {
		http.Error(w, "unknown job_id", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates := s.jobMgr.Subscribe(jobID)
	defer s.jobMgr.Unsubscribe(jobID, updates)

	send := func(job JobResponse) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(job); err != nil {
			s.logger.Debug("WebSocket write failed: %v", err)
			return false
		}
		return !job.Status.finished()
	}

	// Send initial job state
	job, err := s.jobMgr.GetJob(jobID)
	if err != nil || !send(job) {
		return
	}

	// Poll as well, since a full channel drops updates.
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case job, ok := <-updates:
			if !ok || !send(job) {
				return
			}

		case <-ticker.C:
			job, err := s.jobMgr.GetJob(jobID)
			if err != nil || !send(job) {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}
