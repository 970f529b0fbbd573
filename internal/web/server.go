// Package web provides an HTTP status server for the motor-sensor daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/sweeney/motor-sensor/internal/logic"
	"github.com/sweeney/motor-sensor/internal/status"
)

// Server serves the status page over HTTP and pushes live status to
// websocket clients on /ws.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	hub        *hub

	mu       sync.Mutex
	lastSent logic.Snapshot
	sentOnce bool
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker, hub: newHub()}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server and drops websocket clients,
// which http.Server.Shutdown does not track.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	return s.httpServer.Shutdown(ctx)
}

// Notify pushes the current status to websocket clients if the motor
// snapshot changed since the last push. Called by the polling loop after every tick.
func (s *Server) Notify() {
	snap := s.tracker.Snapshot()

	s.mu.Lock()
	if s.sentOnce && snap.Motor == s.lastSent {
		s.mu.Unlock()
		return
	}
	s.lastSent = snap.Motor
	s.sentOnce = true
	s.mu.Unlock()

	s.hub.broadcast(status.FormatCompact(snap))
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		log.Printf("web: render index: %v", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		return
	}

	s.hub.add(conn, status.FormatCompact(s.tracker.Snapshot()))

	// Browsers never send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.remove(conn)
			return
		}
	}
}
