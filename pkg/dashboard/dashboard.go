// Package dashboard serves the local read-only status page: two JSON
// endpoints over the live session state plus static assets. It binds to
// localhost only; MCP traffic never passes through here.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/store"
)

// Server exposes the dashboard over one localhost port.
type Server struct {
	browser  *browser.Manager
	store    *store.Store
	log      *logging.Logger
	started  time.Time
	staticFS http.Handler
	httpSrv  *http.Server
}

// New creates a dashboard server. staticDir may be empty, which disables
// static file serving but keeps the API endpoints.
func New(b *browser.Manager, st *store.Store, staticDir string) *Server {
	log, _ := logging.NewLogger("dashboard")
	s := &Server{
		browser:  b,
		store:    st,
		log:      log,
		started:  time.Now(),
	}
	if staticDir != "" {
		s.staticFS = http.FileServer(http.Dir(staticDir))
	}
	return s
}

// Router builds the route table. Split out so tests can drive it with
// httptest without binding a port.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/sessions", s.handleSessions).Methods(http.MethodGet, http.MethodOptions)
	if s.staticFS != nil {
		r.PathPrefix("/").Handler(s.staticFS).Methods(http.MethodGet)
	}
	return r
}

// Start serves until the context is cancelled, then shuts down gracefully.
// It blocks; run it in a goroutine.
func (s *Server) Start(ctx context.Context, port int) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
	}()

	s.log.Infof("dashboard listening on http://localhost:%d", port)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	browserState := map[string]any{
		"running": s.browser.Running(),
		"url":     "about:blank",
		"title":   "",
	}
	if info, err := s.browser.PageInfo(); err == nil {
		browserState["url"] = info.URL
		browserState["title"] = info.Title
	}

	sessions := s.store.LoadSessions()
	writeJSON(w, map[string]any{
		"browser":  browserState,
		"facebook": sessions["facebook"],
		"google":   sessions["google"],
		"uptime":   time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.store.LoadSessions())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
