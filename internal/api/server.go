package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with a WebSocket hub for real-time
// simulation state updates.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// ServerConfig configures NewServer beyond the engine itself.
type ServerConfig struct {
	MaxBodiesPerRequest int
	CORSOrigins         []string
	RateLimitConfig     *RateLimitConfig
}

// NewServer creates a new API server with production defaults.
//
// IMPORTANT: background workers do NOT start until Start() is called.
// This allows tests to construct the server, grab Router(), and drive
// it through httptest without goroutines or listeners.
func NewServer(engine EngineInterface, cfg ServerConfig) *Server {
	s := &Server{
		engine: engine,
		wsHub:  NewWebSocketHub(cfg.CORSOrigins),
	}

	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	s.rateLimiter = NewIPRateLimiter(rateLimitCfg)

	s.router = NewRouter(RouterConfig{
		Engine:              engine,
		MaxBodiesPerRequest: cfg.MaxBodiesPerRequest,
		RateLimiter:         s.rateLimiter,
		CORSOrigins:         cfg.CORSOrigins,
	})

	// WebSocket routes need the hub instance, so they live outside the
	// pure NewRouter factory.
	s.router.Get("/ws", s.handleWS)

	return s
}

// Start begins the HTTP server AND starts background workers.
// This is the only method that starts goroutines or opens listeners,
// so call it exactly once.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine)

	log.Printf("api server starting on %s", addr)

	return http.ListenAndServe(addr, s.router)
}

// BroadcastMerge pushes a merge notification to WebSocket viewers. Safe to
// call from the engine's merge hook: the hub drops rather than blocks when
// its channel is full.
func (s *Server) BroadcastMerge(survivorID, absorbedID uint64, massTransferred float64) {
	s.wsHub.Broadcast("sim:merge", map[string]interface{}{
		"survivorId":      survivorID,
		"absorbedId":      absorbedID,
		"massTransferred": massTransferred,
	})
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop shuts down background workers. Call before process exit.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	// The WebSocket hub has no stop channel; its connections close when
	// the process exits.
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
