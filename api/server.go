package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pairtype/pairtype-server/game/text"
	"github.com/pairtype/pairtype-server/transport/websocket"
)

// Server is the HTTP server wrapping the websocket hub and the passage
// provider. The /gemini endpoint always calls the generator directly, even
// when set-text is configured to delegate to a secondary endpoint.
type Server struct {
	hub      *websocket.Hub
	provider text.Provider
	router   *mux.Router
}

// NewServer creates the HTTP server. provider may be nil when no generator
// is configured; /gemini then responds with the usual failure.
func NewServer(hub *websocket.Hub, provider text.Provider) *Server {
	s := &Server{
		hub:      hub,
		provider: provider,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/gemini", s.handleGemini).Methods("GET", "OPTIONS")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.hub.ServeWS)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// corsMiddleware mirrors the permissive policy race clients expect.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleGemini fetches one passage synchronously, independent of any room.
func (s *Server) handleGemini(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}

	passage, err := s.provider.Passage(r.Context())
	if err != nil {
		log.Printf("Passage fetch for /gemini failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"text": passage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
