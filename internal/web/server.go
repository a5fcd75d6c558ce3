// Package web exposes the scheduling engine over a small JSON API:
// the due set, stats, grade submission, the quality-label table, and
// the two content triggers that feed the card lifecycle.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yfadel/murajaa/internal/ai"
	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/lifecycle"
	"github.com/yfadel/murajaa/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	db          *storage.DB
	lifecycle   *lifecycle.Manager
	completer   ai.Completer // may be nil when no provider is configured
	defaultLang string
	router      *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, lc *lifecycle.Manager, completer ai.Completer, defaultLang string) *Server {
	s := &Server{
		db:          db,
		lifecycle:   lc,
		completer:   completer,
		defaultLang: defaultLang,
		router:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/api/flashcards", s.handleGetDueSet())
	s.router.HandleFunc("/api/flashcards/stats", s.handleGetStats())
	s.router.HandleFunc("/api/flashcards/review", s.handleSubmitGrade())
	s.router.HandleFunc("/api/flashcards/labels", s.handleGetLabels())
	s.router.HandleFunc("/api/vocab/translate", s.handleTranslateVocab())
	s.router.HandleFunc("/api/verbs/", s.handleVerb())
}

// lang returns the requested language, falling back to the default.
func (s *Server) lang(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" {
		return l
	}
	return s.defaultLang
}

// cardTypeFilter parses the optional cardType query parameter. Unknown
// values mean no filter rather than an error.
func cardTypeFilter(r *http.Request) domain.CardType {
	ct := domain.CardType(r.URL.Query().Get("cardType"))
	if ct.Valid() {
		return ct
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
