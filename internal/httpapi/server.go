// Package httpapi is the reference HTTP server boundary: multipart ZIP
// upload, health/readiness, and a progress relay for one normalization
// run. Intentionally unauthenticated -- authentication is an explicit
// non-goal -- grounded on the teacher's net/http-based route wiring
// style (no framework router; ServeMux with method guards).
package httpapi

import (
	"net/http"
	"time"

	"github.com/discjenny/paldesigner/internal/normalize"
	"github.com/discjenny/paldesigner/internal/store/sqlitestore"
	"github.com/rs/zerolog"
)

// Server bundles the dependencies every handler needs.
type Server struct {
	Store             *sqlitestore.Store
	Driver            *normalize.Driver
	Log               zerolog.Logger
	MaxImportZipBytes int64
	ArtifactRoot      string
}

// Router builds the handler tree.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/api/v1/imports", s.handleImports)
	mux.HandleFunc("/api/v1/imports/", s.handleImportByID)
	mux.HandleFunc("/api/v1/imports/progress/", s.handleProgressWS)
	return withCORS(withAccessLog(s.Log, mux))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withAccessLog(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
