package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/discjenny/paldesigner/internal/store/sqlitestore"
	"github.com/gorilla/websocket"
)

// handleImportByID serves the detail view of a single import version:
// its current status and progress snapshot. The route is also reached
// for the bare "/api/v1/imports/" prefix with an empty id, which is
// rejected as not found.
func (s *Server) handleImportByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/imports/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "import not found")
		return
	}

	progress, err := s.Store.GetProgress(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "import not found")
		return
	}
	writeJSON(w, http.StatusOK, importDetailResponse(progress))
}

func importDetailResponse(p sqlitestore.ImportProgress) progressFrame {
	frame := progressFrame{
		ID:          p.ID,
		Status:      p.Status,
		Phase:       p.Phase,
		Pct:         p.Pct,
		Message:     p.Message,
		PlayerCount: p.PlayerCount,
		PalCount:    p.PalCount,
		BaseCount:   p.BaseCount,
	}
	return frame
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const progressPollInterval = 250 * time.Millisecond

// handleProgressWS relays one import's progress as a sequence of JSON
// frames over a websocket connection, polling the persisted row until
// it reaches a terminal status. Polling the store rather than the
// in-process driver keeps this relay correct across multiple server
// processes sharing one database, and matches the driver's own
// fire-and-forget background goroutine in upload.go.
func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/imports/progress/")
	if id == "" {
		writeError(w, http.StatusNotFound, "import not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		progress, err := s.Store.GetProgress(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"import not found"}`))
			}
			return
		}

		if err := conn.WriteMessage(websocket.TextMessage, marshalProgressFrame(progress)); err != nil {
			return
		}
		if progress.Status == "ready" || progress.Status == "failed" {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
