package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/discjenny/paldesigner/internal/collab"
	"github.com/discjenny/paldesigner/internal/store/sqlitestore"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	store, err := sqlitestore.Open(dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &Server{Store: store, Log: zerolog.Nop(), MaxImportZipBytes: 1 << 20, ArtifactRoot: t.TempDir()}
}

func TestHandleHealthReturnsOK(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %q", body.Status)
	}
}

func TestHandleReadyReturnsReadyWhenStoreIsUp(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestHandleImportByIDRejectsEmptyID(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty id, got %d", rr.Code)
	}
}

func TestHandleImportByIDRejectsNestedPath(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/abc/def", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for nested path, got %d", rr.Code)
	}
}

func TestHandleImportByIDReturnsDetailForKnownImport(t *testing.T) {
	srv := newTestServer(t)
	id, err := srv.Store.BeginImport(t.Context(), "save.zip", "SaveGames/1234")
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+id, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var frame progressFrame
	if err := json.Unmarshal(rr.Body.Bytes(), &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.ID != id || frame.Status != "processing" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

func TestHandleImportsMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/imports", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHandleImportsListReturnsEmptyArray(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() == "" {
		t.Fatalf("expected a JSON body")
	}
}

func TestInspectVariantsSkipsUnsupportedAndNonSavFiles(t *testing.T) {
	files := []collab.FileEntry{
		{RelativePath: "README.txt", Bytes: []byte("hello"), IsSupported: false},
		{RelativePath: "Players/00000.sav", Bytes: []byte{0xFF, 0xFF, 0xFF, 0xFF}, IsSupported: true},
	}
	out := inspectVariants(files)
	if len(out) != 1 {
		t.Fatalf("expected exactly one variant inspected, got %d", len(out))
	}
	if out[0].RelativePath != "Players/00000.sav" {
		t.Fatalf("unexpected relative path: %q", out[0].RelativePath)
	}
	if out[0].DecodeStatus != "not_attempted" {
		t.Fatalf("expected not_attempted for garbage wrapper bytes, got %q", out[0].DecodeStatus)
	}
}
