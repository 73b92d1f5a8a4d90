package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/discjenny/paldesigner/internal/artifactfs"
	"github.com/discjenny/paldesigner/internal/collab"
	"github.com/discjenny/paldesigner/internal/planner"
	"github.com/discjenny/paldesigner/internal/savezip"
	"github.com/discjenny/paldesigner/internal/store/sqlitestore"
	"github.com/discjenny/paldesigner/internal/wrapper"
	"github.com/dustin/go-humanize"
)

// handleImports dispatches the two operations on the import collection:
// GET lists every import version, POST begins a new one from an
// uploaded world-save zip.
func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listImports(w, r)
	case http.MethodPost:
		s.beginImport(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listImports(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.ListImports(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("list imports failed")
		writeError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type beginImportResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// beginImport accepts a multipart upload under the "archive" field,
// persists the source zip and its member files, inspects every .sav
// file's wrapper header, then kicks off Level.sav normalization in the
// background. It responds as soon as the archive has been accepted and
// its metadata recorded, matching the async job shape implied by the
// reference implementation's separate progress-polling endpoint.
func (s *Server) beginImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxImportZipBytes)

	file, header, err := r.FormFile("archive")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing multipart field \"archive\"")
		return
	}
	defer file.Close()

	zipBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload body")
		return
	}
	s.Log.Info().Str("file_name", header.Filename).Str("size", humanize.Bytes(uint64(len(zipBytes)))).Msg("accepted upload")

	entries, err := savezip.ReadEntries(zipBytes)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	root, err := savezip.DetectWorldRoot(entries)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	importID, err := s.Store.BeginImport(ctx, header.Filename, root)
	if err != nil {
		s.Log.Error().Err(err).Msg("begin import failed")
		writeError(w, http.StatusInternalServerError, "failed to begin import")
		return
	}

	if _, err := artifactfs.WriteBytes(s.ArtifactRoot, fmt.Sprintf("storage/imports/%s/source.zip", importID), zipBytes); err != nil {
		s.Log.Error().Err(err).Msg("persist source zip failed")
	}
	if err := s.Store.PutSourceZipArtifact(ctx, importID, fmt.Sprintf("storage/imports/%s/source.zip", importID), header.Filename, zipBytes); err != nil {
		s.Log.Error().Err(err).Msg("record source zip artifact failed")
	}

	var fileEntries []collab.FileEntry
	var levelBytes []byte
	var levelRawRef string

	for _, e := range entries {
		rel, ok := savezip.StripRootPrefix(root, e.Path)
		if !ok {
			continue
		}
		supported := savezip.IsSupported(rel)
		fileEntries = append(fileEntries, collab.FileEntry{RelativePath: rel, Bytes: e.Bytes, IsSupported: supported})
		if _, err := artifactfs.WriteBytes(s.ArtifactRoot, fmt.Sprintf("storage/imports/%s/files/%s", importID, rel), e.Bytes); err != nil {
			s.Log.Error().Err(err).Str("file", rel).Msg("persist save file failed")
		}
		if rel == "Level.sav" {
			levelBytes = e.Bytes
			levelRawRef = rel
		}
	}

	if err := s.Store.PutFileMetadata(ctx, importID, fileEntries); err != nil {
		s.Log.Error().Err(err).Msg("record file metadata failed")
	}

	variants := inspectVariants(fileEntries)
	if err := s.Store.PutVariantMetadata(ctx, importID, variants); err != nil {
		s.Log.Error().Err(err).Msg("record variant metadata failed")
	}

	if levelBytes == nil {
		_ = s.Store.CompleteImport(ctx, importID, false)
		writeError(w, http.StatusUnprocessableEntity, "world root resolved but Level.sav bytes missing")
		return
	}

	go s.runNormalization(importID, levelBytes, levelRawRef)

	writeJSON(w, http.StatusAccepted, beginImportResponse{ID: importID, Status: "processing"})
}

// inspectVariants detects the wrapper header and attempts a full
// wrapper decode of every supported .sav file, independent of the
// normalization pipeline,
// so even a Level.sav decode failure still leaves a metadata row for
// every other save file in the archive.
func inspectVariants(files []collab.FileEntry) []collab.VariantMetadata {
	var out []collab.VariantMetadata
	for _, f := range files {
		if !f.IsSupported || path.Ext(f.RelativePath) != ".sav" {
			continue
		}
		d := wrapper.Detect(f.Bytes)
		v := collab.VariantMetadata{
			RelativePath:     f.RelativePath,
			HasCNKPrefix:     d.HasCNKPrefix,
			Magic:            d.Magic,
			SaveType:         d.SaveType,
			UncompressedSize: d.UncompressedSize,
			CompressedSize:   d.CompressedSize,
			Compression:      d.Compression,
		}

		decoded, err := wrapper.Decode(f.Bytes, d)
		switch {
		case err != nil:
			var decodeErr *wrapper.DecodeError
			if de, ok := err.(*wrapper.DecodeError); ok {
				decodeErr = de
			}
			if decodeErr != nil && decodeErr.NotAttempted {
				v.DecodeStatus = "not_attempted"
			} else {
				v.DecodeStatus = "error"
			}
			v.DecodeError = err.Error()
		case len(decoded) >= 4:
			v.DecodeStatus = "ok"
			v.GvasMagic = string(decoded[:4])
		default:
			v.DecodeStatus = "ok"
		}

		out = append(out, v)
	}
	return out
}

// storeProgressSink adapts collab.ProgressSink onto a persisted import
// row, so both the polling GET handler and the websocket relay read
// from the same source of truth.
type storeProgressSink struct {
	store    *sqlitestore.Store
	importID string
}

func (p storeProgressSink) Send(ctx context.Context, ev collab.ImportProgress) error {
	return p.store.UpdateProgress(ctx, p.importID, ev.Phase, ev.Pct, ev.Message, ev.Error)
}

// runNormalization drives one Level.sav through the core pipeline in
// the background and persists the resulting planner rows, independent
// of the request that accepted the upload.
func (s *Server) runNormalization(importID string, levelBytes []byte, rawFileRef string) {
	ctx := context.Background()
	sink := storeProgressSink{store: s.Store, importID: importID}

	result, metrics, err := s.Driver.NormalizeLevel(ctx, levelBytes, rawFileRef, sink)
	if err != nil {
		s.Log.Error().Err(err).Str("import_id", importID).Msg("normalization failed")
		_ = s.Store.CompleteImport(ctx, importID, false)
		return
	}

	if err := s.Store.PutPlayers(ctx, importID, toPlayerRows(result)); err != nil {
		s.Log.Error().Err(err).Msg("persist player rows failed")
	}
	if err := s.Store.PutPals(ctx, importID, toPalRows(result)); err != nil {
		s.Log.Error().Err(err).Msg("persist pal rows failed")
	}
	if err := s.Store.PutBaseAssignments(ctx, importID, toBaseAssignmentRows(result)); err != nil {
		s.Log.Error().Err(err).Msg("persist base assignment rows failed")
	}
	if err := s.Store.PutParseMetrics(ctx, importID, metrics); err != nil {
		s.Log.Error().Err(err).Msg("persist parse metrics failed")
	}

	if err := s.Store.CompleteImport(ctx, importID, true); err != nil {
		s.Log.Error().Err(err).Msg("finalize import failed")
	}
}

// marshalProgressFrame renders one progress event as a JSON frame for
// the websocket relay.
func marshalProgressFrame(p sqlitestore.ImportProgress) []byte {
	frame, _ := json.Marshal(progressFrame{
		ID:          p.ID,
		Status:      p.Status,
		Phase:       p.Phase,
		Pct:         p.Pct,
		Message:     p.Message,
		PlayerCount: p.PlayerCount,
		PalCount:    p.PalCount,
		BaseCount:   p.BaseCount,
	})
	return frame
}

func toPlayerRows(r planner.Result) []collab.PlayerRow {
	rows := make([]collab.PlayerRow, len(r.Players))
	for i, p := range r.Players {
		rows[i] = collab.PlayerRow{
			PlayerUID:     p.PlayerUID,
			InstanceID:    p.InstanceID,
			Name:          p.Name,
			GuildID:       p.GuildID,
			Level:         p.Level,
			RawFileRef:    p.RawFileRef,
			RawEntityPath: p.RawEntityPath,
		}
	}
	return rows
}

func toPalRows(r planner.Result) []collab.PalRow {
	rows := make([]collab.PalRow, len(r.Pals))
	for i, p := range r.Pals {
		rows[i] = collab.PalRow{
			PalInstanceID:  p.PalInstanceID,
			OwnerPlayerUID: p.OwnerPlayerUID,
			SpeciesID:      p.SpeciesID,
			Nickname:       p.Nickname,
			Gender:         p.Gender,
			Level:          p.Level,
			Exp:            p.Exp,
			PassiveSkills:  p.PassiveSkills,
			MasteredWaza:   p.MasteredWaza,
			EquippedWaza:   p.EquippedWaza,
			RawFileRef:     p.RawFileRef,
			RawEntityPath:  p.RawEntityPath,
		}
	}
	return rows
}

func toBaseAssignmentRows(r planner.Result) []collab.BaseAssignmentRow {
	rows := make([]collab.BaseAssignmentRow, len(r.Assignments))
	for i, a := range r.Assignments {
		rows[i] = collab.BaseAssignmentRow{
			BaseID:           a.BaseID,
			PalInstanceID:    a.PalInstanceID,
			AssignmentKind:   a.AssignmentKind,
			AssignmentTarget: a.AssignmentTarget,
			Priority:         a.Priority,
			RawFileRef:       a.RawFileRef,
			RawEntityPath:    a.RawEntityPath,
		}
	}
	return rows
}

type progressFrame struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Phase       string `json:"phase"`
	Pct         int    `json:"pct"`
	Message     string `json:"message"`
	PlayerCount int64  `json:"player_count"`
	PalCount    int64  `json:"pal_count"`
	BaseCount   int64  `json:"base_count"`
}
