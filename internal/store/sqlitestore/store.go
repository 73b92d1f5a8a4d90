// Package sqlitestore is a modernc.org/sqlite-backed implementation of
// the collab.PlannerRowSink persistence boundary, adapted from the
// reference implementation's Postgres schema (save_import_versions,
// save_zip_artifacts, save_files, save_variant_metadata) plus the
// planner row tables it deferred to a later migration.
package sqlitestore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/discjenny/paldesigner/internal/collab"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store owns the sqlite connection pool and implements
// collab.PlannerRowSink.
type Store struct {
	db *sql.DB
}

// Open connects to dataSourceName (a modernc.org/sqlite DSN, e.g.
// "file:data/paldesigner.db") and applies the schema.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY under concurrent imports

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the connection is live, for the httpapi /ready probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// BeginImport inserts the parent save_import_versions row and returns
// its id, mirroring the reference implementation's transaction start.
func (s *Store) BeginImport(ctx context.Context, sourceFileName, worldRootPath string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO save_import_versions (id, source_file_name, world_root_path, status) VALUES (?, ?, ?, 'processing')`,
		id, sourceFileName, worldRootPath)
	if err != nil {
		return "", fmt.Errorf("sqlitestore: insert save_import_versions: %w", err)
	}
	return id, nil
}

// CompleteImport marks an import ready or failed.
func (s *Store) CompleteImport(ctx context.Context, importID string, ok bool) error {
	status := "ready"
	if !ok {
		status = "failed"
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE save_import_versions SET status = ?, completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE id = ?`,
		status, importID)
	if err != nil {
		return fmt.Errorf("sqlitestore: finalize save_import_versions: %w", err)
	}
	return nil
}

// ImportProgress is one row's current progress state, used both to
// persist incoming collab.ImportProgress events and to answer the
// httpapi's polling/websocket readers.
type ImportProgress struct {
	ID          string
	Status      string
	Phase       string
	Pct         int
	Message     string
	FailedError sql.NullString
	PlayerCount int64
	PalCount    int64
	BaseCount   int64
}

// UpdateProgress records the latest phase/pct/message for an import,
// called from the collab.ProgressSink adapter wired into the driver.
func (s *Store) UpdateProgress(ctx context.Context, importID, phase string, pct int, message string, failedErr string) error {
	var failed sql.NullString
	if failedErr != "" {
		failed = sql.NullString{String: failedErr, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE save_import_versions SET progress_phase = ?, progress_pct = ?, progress_message = ?, failed_error = ? WHERE id = ?`,
		phase, pct, message, failed, importID)
	if err != nil {
		return fmt.Errorf("sqlitestore: update progress: %w", err)
	}
	return nil
}

// GetProgress reads the current progress snapshot for one import,
// including row counts from the planner tables.
func (s *Store) GetProgress(ctx context.Context, importID string) (ImportProgress, error) {
	var p ImportProgress
	p.ID = importID
	err := s.db.QueryRowContext(ctx,
		`SELECT iv.status, iv.progress_phase, iv.progress_pct, iv.progress_message, iv.failed_error,
		        (SELECT COUNT(*) FROM planner_players pp WHERE pp.import_version_id = iv.id),
		        (SELECT COUNT(*) FROM planner_pals pp WHERE pp.import_version_id = iv.id),
		        (SELECT COUNT(*) FROM planner_base_assignments pba WHERE pba.import_version_id = iv.id)
		 FROM save_import_versions iv WHERE iv.id = ?`,
		importID,
	).Scan(&p.Status, &p.Phase, &p.Pct, &p.Message, &p.FailedError, &p.PlayerCount, &p.PalCount, &p.BaseCount)
	if err != nil {
		return p, fmt.Errorf("sqlitestore: get progress: %w", err)
	}
	return p, nil
}

// ImportSummary is one row of the imports list view.
type ImportSummary struct {
	ID             string
	SourceFileName string
	Status         string
	CreatedAt      string
	CompletedAt    sql.NullString
}

// ListImports returns every import version, most recent first.
func (s *Store) ListImports(ctx context.Context) ([]ImportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_file_name, status, created_at, completed_at FROM save_import_versions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list imports: %w", err)
	}
	defer rows.Close()

	out := []ImportSummary{}
	for rows.Next() {
		var s ImportSummary
		if err := rows.Scan(&s.ID, &s.SourceFileName, &s.Status, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan import summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PutSourceZipArtifact records the uploaded archive itself.
func (s *Store) PutSourceZipArtifact(ctx context.Context, importID, storageKey, fileName string, data []byte) error {
	sha256Hex, xxh64Hex, byteSize := ComputeHashes(data)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO save_zip_artifacts (id, import_version_id, export_version_id, kind, storage_key, file_name, byte_size, sha256, xxh64, immutable, retention_policy)
		 VALUES (?, ?, NULL, 'import_source_zip', ?, ?, ?, ?, ?, 1, 'forever')`,
		uuid.NewString(), importID, storageKey, fileName, byteSize, sha256Hex, xxh64Hex)
	if err != nil {
		return fmt.Errorf("sqlitestore: insert save_zip_artifacts: %w", err)
	}
	return nil
}

// PutFileMetadata records one archive member per save_files row,
// hashing its bytes the same way as the source archive.
func (s *Store) PutFileMetadata(ctx context.Context, importID string, files []collab.FileEntry) error {
	for _, f := range files {
		sha256Hex, xxh64Hex, byteSize := ComputeHashes(f.Bytes)
		var ignoredReason sql.NullString
		if !f.IsSupported {
			ignoredReason = sql.NullString{String: "ignored_extra_file", Valid: true}
		}
		storageKey := fmt.Sprintf("storage/imports/%s/files/%s", importID, f.RelativePath)
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO save_files (id, import_version_id, relative_path, storage_key, is_supported, ignored_reason, byte_size, sha256, xxh64, immutable, retention_policy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 'forever')`,
			uuid.NewString(), importID, f.RelativePath, storageKey, f.IsSupported, ignoredReason, byteSize, sha256Hex, xxh64Hex)
		if err != nil {
			return fmt.Errorf("sqlitestore: insert save_files row for %s: %w", f.RelativePath, err)
		}
	}
	return nil
}

// PutVariantMetadata records one save_variant_metadata row per
// inspected .sav file, joined to its save_files row by relative path
// (the caller must have already called PutFileMetadata for this import).
func (s *Store) PutVariantMetadata(ctx context.Context, importID string, rows []collab.VariantMetadata) error {
	for _, v := range rows {
		var fileID string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM save_files WHERE import_version_id = ? AND relative_path = ?`,
			importID, v.RelativePath).Scan(&fileID)
		if err != nil {
			return fmt.Errorf("sqlitestore: lookup save_files for %s: %w", v.RelativePath, err)
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO save_variant_metadata (id, save_file_id, has_cnk_prefix, magic, save_type, compression, uncompressed_size, compressed_size, gvas_magic, decompressed_size, decode_status, decode_error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), fileID, v.HasCNKPrefix, v.Magic, v.SaveType, v.Compression,
			v.UncompressedSize, v.CompressedSize, v.GvasMagic, v.UncompressedSize, v.DecodeStatus, v.DecodeError)
		if err != nil {
			return fmt.Errorf("sqlitestore: insert save_variant_metadata for %s: %w", v.RelativePath, err)
		}
	}
	return nil
}

func (s *Store) PutPlayers(ctx context.Context, importID string, rows []collab.PlayerRow) error {
	for _, p := range rows {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO planner_players (id, import_version_id, player_uid, instance_id, name, guild_id, level, raw_file_ref, raw_entity_path)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), importID, p.PlayerUID, p.InstanceID, p.Name, p.GuildID, p.Level, p.RawFileRef, p.RawEntityPath)
		if err != nil {
			return fmt.Errorf("sqlitestore: insert planner_players: %w", err)
		}
	}
	return nil
}

func (s *Store) PutPals(ctx context.Context, importID string, rows []collab.PalRow) error {
	for _, p := range rows {
		passiveSkills, _ := json.Marshal(p.PassiveSkills)
		masteredWaza, _ := json.Marshal(p.MasteredWaza)
		equippedWaza, _ := json.Marshal(p.EquippedWaza)
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO planner_pals (id, import_version_id, pal_instance_id, owner_player_uid, species_id, nickname, gender, level, exp, passive_skills, mastered_waza, equipped_waza, raw_file_ref, raw_entity_path)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), importID, p.PalInstanceID, p.OwnerPlayerUID, p.SpeciesID, p.Nickname, p.Gender, p.Level, p.Exp,
			string(passiveSkills), string(masteredWaza), string(equippedWaza), p.RawFileRef, p.RawEntityPath)
		if err != nil {
			return fmt.Errorf("sqlitestore: insert planner_pals: %w", err)
		}
	}
	return nil
}

func (s *Store) PutBaseAssignments(ctx context.Context, importID string, rows []collab.BaseAssignmentRow) error {
	for _, a := range rows {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO planner_base_assignments (id, import_version_id, base_id, pal_instance_id, assignment_kind, assignment_target, priority, raw_file_ref, raw_entity_path)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), importID, a.BaseID, a.PalInstanceID, a.AssignmentKind, a.AssignmentTarget, a.Priority, a.RawFileRef, a.RawEntityPath)
		if err != nil {
			return fmt.Errorf("sqlitestore: insert planner_base_assignments: %w", err)
		}
	}
	return nil
}

func (s *Store) PutParseMetrics(ctx context.Context, importID string, m collab.ParseMetrics) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parse_metrics (import_version_id, wrapper_decode_millis, gvas_parse_millis, hint_pass_count, hint_count_start, hint_count_end, character_map_total, character_map_selected, character_map_decoded, base_camp_count, container_count, disabled_property_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		importID, m.WrapperDecodeMillis, m.GvasParseMillis, m.HintPassCount, m.HintCountStart, m.HintCountEnd,
		m.CharacterMapTotal, m.CharacterMapSelected, m.CharacterMapDecoded, m.BaseCampCount, m.ContainerCount, m.DisabledPropertyCount)
	if err != nil {
		return fmt.Errorf("sqlitestore: insert parse_metrics: %w", err)
	}
	return nil
}

// ComputeHashes returns the hex sha256, hex xxh64, and byte length of
// data, matching the reference implementation's per-artifact hashing.
func ComputeHashes(data []byte) (sha256Hex, xxh64Hex string, byteSize int64) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), fmt.Sprintf("%016x", xxhash.Sum64(data)), int64(len(data))
}

var _ collab.PlannerRowSink = (*Store)(nil)
