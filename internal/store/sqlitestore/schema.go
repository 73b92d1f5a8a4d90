package sqlitestore

// schema is the DDL applied on Open, adapted from the reference
// store's Postgres migration (save_import_versions, save_zip_artifacts,
// save_files, save_variant_metadata) plus the planner row tables the
// original deferred to a later migration. SQLite has no native UUID or
// TIMESTAMPTZ type, so those columns are TEXT; booleans are INTEGER.
const schema = `
CREATE TABLE IF NOT EXISTS save_import_versions (
	id TEXT PRIMARY KEY,
	source_file_name TEXT NOT NULL,
	world_root_path TEXT NOT NULL,
	status TEXT NOT NULL,
	progress_phase TEXT NOT NULL DEFAULT '',
	progress_pct INTEGER NOT NULL DEFAULT 0,
	progress_message TEXT NOT NULL DEFAULT '',
	failed_error TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	completed_at TEXT
);

CREATE TABLE IF NOT EXISTS save_zip_artifacts (
	id TEXT PRIMARY KEY,
	import_version_id TEXT NOT NULL REFERENCES save_import_versions(id),
	export_version_id TEXT,
	kind TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	file_name TEXT NOT NULL,
	byte_size INTEGER NOT NULL,
	sha256 TEXT NOT NULL,
	xxh64 TEXT NOT NULL,
	immutable INTEGER NOT NULL DEFAULT 1,
	retention_policy TEXT NOT NULL DEFAULT 'forever'
);

CREATE TABLE IF NOT EXISTS save_files (
	id TEXT PRIMARY KEY,
	import_version_id TEXT NOT NULL REFERENCES save_import_versions(id),
	relative_path TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	is_supported INTEGER NOT NULL,
	ignored_reason TEXT,
	byte_size INTEGER NOT NULL,
	sha256 TEXT NOT NULL,
	xxh64 TEXT NOT NULL,
	immutable INTEGER NOT NULL DEFAULT 1,
	retention_policy TEXT NOT NULL DEFAULT 'forever'
);

CREATE TABLE IF NOT EXISTS save_variant_metadata (
	id TEXT PRIMARY KEY,
	save_file_id TEXT NOT NULL REFERENCES save_files(id),
	has_cnk_prefix INTEGER NOT NULL,
	magic TEXT,
	save_type INTEGER,
	compression TEXT,
	uncompressed_size INTEGER,
	compressed_size INTEGER,
	gvas_magic TEXT,
	decompressed_size INTEGER,
	decode_status TEXT NOT NULL,
	decode_error TEXT
);

CREATE TABLE IF NOT EXISTS planner_players (
	id TEXT PRIMARY KEY,
	import_version_id TEXT NOT NULL REFERENCES save_import_versions(id),
	player_uid TEXT NOT NULL,
	instance_id TEXT NOT NULL,
	name TEXT NOT NULL,
	guild_id TEXT,
	level INTEGER NOT NULL,
	raw_file_ref TEXT NOT NULL,
	raw_entity_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS planner_pals (
	id TEXT PRIMARY KEY,
	import_version_id TEXT NOT NULL REFERENCES save_import_versions(id),
	pal_instance_id TEXT NOT NULL,
	owner_player_uid TEXT,
	species_id TEXT NOT NULL,
	nickname TEXT,
	gender TEXT,
	level INTEGER NOT NULL,
	exp INTEGER NOT NULL,
	passive_skills TEXT NOT NULL DEFAULT '[]',
	mastered_waza TEXT NOT NULL DEFAULT '[]',
	equipped_waza TEXT NOT NULL DEFAULT '[]',
	raw_file_ref TEXT NOT NULL,
	raw_entity_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS planner_base_assignments (
	id TEXT PRIMARY KEY,
	import_version_id TEXT NOT NULL REFERENCES save_import_versions(id),
	base_id TEXT NOT NULL,
	pal_instance_id TEXT NOT NULL,
	assignment_kind TEXT NOT NULL,
	assignment_target TEXT NOT NULL,
	priority INTEGER NOT NULL,
	raw_file_ref TEXT NOT NULL,
	raw_entity_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS parse_metrics (
	import_version_id TEXT PRIMARY KEY REFERENCES save_import_versions(id),
	wrapper_decode_millis INTEGER NOT NULL,
	gvas_parse_millis INTEGER NOT NULL,
	hint_pass_count INTEGER NOT NULL,
	hint_count_start INTEGER NOT NULL,
	hint_count_end INTEGER NOT NULL,
	character_map_total INTEGER NOT NULL,
	character_map_selected INTEGER NOT NULL,
	character_map_decoded INTEGER NOT NULL,
	base_camp_count INTEGER NOT NULL,
	container_count INTEGER NOT NULL,
	disabled_property_count INTEGER NOT NULL
);
`
