// Package collab defines the boundary contracts between the core
// normalization pipeline and its external collaborators: the upload
// source, the planner/metadata store, and the progress sink.
package collab

import "context"

// FileEntry is one archive member handed to the core after root
// detection and path stripping.
type FileEntry struct {
	RelativePath string
	Bytes        []byte
	IsSupported  bool
}

// UploadInput is what a collaborator hands the core to begin a
// normalization run.
type UploadInput struct {
	ZipBytes         []byte
	OriginalFilename string
}

// VariantMetadata is one row describing the wrapper inspection of a
// single `.sav` file.
type VariantMetadata struct {
	RelativePath     string
	HasCNKPrefix     bool
	Magic            string
	SaveType         byte
	UncompressedSize uint32
	CompressedSize   uint32
	Compression      string
	GvasMagic        string
	DecodeStatus     string // "ok" | "not_attempted" | "error"
	DecodeError      string
}

// ParseMetrics is the final document produced per Level normalization.
type ParseMetrics struct {
	WrapperDecodeMillis   int64
	GvasParseMillis       int64
	HintPassCount         int
	HintCountStart        int
	HintCountEnd          int
	CharacterMapTotal     int
	CharacterMapSelected  int
	CharacterMapDecoded   int
	BaseCampCount         int
	ContainerCount        int
	DisabledPropertyCount int
}

// ImportProgress is one event in the progress stream (§6.3).
type ImportProgress struct {
	Phase        string
	Pct          int
	Message      string
	Processed    int
	Selected     int
	PlayerCount  int
	PalCount     int
	Total        int
	Error        string
}

// ProgressSink receives a totally-ordered sequence of progress events
// for one normalization run.
type ProgressSink interface {
	Send(ctx context.Context, event ImportProgress) error
}

// PlannerRowSink persists one import's file, variant, planner-row and
// metrics documents. PlayerRow, PalRow, and BaseAssignmentRow (below)
// mirror spec §3.5 and are defined in this package so the sink's
// implementations need not import internal/planner.
type PlannerRowSink interface {
	PutFileMetadata(ctx context.Context, importID string, files []FileEntry) error
	PutVariantMetadata(ctx context.Context, importID string, rows []VariantMetadata) error
	PutPlayers(ctx context.Context, importID string, rows []PlayerRow) error
	PutPals(ctx context.Context, importID string, rows []PalRow) error
	PutBaseAssignments(ctx context.Context, importID string, rows []BaseAssignmentRow) error
	PutParseMetrics(ctx context.Context, importID string, metrics ParseMetrics) error
}

// PlayerRow, PalRow, and BaseAssignmentRow are the wire shapes of the
// planner rows defined in internal/planner.Player/Pal/BaseAssignment,
// duplicated here (rather than imported) so collab stays a leaf
// package with no dependency on the extractor.
type PlayerRow struct {
	PlayerUID     string
	InstanceID    string
	Name          string
	GuildID       string
	Level         int
	RawFileRef    string
	RawEntityPath string
}

type PalRow struct {
	PalInstanceID  string
	OwnerPlayerUID string
	SpeciesID      string
	Nickname       string
	Gender         string
	Level          int
	Exp            int64
	PassiveSkills  []string
	MasteredWaza   []string
	EquippedWaza   []string
	RawFileRef     string
	RawEntityPath  string
}

type BaseAssignmentRow struct {
	BaseID           string
	PalInstanceID    string
	AssignmentKind   string
	AssignmentTarget string
	Priority         int
	RawFileRef       string
	RawEntityPath    string
}
