// Package planner walks a parsed GVAS tree's worldSaveData subtree and
// extracts normalized Player, Pal, and BaseAssignment rows, resolving
// cross-references between base camps, character containers, and
// characters (spec §4.8).
package planner

import "strings"

// Player mirrors spec §3.5.
type Player struct {
	PlayerUID     string
	InstanceID    string
	Name          string
	GuildID       string
	Level         int
	RawFileRef    string
	RawEntityPath string
}

// Pal mirrors spec §3.5.
type Pal struct {
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

// BaseAssignment mirrors spec §3.5.
type BaseAssignment struct {
	BaseID           string
	PalInstanceID    string
	AssignmentKind   string
	AssignmentTarget string
	Priority         int
	RawFileRef       string
	RawEntityPath    string
}

// Result is everything one Level normalization's extraction produces.
type Result struct {
	Players     []Player
	Pals        []Pal
	Assignments []BaseAssignment
}

// Stats carries the per-phase counters the driver folds into its final
// parse-metrics document (spec §4.9).
type Stats struct {
	BaseCampCount        int
	ContainerCount       int
	CharacterMapTotal    int
	CharacterMapSelected int
	CharacterMapDecoded  int
}

// normalizeGUID strips hyphens and uppercases a guid string; the
// single-character literal "0" (the zero-valued struct's shorthand
// textual form) expands to 32 zeros rather than being left short,
// matching spec §3.5's exact rule -- the Rust reference implementation
// this was ported from pads that case to 34 characters, which this
// implementation does not reproduce.
func normalizeGUID(s string) string {
	if s == "0" {
		return strings.Repeat("0", 32)
	}
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}

func isZeroGUID(s string) bool {
	n := normalizeGUID(s)
	for _, c := range n {
		if c != '0' {
			return false
		}
	}
	return len(n) > 0
}
