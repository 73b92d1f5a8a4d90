// Package savezip validates an uploaded world-save archive, lists its
// entries, and detects the world-root subpath within it. Grounded on
// the teacher's pk3 archive iteration (internal/assets/pk3.go), here
// generalized from Quake3 asset pk3s to save-world zip uploads.
package savezip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Entry is one archive member after backslash normalization.
type Entry struct {
	Path  string
	Bytes []byte
}

// InputError is the distinct, observable InputRejected error kind from
// spec §7.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return fmt.Sprintf("savezip: %s", e.Msg) }

var supportedTopLevel = map[string]bool{
	"Level.sav":      true,
	"LevelMeta.sav":  true,
	"LocalData.sav":  true,
	"WorldOption.sav": true,
}

// IsSupported reports whether relPath (relative to a detected world
// root) is one of the fixed top-level save files or matches
// Players/*.sav.
func IsSupported(relPath string) bool {
	if supportedTopLevel[relPath] {
		return true
	}
	dir, file := path.Split(relPath)
	return dir == "Players/" && strings.HasSuffix(file, ".sav")
}

// ReadEntries opens zipBytes and returns every non-directory entry with
// its path backslash-normalized to forward slashes and sanitized
// against parent-directory traversal and absolute prefixes. An empty
// or unreadable archive is an *InputError.
func ReadEntries(zipBytes []byte) ([]Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, &InputError{Msg: fmt.Sprintf("unreadable archive: %v", err)}
	}
	if len(r.File) == 0 {
		return nil, &InputError{Msg: "empty archive"}
	}

	seen := make(map[string]bool, len(r.File))
	var entries []Entry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		clean, ok := sanitizeZipPath(f.Name)
		if !ok {
			return nil, &InputError{Msg: fmt.Sprintf("unsafe entry path: %s", f.Name)}
		}
		if seen[clean] {
			return nil, &InputError{Msg: fmt.Sprintf("duplicate entry path: %s", clean)}
		}
		seen[clean] = true

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("savezip: open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("savezip: read %s: %w", f.Name, err)
		}

		entries = append(entries, Entry{Path: clean, Bytes: data})
	}

	return entries, nil
}

// sanitizeZipPath normalizes backslashes to forward slashes and rejects
// paths that escape the archive root via ".." or an absolute prefix.
func sanitizeZipPath(p string) (string, bool) {
	clean := strings.ReplaceAll(p, "\\", "/")
	if clean == "" || strings.HasPrefix(clean, "/") {
		return "", false
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return clean, true
}

// DetectWorldRoot selects the shallowest directory prefix R such that
// R/Level.sav exists, at least one R/Players/*.sav exists, and no
// R/Player/*.sav (singular) exists. Ties by depth break
// lexicographically. An archive with only Player/ (singular) reports a
// distinct error so callers can surface it separately from "missing
// Players/".
func DetectWorldRoot(entries []Entry) (string, error) {
	byPath := make(map[string]bool, len(entries))
	for _, e := range entries {
		byPath[e.Path] = true
	}

	candidates := candidateRoots(entries)
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := strings.Count(candidates[i], "/"), strings.Count(candidates[j], "/")
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})

	foundPlayerSingularOnly := false
	for _, root := range candidates {
		hasLevel := byPath[joinRoot(root, "Level.sav")]
		if !hasLevel {
			continue
		}
		hasPlayers := hasPrefixedSuffix(entries, joinRoot(root, "Players/"), ".sav")
		hasPlayerSingular := hasPrefixedSuffix(entries, joinRoot(root, "Player/"), ".sav")

		if hasPlayerSingular && !hasPlayers {
			foundPlayerSingularOnly = true
			continue
		}
		if hasLevel && hasPlayers && !hasPlayerSingular {
			return root, nil
		}
	}

	if foundPlayerSingularOnly {
		return "", &InputError{Msg: "found singular Player/ directory, expected Players/"}
	}
	if !anyHasSuffix(entries, "Level.sav") {
		return "", &InputError{Msg: "no Level.sav found in archive"}
	}
	return "", &InputError{Msg: "no Players/*.sav found in archive"}
}

func candidateRoots(entries []Entry) []string {
	seen := map[string]bool{"": true}
	roots := []string{""}
	for _, e := range entries {
		dir := path.Dir(e.Path)
		if dir == "." {
			dir = ""
		}
		for dir != "" {
			if !seen[dir] {
				seen[dir] = true
				roots = append(roots, dir)
			}
			parent := path.Dir(dir)
			if parent == "." {
				parent = ""
			}
			dir = parent
		}
	}
	return roots
}

func joinRoot(root, rel string) string {
	if root == "" {
		return rel
	}
	return root + "/" + rel
}

func hasPrefixedSuffix(entries []Entry, prefix, suffix string) bool {
	for _, e := range entries {
		if strings.HasPrefix(e.Path, prefix) && strings.HasSuffix(e.Path, suffix) {
			return true
		}
	}
	return false
}

func anyHasSuffix(entries []Entry, suffix string) bool {
	for _, e := range entries {
		if strings.HasSuffix(e.Path, suffix) {
			return true
		}
	}
	return false
}

// StripRootPrefix returns p relative to root, or ("", false) if p does
// not lie under root.
func StripRootPrefix(root, p string) (string, bool) {
	if root == "" {
		return p, true
	}
	prefix := root + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(p, prefix)
	if rel == "" {
		return "", false
	}
	return rel, true
}
