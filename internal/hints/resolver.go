package hints

import (
	"fmt"
	"strings"

	"github.com/discjenny/paldesigner/internal/gvas"
)

// sentinelSegments are the generic-container markers simplifyHintPath
// strips out; they carry no disambiguating information of their own,
// only the seed-table suffix that follows them does.
var sentinelSegments = map[string]bool{
	"StructProperty": true,
	"MapProperty":    true,
	"ArrayProperty":  true,
	"SetProperty":    true,
}

// simplifyHintPath removes every segment named StructProperty,
// MapProperty, ArrayProperty, or SetProperty from a dotted path. It is
// idempotent: re-applying it to its own output is a no-op.
func simplifyHintPath(path string) string {
	segs := strings.Split(path, ".")
	out := segs[:0]
	for _, s := range segs {
		if sentinelSegments[s] {
			continue
		}
		out = append(out, s)
	}
	return strings.Join(out, ".")
}

// ResolveResult is the successful output of Resolve: the parsed tree
// plus the hint map that made it parse, and a pass-count/before-after
// hint-count pair for metrics.
type ResolveResult struct {
	Tree          *gvas.Tree
	Hints         map[string]string
	PassCount     int
	HintCountFrom int
	HintCountTo   int
}

// BoundExceededError is returned when the fixed-point loop exhausts its
// pass budget without reaching a successful parse.
type BoundExceededError struct {
	MaxPasses int
	LastErr   error
}

func (e *BoundExceededError) Error() string {
	return fmt.Sprintf("hints: exceeded %d resolution passes: %v", e.MaxPasses, e.LastErr)
}

func (e *BoundExceededError) Unwrap() error { return e.LastErr }

// PassObserver is called once per resolution pass, after a hint has
// been learned from a MissingHintError, letting the normalization
// driver emit progress events (spec §4.9's 78-89% band).
type PassObserver func(pass int, hintCount int, simplifiedPath string)

// Resolve runs the GvasParser in a loop bounded by maxPasses, learning
// one hint per MissingHintError and retrying until the tree parses, the
// bound is hit, or a non-hint error surfaces.
func Resolve(buf []byte, registry *Registry, maxPasses int, observe PassObserver) (*ResolveResult, error) {
	working := registry.MergedHints()
	startCount := len(working)

	var lastErr error
	for pass := 0; pass < maxPasses; pass++ {
		tree, err := gvas.Parse(buf, working)
		if err == nil {
			return &ResolveResult{
				Tree:          tree,
				Hints:         working,
				PassCount:     pass,
				HintCountFrom: startCount,
				HintCountTo:   len(working),
			}, nil
		}

		var missing *gvas.MissingHintError
		if !asMissingHint(err, &missing) {
			return nil, err
		}

		if _, already := working[normalizeHintPath(missing.Path)]; already {
			return nil, fmt.Errorf("hints: stuck on already-present path %s: %w", missing.Path, err)
		}

		simplified := simplifyHintPath(missing.Path)
		inferred, ok := seedTable[simplified]
		if !ok {
			inferred = missing.HintKind
		}

		key := normalizeHintPath(missing.Path)
		working[key] = inferred
		if cacheErr := registry.CacheDiscoveredHint(key, inferred); cacheErr != nil {
			// An append failure does not stop resolution: the working
			// map and the in-process cache already hold the hint. The
			// failure is not reported or logged; lastErr is overwritten
			// below.
			lastErr = cacheErr
		}

		if observe != nil {
			observe(pass+1, len(working), simplified)
		}
		lastErr = err
	}

	return nil, &BoundExceededError{MaxPasses: maxPasses, LastErr: lastErr}
}

func normalizeHintPath(path string) string {
	return strings.TrimPrefix(path, ".")
}

func asMissingHint(err error, out **gvas.MissingHintError) bool {
	if mh, ok := err.(*gvas.MissingHintError); ok {
		*out = mh
		return true
	}
	return false
}
