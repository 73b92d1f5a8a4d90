// Command paldesigner-probe is an offline inspection tool: given a
// world-save zip, it detects the world root, reports every save file's
// wrapper header, fully normalizes Level.sav, and walks every player
// save file, printing a summary to stdout. It is the read-only
// counterpart to paldesigner-server, useful for diagnosing a save
// that the server rejects.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/discjenny/paldesigner/internal/gvas"
	"github.com/discjenny/paldesigner/internal/hints"
	"github.com/discjenny/paldesigner/internal/planner"
	"github.com/discjenny/paldesigner/internal/rawcodec"
	"github.com/discjenny/paldesigner/internal/savezip"
	"github.com/discjenny/paldesigner/internal/wrapper"
	"golang.org/x/term"
)

const maxHintPasses = 512

// verbose gates the per-pass/per-entry progress lines: piping probe
// output to a file or another process shouldn't drown the summary in
// noise the way an interactive terminal session can absorb.
var verbose = term.IsTerminal(int(os.Stdout.Fd()))

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "paldesigner-probe:", err)
		os.Exit(1)
	}
}

func run() error {
	zipPath := "gamesave.zip"
	if len(os.Args) > 1 {
		zipPath = os.Args[1]
	}

	zipBytes, err := os.ReadFile(zipPath)
	if err != nil {
		return fmt.Errorf("read zip file at %s: %w", zipPath, err)
	}

	entries, err := savezip.ReadEntries(zipBytes)
	if err != nil {
		return fmt.Errorf("read archive entries: %w", err)
	}

	root, err := savezip.DetectWorldRoot(entries)
	if err != nil {
		return fmt.Errorf("detect world root: %w", err)
	}
	fmt.Printf("world root: %s\n", root)

	rooted := make(map[string][]byte, len(entries))
	var relPaths []string
	for _, e := range entries {
		rel, ok := savezip.StripRootPrefix(root, e.Path)
		if !ok {
			continue
		}
		rooted[rel] = e.Bytes
		relPaths = append(relPaths, rel)
	}
	sort.Strings(relPaths)

	for _, rel := range relPaths {
		if !savezip.IsSupported(rel) {
			continue
		}
		printVariantSummary(rel, rooted[rel])
	}

	levelBytes, ok := rooted["Level.sav"]
	if !ok {
		return fmt.Errorf("Level.sav not found under world root %s", root)
	}

	levelGvas, err := decodeToGvas(levelBytes)
	if err != nil {
		return fmt.Errorf("decode Level.sav: %w", err)
	}

	registry := hints.NewRegistry("")
	resolved, err := hints.Resolve(levelGvas, registry, maxHintPasses, func(pass, hintCount int, path string) {
		if verbose {
			fmt.Printf("  pass %d: learned hint for %s (total hints %d)\n", pass, path, hintCount)
		}
	})
	if err != nil {
		return fmt.Errorf("parse Level.sav GVAS with learned hints: %w", err)
	}
	fmt.Printf("Level.sav hint count used: %d (passes: %d)\n", len(resolved.Hints), resolved.PassCount)

	fmt.Println("Level.sav top-level keys:")
	for _, key := range resolved.Tree.Root.Names() {
		fmt.Printf("  - %s\n", key)
	}

	if worldSave, ok := resolved.Tree.Root.First("worldSaveData"); ok {
		if sv, ok := worldSave.(gvas.StructValue); ok && sv.Custom != nil {
			fmt.Println("worldSaveData keys:")
			for _, key := range sv.Custom.Names() {
				fmt.Printf("  - %s\n", key)
			}
		}
	}

	codecs := rawcodec.NewDefaultRegistry()
	result, stats, err := planner.Extract(resolved.Tree, codecs, resolved.Hints, "Level.sav", func(processed, selected, total int) {
		if verbose && (processed == total || processed%256 == 0) {
			fmt.Printf("  character walk: %d/%d visited, %d selected\n", processed, total, selected)
		}
	})
	if err != nil {
		return fmt.Errorf("extract planner rows: %w", err)
	}
	fmt.Printf("players=%d pals=%d base_assignments=%d\n", len(result.Players), len(result.Pals), len(result.Assignments))
	fmt.Printf("stats: base_camps=%d containers=%d character_map_total=%d selected=%d decoded=%d\n",
		stats.BaseCampCount, stats.ContainerCount, stats.CharacterMapTotal, stats.CharacterMapSelected, stats.CharacterMapDecoded)

	for _, rel := range relPaths {
		if !isPlayerSaveFile(rel) {
			continue
		}
		if err := inspectPlayerFile(rel, rooted[rel]); err != nil {
			fmt.Printf("%s => error: %v\n", rel, err)
		}
	}

	return nil
}

func isPlayerSaveFile(rel string) bool {
	const prefix = "Players/"
	return len(rel) > len(prefix) && rel[:len(prefix)] == prefix
}

func printVariantSummary(rel string, buf []byte) {
	d := wrapper.Detect(buf)
	decoded, err := wrapper.Decode(buf, d)
	if err != nil {
		fmt.Printf("%s => magic=%q save_type=0x%02x compression=%s decode_error=%v\n",
			rel, d.Magic, d.SaveType, d.Compression, err)
		return
	}
	fmt.Printf("%s => magic=%q save_type=0x%02x compression=%s gvas_bytes=%d\n",
		rel, d.Magic, d.SaveType, d.Compression, len(decoded))
}

func decodeToGvas(buf []byte) ([]byte, error) {
	d := wrapper.Detect(buf)
	return wrapper.Decode(buf, d)
}

func inspectPlayerFile(rel string, buf []byte) error {
	gvasBytes, err := decodeToGvas(buf)
	if err != nil {
		return fmt.Errorf("decode wrapper: %w", err)
	}

	registry := hints.NewRegistry("")
	start := time.Now()
	resolved, err := hints.Resolve(gvasBytes, registry, maxHintPasses, nil)
	if err != nil {
		return fmt.Errorf("parse gvas: %w", err)
	}

	fmt.Printf("%s => parsed in %s, top-level keys=%d, hints used=%d\n",
		rel, time.Since(start), len(resolved.Tree.Root.Names()), len(resolved.Hints))
	return nil
}
