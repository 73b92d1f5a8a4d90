package hints

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergedHintsIncludesSeedTable(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "discovered.txt"))
	merged := r.MergedHints()
	for k, v := range seedTable {
		if merged[k] != v {
			t.Fatalf("expected seed entry %s=%s in merged hints, got %s", k, v, merged[k])
		}
	}
}

func TestCacheDiscoveredHintOverridesSeed(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "discovered.txt"))
	const path = "worldSaveData.BaseCampSaveData.Key"

	if err := r.CacheDiscoveredHint(path, "Guid"); err != nil {
		t.Fatalf("cache hint: %v", err)
	}
	merged := r.MergedHints()
	if merged[path] != "Guid" {
		t.Fatalf("expected cached override, got %q", merged[path])
	}
}

func TestCacheDiscoveredHintPersistsAcrossRegistries(t *testing.T) {
	discoveryFile := filepath.Join(t.TempDir(), "discovered.txt")

	first := NewRegistry(discoveryFile)
	if err := first.CacheDiscoveredHint("some.novel.path", "IntProperty"); err != nil {
		t.Fatalf("cache hint: %v", err)
	}

	second := NewRegistry(discoveryFile)
	merged := second.MergedHints()
	if merged["some.novel.path"] != "IntProperty" {
		t.Fatalf("expected persisted hint to be visible from a fresh registry, got %q", merged["some.novel.path"])
	}
}

func TestResolveDiscoveryPathFallsBackToDefault(t *testing.T) {
	os.Unsetenv("PALDESIGNER_HINT_DISCOVERY_FILE")
	if got := resolveDiscoveryPath(); got != defaultDiscoveryFile {
		t.Fatalf("expected default discovery path, got %q", got)
	}
}
