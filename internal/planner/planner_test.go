package planner

import (
	"testing"

	"github.com/discjenny/paldesigner/internal/gvas"
	"github.com/discjenny/paldesigner/internal/rawcodec"
)

func TestNormalizeGUIDZeroShorthand(t *testing.T) {
	got := normalizeGUID("0")
	want := "00000000000000000000000000000000"[:32]
	if got != want {
		t.Fatalf("normalizeGUID(\"0\") = %q, want 32 zeros", got)
	}
	if len(got) != 32 {
		t.Fatalf("expected 32-char guid, got %d chars", len(got))
	}
}

func TestNormalizeGUIDStripsHyphensAndUppercases(t *testing.T) {
	got := normalizeGUID("ab12-cd34-ef56-7890")
	want := "AB12CD34EF567890"
	if got != want {
		t.Fatalf("normalizeGUID mismatch: got %q want %q", got, want)
	}
}

func TestIsZeroGUID(t *testing.T) {
	if !isZeroGUID("0") {
		t.Fatalf("expected shorthand zero guid to be recognized as zero")
	}
	if !isZeroGUID("00000000000000000000000000000000") {
		t.Fatalf("expected all-zero guid to be recognized as zero")
	}
	if isZeroGUID("00000000000000000000000000000001") {
		t.Fatalf("expected non-zero guid to not be recognized as zero")
	}
}

func TestFieldAccessorsOnPropertyMap(t *testing.T) {
	m := gvas.NewPropertyMap()
	m.Append("Level", gvas.IntProperty{Width: 32, Value: 42})
	m.Append("NickName", gvas.StrProperty("Boss"))
	m.Append("IsPlayer", gvas.BoolProperty(true))
	m.Append("Gender", gvas.EnumProperty{EnumName: "EPalGenderType", Value: "Male"})

	if v, ok := fieldInt(m, "Level"); !ok || v != 42 {
		t.Fatalf("fieldInt mismatch: got %v ok=%v", v, ok)
	}
	if v, ok := fieldString(m, "NickName"); !ok || v != "Boss" {
		t.Fatalf("fieldString mismatch: got %q ok=%v", v, ok)
	}
	if v, ok := fieldBool(m, "IsPlayer"); !ok || !v {
		t.Fatalf("fieldBool mismatch: got %v ok=%v", v, ok)
	}
	if v, ok := fieldEnumString(m, "Gender"); !ok || v != "Male" {
		t.Fatalf("fieldEnumString mismatch: got %q ok=%v", v, ok)
	}
	if _, ok := fieldInt(m, "Missing"); ok {
		t.Fatalf("expected fieldInt to report absence for missing key")
	}
}

func TestFieldStringArrayAcrossElementKinds(t *testing.T) {
	m := gvas.NewPropertyMap()
	m.Append("Skills", gvas.ArrayValue{Element: gvas.ElemStrings, Strings: []string{"A", "", "B"}})
	if got := fieldStringArray(m, "Skills"); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected empty strings dropped, got %v", got)
	}

	m2 := gvas.NewPropertyMap()
	m2.Append("Waza", gvas.ArrayValue{Element: gvas.ElemEnums, Enums: []gvas.EnumProperty{{Value: "Fire"}, {Value: ""}}})
	if got := fieldStringArray(m2, "Waza"); len(got) != 1 || got[0] != "Fire" {
		t.Fatalf("expected one enum value, got %v", got)
	}
}

func TestExtractRequiresWorldSaveData(t *testing.T) {
	tree := &gvas.Tree{Root: gvas.NewPropertyMap()}
	_, _, err := Extract(tree, rawcodec.NewDefaultRegistry(), map[string]string{}, "Level.sav", nil)
	if err == nil {
		t.Fatalf("expected error when worldSaveData is absent")
	}
}

func TestExtractEmptyWorldSaveDataYieldsEmptyResult(t *testing.T) {
	worldSave := gvas.NewPropertyMap()
	root := gvas.NewPropertyMap()
	root.Append("worldSaveData", gvas.StructValue{StructType: gvas.StructCustom, Custom: worldSave})
	tree := &gvas.Tree{Root: root}

	result, stats, err := Extract(tree, rawcodec.NewDefaultRegistry(), map[string]string{}, "Level.sav", nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Players) != 0 || len(result.Pals) != 0 || len(result.Assignments) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if stats.BaseCampCount != 0 || stats.CharacterMapTotal != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}
