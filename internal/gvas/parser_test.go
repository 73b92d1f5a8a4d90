package gvas

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func fstringField(s string) []byte {
	content := append([]byte(s), 0)
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(content)))
	return append(lenBytes, content...)
}

func le32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func le64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func writeIntProperty(buf *bytes.Buffer, name string, value int32) {
	buf.Write(fstringField(name))
	buf.Write(fstringField("IntProperty"))
	buf.Write(le64(4))
	buf.Write(le32(value))
}

func writeNoneTerminator(buf *bytes.Buffer) {
	buf.Write(fstringField("None"))
}

func buildMinimalGVAS(t *testing.T, propsFn func(buf *bytes.Buffer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("GVAS")
	buf.Write(le32(1)) // saveGameVersion
	buf.Write(le32(1)) // packageVersion
	buf.Write([]byte{5, 0, 0, 0, 1, 0})
	buf.Write(le32(0)) // changelist
	buf.Write(fstringField("release"))
	buf.Write(le32(0)) // customVersionCount
	buf.Write(fstringField("SaveGameClass"))
	propsFn(&buf)
	writeNoneTerminator(&buf)
	return buf.Bytes()
}

func TestParseRejectsBadMagic(t *testing.T) {
	if _, err := Parse([]byte("XXXX"), nil); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestParseMinimalHeaderAndProperty(t *testing.T) {
	raw := buildMinimalGVAS(t, func(buf *bytes.Buffer) {
		writeIntProperty(buf, "Level", 42)
	})

	tree, err := Parse(raw, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tree.GameVersion != "5.0.1-release" {
		t.Fatalf("unexpected game version: %q", tree.GameVersion)
	}
	v, ok := tree.Root.First("Level")
	if !ok {
		t.Fatalf("expected Level property present")
	}
	ip, ok := v.(IntProperty)
	if !ok || ip.Value != 42 {
		t.Fatalf("expected IntProperty 42, got %+v", v)
	}
}

func TestParsePropertyStreamNestedStruct(t *testing.T) {
	var inner bytes.Buffer
	writeIntProperty(&inner, "Exp", 7)
	writeNoneTerminator(&inner)

	var buf bytes.Buffer
	buf.Write(fstringField("SaveParameter"))
	buf.Write(fstringField("StructProperty"))
	buf.Write(le64(int64(inner.Len() + 17)))
	buf.Write(fstringField("MyStruct"))
	buf.Write(make([]byte, 16)) // struct guid
	buf.WriteByte(0)            // terminator byte
	buf.Write(inner.Bytes())
	writeNoneTerminator(&buf)

	m, err := ParsePropertyStream(buf.Bytes(), nil, "")
	if err != nil {
		t.Fatalf("parse property stream: %v", err)
	}
	v, ok := m.First("SaveParameter")
	if !ok {
		t.Fatalf("expected SaveParameter present")
	}
	sv, ok := v.(StructValue)
	if !ok || sv.Custom == nil {
		t.Fatalf("expected custom struct value, got %+v", v)
	}
	exp, ok := sv.Custom.First("Exp")
	if !ok {
		t.Fatalf("expected nested Exp field")
	}
	if ip, ok := exp.(IntProperty); !ok || ip.Value != 7 {
		t.Fatalf("expected Exp=7, got %+v", exp)
	}
}

func TestParsePropertyStreamWithTailPreservesTrailingBytes(t *testing.T) {
	var buf bytes.Buffer
	writeIntProperty(&buf, "Level", 1)
	writeNoneTerminator(&buf)
	buf.Write([]byte{0xAA, 0xBB, 0xCC})

	_, tail, err := ParsePropertyStreamWithTail(buf.Bytes(), nil, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(tail, []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("expected trailing bytes preserved, got %x", tail)
	}
}

func TestParseMapWithoutHintReturnsMissingHintError(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(fstringField("SomeMap"))
	buf.Write(fstringField("MapProperty"))
	buf.Write(le64(4))
	buf.Write(le32(0)) // map entry count
	writeNoneTerminator(&buf)

	_, err := ParsePropertyStream(buf.Bytes(), map[string]string{}, "")
	if err == nil {
		t.Fatalf("expected MissingHintError when no hints are provided")
	}
	var mhe *MissingHintError
	if !asMissingHintError(err, &mhe) {
		t.Fatalf("expected *MissingHintError, got %T: %v", err, err)
	}
	// The hint-lookup key must be built straight off the dotted path,
	// with no "MapProperty"/"StructProperty" segment spliced in -- that
	// sentinel never appears in the seed table's own keys.
	if mhe.Path != "SomeMap.Key" {
		t.Fatalf("expected canonical key path %q, got %q", "SomeMap.Key", mhe.Path)
	}
}

// buildGroupSaveDataMapGVAS constructs a GVAS byte stream whose
// worldSaveData struct holds a single GroupSaveDataMap entry: a Guid
// key and a custom-struct value carrying one nested IntProperty.
func buildGroupSaveDataMapGVAS(t *testing.T, groupKey [16]byte, innerFieldName string, innerValue int32) []byte {
	t.Helper()

	var inner bytes.Buffer
	writeIntProperty(&inner, innerFieldName, innerValue)
	writeNoneTerminator(&inner)

	var mapValueEntry bytes.Buffer
	mapValueEntry.Write(fstringField("GroupSaveDataRecord")) // custom struct type name
	mapValueEntry.Write(make([]byte, 16))                    // struct guid
	mapValueEntry.WriteByte(0)                               // terminator byte
	mapValueEntry.Write(inner.Bytes())

	var mapProp bytes.Buffer
	mapProp.Write(le32(1)) // one entry
	mapProp.Write(groupKey[:])
	mapProp.Write(mapValueEntry.Bytes())

	var worldSave bytes.Buffer
	worldSave.Write(fstringField("GroupSaveDataMap"))
	worldSave.Write(fstringField("MapProperty"))
	worldSave.Write(le64(int64(mapProp.Len())))
	worldSave.Write(mapProp.Bytes())
	writeNoneTerminator(&worldSave)

	return buildMinimalGVAS(t, func(buf *bytes.Buffer) {
		buf.Write(fstringField("worldSaveData"))
		buf.Write(fstringField("StructProperty"))
		buf.Write(le64(int64(worldSave.Len() + 17)))
		buf.Write(fstringField("PalWorldSaveGameData"))
		buf.Write(make([]byte, 16)) // struct guid
		buf.WriteByte(0)            // terminator byte
		buf.Write(worldSave.Bytes())
	})
}

// TestParseMapMissingValueHintReportsCanonicalPath round-trips a real
// MapProperty/StructProperty byte stream through a GroupSaveDataMap
// shape matching the seed table's own entries. It is the regression
// test for the sentinel-segment bug: before the fix, the reported
// MissingHintError.Path carried a spliced-in "MapProperty" segment and
// never matched the seed table's clean dotted-path convention, so a
// hint supplied under that convention was silently ignored.
func TestParseMapMissingValueHintReportsCanonicalPath(t *testing.T) {
	var groupKey [16]byte
	copy(groupKey[:], bytes.Repeat([]byte{0x11}, 16))
	raw := buildGroupSaveDataMapGVAS(t, groupKey, "Foo", 99)

	// Only the Key hint is known, mirroring the seed table's
	// "worldSaveData.GroupSaveDataMap.Key": "Guid" entry; the Value
	// hint is withheld to force exactly one miss.
	hints := map[string]string{
		"worldSaveData.GroupSaveDataMap.Key": "Guid",
	}

	_, err := Parse(raw, hints)
	if err == nil {
		t.Fatalf("expected a MissingHintError for the withheld Value hint")
	}
	var mhe *MissingHintError
	if !asMissingHintError(err, &mhe) {
		t.Fatalf("expected *MissingHintError, got %T: %v", err, err)
	}
	if mhe.Path != "worldSaveData.GroupSaveDataMap.Value" {
		t.Fatalf("expected canonical path %q, got %q", "worldSaveData.GroupSaveDataMap.Value", mhe.Path)
	}

	// Supplying exactly the seed table's documented value for that one
	// missing key resolves the parse on the very next attempt -- one
	// learn-then-retry cycle.
	hints["worldSaveData.GroupSaveDataMap.Value"] = "StructProperty"
	tree, err := Parse(raw, hints)
	if err != nil {
		t.Fatalf("expected parse to succeed once the Value hint is supplied: %v", err)
	}

	worldSave, ok := tree.Root.First("worldSaveData")
	if !ok {
		t.Fatalf("expected worldSaveData present")
	}
	sv, ok := worldSave.(StructValue)
	if !ok || sv.Custom == nil {
		t.Fatalf("expected custom struct value, got %+v", worldSave)
	}
	groupMap, ok := sv.Custom.First("GroupSaveDataMap")
	if !ok {
		t.Fatalf("expected GroupSaveDataMap present")
	}
	mv, ok := groupMap.(MapValue)
	if !ok {
		t.Fatalf("expected MapValue, got %T", groupMap)
	}
	if len(mv.Keys.Structs) != 1 || !bytes.Equal(mv.Keys.Structs[0].Raw, groupKey[:]) {
		t.Fatalf("expected one Guid key matching %x, got %+v", groupKey, mv.Keys)
	}
	if len(mv.Values.Structs) != 1 {
		t.Fatalf("expected one struct value, got %+v", mv.Values)
	}
	foo, ok := mv.Values.Structs[0].Custom.First("Foo")
	if !ok {
		t.Fatalf("expected nested Foo field")
	}
	if ip, ok := foo.(IntProperty); !ok || ip.Value != 99 {
		t.Fatalf("expected Foo=99, got %+v", foo)
	}
}

func asMissingHintError(err error, target **MissingHintError) bool {
	mhe, ok := err.(*MissingHintError)
	if !ok {
		return false
	}
	*target = mhe
	return true
}
