package rawcodec

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestPassthroughRoundTrip(t *testing.T) {
	original := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	v, err := PassthroughCodec{}.Decode(original)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back, err := PassthroughCodec{}.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(back, original) {
		t.Fatalf("round trip mismatch: got %x want %x", back, original)
	}
}

func TestCharacterContainerCodecEmptySlot(t *testing.T) {
	v, err := CharacterContainerCodec{}.Decode(nil)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	slot := v.(CharacterContainerSlotValue)
	if !slot.IsEmpty {
		t.Fatalf("expected empty slot for nil input")
	}
}

func TestCharacterContainerCodecZeroedSlotDecodesAsZeroGUIDs(t *testing.T) {
	// A slot of all-zero bytes is not itself IsEmpty -- only a
	// zero-length blob is -- but it does decode to zero GUIDs, which
	// the planner extractor filters out downstream.
	v, err := CharacterContainerCodec{}.Decode(make([]byte, 33))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	slot := v.(CharacterContainerSlotValue)
	if slot.IsEmpty {
		t.Fatalf("expected non-empty decode for an all-zero but present blob")
	}
	if slot.InstanceID != "00000000000000000000000000000000"[:32] {
		t.Fatalf("expected zeroed instance id, got %q", slot.InstanceID)
	}
}

func TestCharacterContainerCodecOccupiedSlot(t *testing.T) {
	playerGUID := bytes.Repeat([]byte{0x11}, 16)
	instanceGUID := bytes.Repeat([]byte{0x22}, 16)
	buf := append(append(append([]byte{}, playerGUID...), instanceGUID...), 0x07, 0xAA, 0xBB)

	v, err := CharacterContainerCodec{}.Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	slot := v.(CharacterContainerSlotValue)
	if slot.IsEmpty {
		t.Fatalf("expected occupied slot")
	}
	if slot.PermissionTribeID != 0x07 {
		t.Fatalf("expected permission tribe id 7, got %d", slot.PermissionTribeID)
	}
	if !bytes.Equal(slot.Tail, []byte{0xAA, 0xBB}) {
		t.Fatalf("expected tail bytes preserved, got %x", slot.Tail)
	}
}

func fstringBytes(s string) []byte {
	content := append([]byte(s), 0)
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(content)))
	return append(lenBytes, content...)
}

func TestBaseCampCodecDecode(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(bytes.Repeat([]byte{0x01}, 16)) // id
	buf.Write(fstringBytes("MyBase"))          // name
	buf.WriteByte(0x02)                        // state
	buf.Write(make([]byte, 80))                // transform
	buf.Write([]byte{0, 0, 128, 63})           // area_range = 1.0f little-endian
	buf.Write(bytes.Repeat([]byte{0x03}, 16))  // group_id_belong_to
	buf.Write(make([]byte, 80))                // fast_travel_local_transform
	buf.Write(bytes.Repeat([]byte{0x04}, 16))  // owner_map_object_instance_id
	buf.Write([]byte{0xFF, 0xFE})              // tail

	v, err := BaseCampCodec{}.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	camp := v.(BaseCampValue)
	if camp.Name != "MyBase" {
		t.Fatalf("expected name MyBase, got %q", camp.Name)
	}
	if camp.State != 0x02 {
		t.Fatalf("expected state 2, got %d", camp.State)
	}
	if camp.AreaRange != 1.0 {
		t.Fatalf("expected area range 1.0, got %v", camp.AreaRange)
	}
	if !bytes.Equal(camp.Tail, []byte{0xFF, 0xFE}) {
		t.Fatalf("expected tail preserved, got %x", camp.Tail)
	}
}

func TestRegistryDecodeRawDispatchesByPath(t *testing.T) {
	r := NewDefaultRegistry()

	status, _, err := r.DecodeRaw(".worldSaveData.BaseCampSaveData.Value.WorkerDirector.RawData", append(append(append(
		bytes.Repeat([]byte{0x01}, 16), make([]byte, 80)...), 0x00, 0x00), bytes.Repeat([]byte{0x02}, 16)...))
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if status != "decoded" {
		t.Fatalf("expected decoded status for registered path, got %q", status)
	}
}

func TestRegistryDecodeRawFallsBackToPassthrough(t *testing.T) {
	r := NewDefaultRegistry()
	status, value, err := r.DecodeRaw(".worldSaveData.SomeUnregisteredPath", []byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if status != "passthrough" {
		t.Fatalf("expected passthrough status for unregistered path, got %q", status)
	}
	if value.OriginalBytesHex() != "0102" {
		t.Fatalf("expected original bytes preserved as hex, got %q", value.OriginalBytesHex())
	}
}

func TestRegistryEncodeInvertsDecode(t *testing.T) {
	r := NewDefaultRegistry()
	original := []byte{0xAB, 0xCD, 0xEF}
	_, value, err := r.DecodeRaw(".worldSaveData.ItemContainerSaveData.Value.RawData", original)
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	back, err := r.Encode(".worldSaveData.ItemContainerSaveData.Value.RawData", value)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(back, original) {
		t.Fatalf("encode did not invert decode: got %x want %x", back, original)
	}
}
