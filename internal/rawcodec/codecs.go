package rawcodec

import "math"

// Codec decodes and re-encodes one RawData blob shape. Encode is
// always the inverse of Decode via the preserved hex field; structured
// codecs exist to surface specific fields to the planner extractor,
// not to support a from-scratch re-encode.
type Codec interface {
	Decode(b []byte) (Value, error)
	Encode(v Value) ([]byte, error)
}

// PassthroughValue stores the original bytes verbatim, uninterpreted.
type PassthroughValue struct {
	raw
}

type PassthroughCodec struct{}

func (PassthroughCodec) Decode(b []byte) (Value, error) {
	return PassthroughValue{raw: newRaw(b)}, nil
}

func (PassthroughCodec) Encode(v Value) ([]byte, error) { return decodeFromHex(v) }

// BaseCampValue is the decoded .worldSaveData.BaseCampSaveData.Value.RawData shape.
type BaseCampValue struct {
	raw
	ID                          string
	Name                        string
	State                       uint8
	Transform                   []byte
	AreaRange                   float32
	GroupIDBelongTo             string
	FastTravelLocalTransform    []byte
	OwnerMapObjectInstanceID    string
	Tail                        []byte
}

type BaseCampCodec struct{}

func (BaseCampCodec) Decode(b []byte) (Value, error) {
	c := newBlobCursor(b)
	var v BaseCampValue
	v.raw = newRaw(b)

	var err error
	if v.ID, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "basecamp.id", Msg: err.Error()}
	}
	if v.Name, err = c.fstring(); err != nil {
		return nil, &CodecError{Path: "basecamp.name", Msg: err.Error()}
	}
	if v.State, err = c.u8(); err != nil {
		return nil, &CodecError{Path: "basecamp.state", Msg: err.Error()}
	}
	if v.Transform, err = c.bytes(80); err != nil {
		return nil, &CodecError{Path: "basecamp.transform", Msg: err.Error()}
	}
	areaBytes, err := c.bytes(4)
	if err != nil {
		return nil, &CodecError{Path: "basecamp.area_range", Msg: err.Error()}
	}
	v.AreaRange = float32FromLE(areaBytes)
	if v.GroupIDBelongTo, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "basecamp.group_id_belong_to", Msg: err.Error()}
	}
	if v.FastTravelLocalTransform, err = c.bytes(80); err != nil {
		return nil, &CodecError{Path: "basecamp.fast_travel_local_transform", Msg: err.Error()}
	}
	if v.OwnerMapObjectInstanceID, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "basecamp.owner_map_object_instance_id", Msg: err.Error()}
	}
	v.Tail = c.tail()

	return v, nil
}

func (BaseCampCodec) Encode(v Value) ([]byte, error) { return decodeFromHex(v) }

// WorkerDirectorValue is the .worldSaveData.BaseCampSaveData.Value.WorkerDirector.RawData shape.
type WorkerDirectorValue struct {
	raw
	ID                string
	SpawnTransform    []byte
	CurrentOrderType  uint8
	CurrentBattleType uint8
	ContainerID       string
	Tail              []byte
}

type WorkerDirectorCodec struct{}

func (WorkerDirectorCodec) Decode(b []byte) (Value, error) {
	c := newBlobCursor(b)
	var v WorkerDirectorValue
	v.raw = newRaw(b)

	var err error
	if v.ID, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "workerdirector.id", Msg: err.Error()}
	}
	if v.SpawnTransform, err = c.bytes(80); err != nil {
		return nil, &CodecError{Path: "workerdirector.spawn_transform", Msg: err.Error()}
	}
	if v.CurrentOrderType, err = c.u8(); err != nil {
		return nil, &CodecError{Path: "workerdirector.current_order_type", Msg: err.Error()}
	}
	if v.CurrentBattleType, err = c.u8(); err != nil {
		return nil, &CodecError{Path: "workerdirector.current_battle_type", Msg: err.Error()}
	}
	if v.ContainerID, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "workerdirector.container_id", Msg: err.Error()}
	}
	v.Tail = c.tail()

	return v, nil
}

func (WorkerDirectorCodec) Encode(v Value) ([]byte, error) { return decodeFromHex(v) }

// CharacterContainerSlotValue is one slot of
// .worldSaveData.CharacterContainerSaveData.Value.Slots.Slots.RawData.
type CharacterContainerSlotValue struct {
	raw
	IsEmpty           bool
	PlayerUID         string
	InstanceID        string
	PermissionTribeID uint8
	Tail              []byte
}

type CharacterContainerCodec struct{}

func (CharacterContainerCodec) Decode(b []byte) (Value, error) {
	v := CharacterContainerSlotValue{raw: newRaw(b)}
	if len(b) == 0 {
		v.IsEmpty = true
		return v, nil
	}

	c := newBlobCursor(b)
	var err error
	if v.PlayerUID, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "charactercontainer.player_uid", Msg: err.Error()}
	}
	if v.InstanceID, err = c.guid(); err != nil {
		return nil, &CodecError{Path: "charactercontainer.instance_id", Msg: err.Error()}
	}
	if v.PermissionTribeID, err = c.u8(); err != nil {
		return nil, &CodecError{Path: "charactercontainer.permission_tribe_id", Msg: err.Error()}
	}
	v.Tail = c.tail()
	return v, nil
}

func (CharacterContainerCodec) Encode(v Value) ([]byte, error) { return decodeFromHex(v) }

// CharacterValue, GroupValue, and WorkValue currently store their
// original bytes verbatim; the registry design accommodates upgrading
// any of them to a structured codec without changing callers.
type CharacterValue struct{ raw }
type GroupValue struct{ raw }
type WorkValue struct{ raw }

type CharacterCodec struct{}

func (CharacterCodec) Decode(b []byte) (Value, error)   { return CharacterValue{raw: newRaw(b)}, nil }
func (CharacterCodec) Encode(v Value) ([]byte, error)    { return decodeFromHex(v) }

type GroupCodec struct{}

func (GroupCodec) Decode(b []byte) (Value, error) { return GroupValue{raw: newRaw(b)}, nil }
func (GroupCodec) Encode(v Value) ([]byte, error)  { return decodeFromHex(v) }

type WorkCodec struct{}

func (WorkCodec) Decode(b []byte) (Value, error) { return WorkValue{raw: newRaw(b)}, nil }
func (WorkCodec) Encode(v Value) ([]byte, error)  { return decodeFromHex(v) }

func float32FromLE(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
