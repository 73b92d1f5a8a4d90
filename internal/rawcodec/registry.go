package rawcodec

// Registry is a process-wide, immutable-after-init dispatch table
// keyed by fully-qualified dotted structural path (leading dot). New
// codecs plug in by registering at construction; no inheritance tree
// or type switch in the caller is required.
type Registry struct {
	byPath map[string]Codec
}

// NewDefaultRegistry returns the registry populated with every path
// the core understands (spec §4.7, supplemented with the full set from
// the original custom-registry path list). Paths present in the table
// but mapped to PassthroughCodec are explicit about their own opacity;
// any path NOT in the table is also passthrough (DecodeRaw falls back).
func NewDefaultRegistry() *Registry {
	r := &Registry{byPath: make(map[string]Codec)}

	basecamp := BaseCampCodec{}
	workerDirector := WorkerDirectorCodec{}
	charContainer := CharacterContainerCodec{}
	character := CharacterCodec{}
	group := GroupCodec{}
	work := WorkCodec{}
	passthrough := PassthroughCodec{}

	r.byPath[".worldSaveData.GroupSaveDataMap"] = group
	r.byPath[".worldSaveData.CharacterSaveParameterMap.Value.RawData"] = character
	r.byPath[".worldSaveData.ItemContainerSaveData.Value.RawData"] = passthrough
	r.byPath[".worldSaveData.ItemContainerSaveData.Value.Slots.Slots.RawData"] = passthrough
	r.byPath[".worldSaveData.CharacterContainerSaveData.Value.Slots.Slots.RawData"] = charContainer
	r.byPath[".worldSaveData.DynamicItemSaveData.DynamicItemSaveData.RawData"] = passthrough
	r.byPath[".worldSaveData.FoliageGridSaveDataMap.Value.ModelMap.Value.RawData"] = passthrough
	r.byPath[".worldSaveData.FoliageGridSaveDataMap.Value.ModelMap.Value.InstanceDataMap.Value.RawData"] = passthrough
	r.byPath[".worldSaveData.BaseCampSaveData.Value.RawData"] = basecamp
	r.byPath[".worldSaveData.BaseCampSaveData.Value.WorkerDirector.RawData"] = workerDirector
	r.byPath[".worldSaveData.BaseCampSaveData.Value.WorkCollection.RawData"] = passthrough
	r.byPath[".worldSaveData.BaseCampSaveData.Value.ModuleMap"] = passthrough
	r.byPath[".worldSaveData.WorkSaveData"] = work
	r.byPath[".worldSaveData.MapObjectSaveData"] = passthrough
	r.byPath[".worldSaveData.GuildExtraSaveDataMap.Value.GuildItemStorage.RawData"] = passthrough
	r.byPath[".worldSaveData.GuildExtraSaveDataMap.Value.Lab.RawData"] = passthrough

	return r
}

// DecodeRaw dispatches bytes at path to its registered codec, or
// PassthroughCodec if the path isn't registered. status is "decoded"
// when a specific (non-passthrough) codec handled the path, else
// "passthrough" -- matching the Rust decode_raw dispatch function's
// two-value return.
func (r *Registry) DecodeRaw(path string, b []byte) (status string, value Value, err error) {
	codec, ok := r.byPath[path]
	if !ok {
		codec = PassthroughCodec{}
	}

	value, err = codec.Decode(b)
	if err != nil {
		return "", nil, err
	}

	if _, isPassthrough := codec.(PassthroughCodec); isPassthrough {
		return "passthrough", value, nil
	}
	return "decoded", value, nil
}

// Encode inverts DecodeRaw for the same path.
func (r *Registry) Encode(path string, v Value) ([]byte, error) {
	codec, ok := r.byPath[path]
	if !ok {
		codec = PassthroughCodec{}
	}
	return codec.Encode(v)
}
