package gvas

import (
	"fmt"
	"strings"
)

const gvasMagic = "GVAS"

// Parse reads the GVAS header and root property mapping from buf,
// using hints to disambiguate Map/Set element types that are not
// inferable from the byte stream. It returns a *MissingHintError when
// the current structural path needs a hint the caller doesn't have;
// the caller (internal/hints.Resolve) is expected to learn the hint
// and retry the whole parse.
func Parse(buf []byte, hints map[string]string) (*Tree, error) {
	c := newCursor(buf)

	magic, err := c.bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != gvasMagic {
		return nil, &ParseError{Offset: 0, Msg: fmt.Sprintf("bad magic %q", magic)}
	}

	saveGameVersion, err := c.i32()
	if err != nil {
		return nil, err
	}
	packageVersion, err := c.i32()
	if err != nil {
		return nil, err
	}
	_ = saveGameVersion
	_ = packageVersion

	engineVersionMajor, _ := c.u16()
	engineVersionMinor, _ := c.u16()
	engineVersionPatch, _ := c.u16()
	_, _ = c.u32() // changelist
	branch, err := c.fstring()
	if err != nil {
		return nil, err
	}
	gameVersion := fmt.Sprintf("%d.%d.%d-%s", engineVersionMajor, engineVersionMinor, engineVersionPatch, branch)

	customVersionCount, err := c.i32()
	if err != nil {
		return nil, err
	}
	customVersions := make(map[string]int32, customVersionCount)
	for i := int32(0); i < customVersionCount; i++ {
		guidBytes, err := c.bytes(16)
		if err != nil {
			return nil, err
		}
		version, err := c.i32()
		if err != nil {
			return nil, err
		}
		customVersions[formatGuidBytes(guidBytes)] = version
	}

	_, err = c.fstring() // save game class name, unused by the planner
	if err != nil {
		return nil, err
	}

	p := &parser{c: c, hints: hints}
	root, err := p.parsePropertyMap("")
	if err != nil {
		return nil, err
	}

	return &Tree{GameVersion: gameVersion, CustomVersions: customVersions, Root: root}, nil
}

// ParsePropertyStream parses a bare (name,type) property stream -- no
// GVAS magic or custom-version table -- embedded inside a RawData blob.
// basePath seeds the structural path stack so hint lookups for nested
// generic containers resolve against the same dotted-path space as the
// top-level parse. This is also how the planner extractor decodes the
// CharacterSaveParameterMap's inner SaveParameter struct (spec §4.8).
func ParsePropertyStream(buf []byte, hints map[string]string, basePath string) (*PropertyMap, error) {
	p := &parser{c: newCursor(buf), hints: hints}
	return p.parsePropertyMap(basePath)
}

// ParsePropertyStreamWithTail is ParsePropertyStream but also returns
// the bytes left unconsumed after the sentinel "None" -- the character
// blob's trailing group_id field (padding + guid) lives here, outside
// the reflective property stream proper.
func ParsePropertyStreamWithTail(buf []byte, hints map[string]string, basePath string) (*PropertyMap, []byte, error) {
	p := &parser{c: newCursor(buf), hints: hints}
	m, err := p.parsePropertyMap(basePath)
	if err != nil {
		return nil, nil, err
	}
	return m, buf[p.c.off:], nil
}

type parser struct {
	c     *cursor
	hints map[string]string
}

func (p *parser) hintFor(path string) (string, bool) {
	v, ok := p.hints[normalizeHintPath(path)]
	return v, ok
}

func normalizeHintPath(path string) string {
	return strings.TrimPrefix(path, ".")
}

// parsePropertyMap reads (name, type) pairs until the sentinel name
// "None", descending into each property with path extended by name.
func (p *parser) parsePropertyMap(path string) (*PropertyMap, error) {
	m := NewPropertyMap()
	for {
		name, err := p.c.fstring()
		if err != nil {
			return nil, err
		}
		if name == "" || name == "None" {
			return m, nil
		}
		typeName, err := p.c.fstring()
		if err != nil {
			return nil, err
		}
		size, err := p.c.i64()
		if err != nil {
			return nil, err
		}
		childPath := joinPath(path, name)
		val, err := p.parseValueByType(Kind(typeName), childPath, int(size))
		if err != nil {
			return nil, err
		}
		m.Append(name, val)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func (p *parser) parseValueByType(kind Kind, path string, size int) (Property, error) {
	switch kind {
	case KindBool:
		v, err := p.c.u8()
		return BoolProperty(v != 0), err
	case KindInt8:
		v, err := p.c.u8()
		return IntProperty{Width: 8, Value: int64(int8(v))}, err
	case KindInt16:
		v, err := p.c.u16()
		return IntProperty{Width: 16, Value: int64(int16(v))}, err
	case KindInt32:
		v, err := p.c.i32()
		return IntProperty{Width: 32, Value: int64(v)}, err
	case KindInt64:
		v, err := p.c.i64()
		return IntProperty{Width: 64, Value: v}, err
	case KindUInt16:
		v, err := p.c.u16()
		return UIntProperty{Width: 16, Value: uint64(v)}, err
	case KindUInt32:
		v, err := p.c.u32()
		return UIntProperty{Width: 32, Value: uint64(v)}, err
	case KindUInt64:
		v, err := p.c.u64()
		return UIntProperty{Width: 64, Value: v}, err
	case KindFloat:
		v, err := p.c.f32()
		return FloatProperty(v), err
	case KindDouble:
		v, err := p.c.f64()
		return DoubleProperty(v), err
	case KindStr:
		v, err := p.c.fstring()
		return StrProperty(v), err
	case KindName:
		v, err := p.c.fstring()
		return NameProperty(v), err
	case KindEnum:
		enumName, err := p.c.fstring()
		if err != nil {
			return nil, err
		}
		val, err := p.c.fstring()
		return EnumProperty{EnumName: enumName, Value: val}, err
	case KindUInt8:
		enumName, err := p.c.fstring()
		if err != nil {
			return nil, err
		}
		if enumName != "" && enumName != "None" {
			valueName, err := p.c.fstring()
			return ByteProperty{EnumName: enumName, ValueName: valueName}, err
		}
		v, err := p.c.u8()
		return ByteProperty{Value: v}, err
	case KindObject:
		v, err := p.c.fstring()
		return ObjectProperty(v), err
	case KindDelegate:
		obj, err := p.c.fstring()
		if err != nil {
			return nil, err
		}
		fn, err := p.c.fstring()
		return DelegateProperty{Object: obj, Func: fn}, err
	case KindFieldPath:
		count, err := p.c.i32()
		if err != nil {
			return nil, err
		}
		segs := make([]string, count)
		for i := range segs {
			segs[i], err = p.c.fstring()
			if err != nil {
				return nil, err
			}
		}
		resolved, err := p.c.fstring()
		return FieldPathProperty{Path: segs, Resolved: resolved}, err
	case KindStruct:
		return p.parseStruct(path)
	case KindArray:
		return p.parseArray(path)
	case KindSet:
		arr, err := p.parseArray(path)
		if err != nil {
			return nil, err
		}
		return SetValue(arr.(ArrayValue)), nil
	case KindMap:
		return p.parseMap(path)
	default:
		raw, err := p.c.bytes(size)
		return UnknownProperty{TypeName: string(kind), Raw: raw}, err
	}
}

func (p *parser) parseStruct(path string) (Property, error) {
	structType, err := p.c.fstring()
	if err != nil {
		return nil, err
	}
	// struct guid + terminator byte, present in the on-wire struct header
	if _, err := p.c.bytes(16); err != nil {
		return nil, err
	}
	if _, err := p.c.u8(); err != nil {
		return nil, err
	}

	switch WellKnownStruct(structType) {
	case StructGuid:
		raw, err := p.c.bytes(16)
		return StructValue{StructType: StructGuid, Raw: raw}, err
	case StructDateTime, StructTimespan:
		raw, err := p.c.bytes(8)
		return StructValue{StructType: WellKnownStruct(structType), Raw: raw}, err
	case StructVector2F, StructIntPoint:
		raw, err := p.c.bytes(8)
		return StructValue{StructType: WellKnownStruct(structType), Raw: raw}, err
	case StructVector2D:
		raw, err := p.c.bytes(16)
		return StructValue{StructType: StructVector2D, Raw: raw}, err
	case StructVectorF, StructRotatorF:
		raw, err := p.c.bytes(12)
		return StructValue{StructType: WellKnownStruct(structType), Raw: raw}, err
	case StructVectorD, StructRotatorD:
		raw, err := p.c.bytes(24)
		return StructValue{StructType: WellKnownStruct(structType), Raw: raw}, err
	case StructQuatF, StructLinearColor:
		raw, err := p.c.bytes(16)
		return StructValue{StructType: WellKnownStruct(structType), Raw: raw}, err
	case StructQuatD:
		raw, err := p.c.bytes(32)
		return StructValue{StructType: StructQuatD, Raw: raw}, err
	default:
		inner, err := p.parsePropertyMap(path)
		if err != nil {
			return nil, err
		}
		return StructValue{StructType: StructCustom, Custom: inner}, nil
	}
}

func (p *parser) parseArray(path string) (Property, error) {
	elementType, err := p.c.fstring()
	if err != nil {
		return nil, err
	}
	count, err := p.c.i32()
	if err != nil {
		return nil, err
	}

	arrPath := joinPath(path, "ArrayProperty")
	switch Kind(elementType) {
	case KindUInt8:
		raw, err := p.c.bytes(int(count))
		return ArrayValue{Element: ElemBytes, Bytes: raw}, err
	case KindInt32, KindInt64, KindInt16, KindInt8:
		ints := make([]int64, count)
		for i := range ints {
			v, err := p.c.i32()
			if err != nil {
				return nil, err
			}
			ints[i] = int64(v)
		}
		return ArrayValue{Element: ElemInts, Ints: ints}, nil
	case KindStr:
		strs := make([]string, count)
		for i := range strs {
			v, err := p.c.fstring()
			if err != nil {
				return nil, err
			}
			strs[i] = v
		}
		return ArrayValue{Element: ElemStrings, Strings: strs}, nil
	case KindName:
		names := make([]string, count)
		for i := range names {
			v, err := p.c.fstring()
			if err != nil {
				return nil, err
			}
			names[i] = v
		}
		return ArrayValue{Element: ElemNames, Names: names}, nil
	case KindEnum:
		enums := make([]EnumProperty, count)
		for i := range enums {
			v, err := p.c.fstring()
			if err != nil {
				return nil, err
			}
			enums[i] = EnumProperty{Value: v}
		}
		return ArrayValue{Element: ElemEnums, Enums: enums}, nil
	case KindStruct:
		structs := make([]StructValue, count)
		for i := range structs {
			v, err := p.parseStruct(arrPath)
			if err != nil {
				return nil, err
			}
			structs[i] = v.(StructValue)
		}
		return ArrayValue{Element: ElemStructs, Structs: structs}, nil
	default:
		props := make([]*PropertyMap, count)
		for i := range props {
			v, err := p.parsePropertyMap(arrPath)
			if err != nil {
				return nil, err
			}
			props[i] = v
		}
		return ArrayValue{Element: ElemProperties, Props: props}, nil
	}
}

// parseMap handles the ambiguous generic container: when the key/value
// element kind cannot be read off the byte stream (the format omits it
// for maps), it consults the hint map for the current structural path.
func (p *parser) parseMap(path string) (Property, error) {
	count, err := p.c.i32()
	if err != nil {
		return nil, err
	}

	keyPath := path + ".Key"
	valuePath := path + ".Value"
	keyHint, keyOK := p.hintFor(keyPath)
	valHint, valOK := p.hintFor(valuePath)
	if !keyOK {
		return nil, &MissingHintError{HintKind: "unknown", Path: keyPath, Offset: p.c.off}
	}
	if !valOK {
		return nil, &MissingHintError{HintKind: "unknown", Path: valuePath, Offset: p.c.off}
	}

	keys, err := p.readMapSide(keyHint, int(count), keyPath)
	if err != nil {
		return nil, err
	}
	values, err := p.readMapSide(valHint, int(count), valuePath)
	if err != nil {
		return nil, err
	}

	return MapValue{
		KeyElement:   hintToElementKind(keyHint),
		ValueElement: hintToElementKind(valHint),
		Keys:         keys,
		Values:       values,
	}, nil
}

func hintToElementKind(typeName string) ElementKind {
	switch Kind(typeName) {
	case KindUInt8:
		return ElemBytes
	case KindInt32, KindInt64:
		return ElemInts
	case KindStr:
		return ElemStrings
	case KindName:
		return ElemNames
	case KindEnum:
		return ElemEnums
	case KindStruct, "Guid":
		return ElemStructs
	default:
		return ElemProperties
	}
}

func (p *parser) readMapSide(typeName string, count int, path string) (ArrayValue, error) {
	switch typeName {
	case string(KindStruct), string(StructGuid):
		structs := make([]StructValue, count)
		for i := range structs {
			if typeName == string(StructGuid) {
				raw, err := p.c.bytes(16)
				if err != nil {
					return ArrayValue{}, err
				}
				structs[i] = StructValue{StructType: StructGuid, Raw: raw}
				continue
			}
			v, err := p.parseStruct(path)
			if err != nil {
				return ArrayValue{}, err
			}
			structs[i] = v.(StructValue)
		}
		return ArrayValue{Element: ElemStructs, Structs: structs}, nil
	case string(KindStr):
		strs := make([]string, count)
		for i := range strs {
			v, err := p.c.fstring()
			if err != nil {
				return ArrayValue{}, err
			}
			strs[i] = v
		}
		return ArrayValue{Element: ElemStrings, Strings: strs}, nil
	case string(KindInt32), string(KindInt64):
		ints := make([]int64, count)
		for i := range ints {
			v, err := p.c.i32()
			if err != nil {
				return ArrayValue{}, err
			}
			ints[i] = int64(v)
		}
		return ArrayValue{Element: ElemInts, Ints: ints}, nil
	case string(KindUInt8):
		raw, err := p.c.bytes(count)
		return ArrayValue{Element: ElemBytes, Bytes: raw}, err
	default:
		props := make([]*PropertyMap, count)
		for i := range props {
			v, err := p.parsePropertyMap(path)
			if err != nil {
				return ArrayValue{}, err
			}
			props[i] = v
		}
		return ArrayValue{Element: ElemProperties, Props: props}, nil
	}
}

func formatGuidBytes(b []byte) string {
	return fmt.Sprintf("%032x", b)
}
