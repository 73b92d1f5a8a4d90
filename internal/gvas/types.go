// Package gvas models the UE-reflective "GVAS" property tree and parses
// it from a decompressed save payload.
package gvas

import "fmt"

// Kind identifies the tagged-union member a Property holds.
type Kind string

const (
	KindBool       Kind = "BoolProperty"
	KindInt8       Kind = "Int8Property"
	KindInt16      Kind = "Int16Property"
	KindInt32      Kind = "IntProperty"
	KindInt64      Kind = "Int64Property"
	KindUInt8      Kind = "ByteProperty"
	KindUInt16     Kind = "UInt16Property"
	KindUInt32     Kind = "UInt32Property"
	KindUInt64     Kind = "UInt64Property"
	KindFloat      Kind = "FloatProperty"
	KindDouble     Kind = "DoubleProperty"
	KindStr        Kind = "StrProperty"
	KindName       Kind = "NameProperty"
	KindEnum       Kind = "EnumProperty"
	KindObject     Kind = "ObjectProperty"
	KindDelegate   Kind = "DelegateProperty"
	KindFieldPath  Kind = "FieldPathProperty"
	KindSet        Kind = "SetProperty"
	KindArray      Kind = "ArrayProperty"
	KindMap        Kind = "MapProperty"
	KindStruct     Kind = "StructProperty"
	KindUnknown    Kind = "UnknownProperty"
)

// ElementKind classifies the homogeneous payload of an Array/Set/Map
// value property.
type ElementKind string

const (
	ElemBools      ElementKind = "Bools"
	ElemBytes      ElementKind = "Bytes"
	ElemInts       ElementKind = "Ints"
	ElemStrings    ElementKind = "Strings"
	ElemNames      ElementKind = "Names"
	ElemEnums      ElementKind = "Enums"
	ElemStructs    ElementKind = "Structs"
	ElemProperties ElementKind = "Properties"
)

// WellKnownStruct enumerates the built-in struct shapes; anything else
// is CustomStruct, carrying a nested PropertyMap.
type WellKnownStruct string

const (
	StructGuid        WellKnownStruct = "Guid"
	StructDateTime     WellKnownStruct = "DateTime"
	StructVector2F     WellKnownStruct = "Vector2F"
	StructVector2D     WellKnownStruct = "Vector2D"
	StructVectorF      WellKnownStruct = "VectorF"
	StructVectorD      WellKnownStruct = "VectorD"
	StructRotatorF     WellKnownStruct = "RotatorF"
	StructRotatorD     WellKnownStruct = "RotatorD"
	StructQuatF        WellKnownStruct = "QuatF"
	StructQuatD        WellKnownStruct = "QuatD"
	StructLinearColor  WellKnownStruct = "LinearColor"
	StructIntPoint     WellKnownStruct = "IntPoint"
	StructTimespan     WellKnownStruct = "Timespan"
	StructCustom       WellKnownStruct = "CustomStruct"
)

// Property is implemented by every concrete tagged-union member.
type Property interface {
	Kind() Kind
}

type BoolProperty bool

func (BoolProperty) Kind() Kind { return KindBool }

type IntProperty struct {
	Width int // 8, 16, 32, 64
	Value int64
}

func (IntProperty) Kind() Kind { return KindInt32 }

type UIntProperty struct {
	Width int
	Value uint64
}

func (UIntProperty) Kind() Kind { return KindUInt32 }

type FloatProperty float32

func (FloatProperty) Kind() Kind { return KindFloat }

type DoubleProperty float64

func (DoubleProperty) Kind() Kind { return KindDouble }

type StrProperty string

func (StrProperty) Kind() Kind { return KindStr }

type NameProperty string

func (NameProperty) Kind() Kind { return KindName }

type EnumProperty struct {
	EnumName string
	Value    string
}

func (EnumProperty) Kind() Kind { return KindEnum }

type ByteProperty struct {
	EnumName  string // empty when this is a raw byte, not an enum-or-byte
	ValueName string // set when EnumName is set
	Value     uint8
}

func (ByteProperty) Kind() Kind { return KindUInt8 }

type ObjectProperty string

func (ObjectProperty) Kind() Kind { return KindObject }

type DelegateProperty struct {
	Object string
	Func   string
}

func (DelegateProperty) Kind() Kind { return KindDelegate }

type FieldPathProperty struct {
	Path    []string
	Resolved string
}

func (FieldPathProperty) Kind() Kind { return KindFieldPath }

// Struct carries either a well-known fixed shape (raw bytes preserved)
// or a custom nested property mapping.
type StructValue struct {
	StructType WellKnownStruct
	Raw        []byte // populated for well-known shapes
	Custom     *PropertyMap
}

func (StructValue) Kind() Kind { return KindStruct }

// ArrayValue and SetValue share a representation: a homogeneous element
// kind plus the decoded elements.
type ArrayValue struct {
	Element ElementKind
	Bools   []bool
	Bytes   []byte
	Ints    []int64
	Strings []string
	Names   []string
	Enums   []EnumProperty
	Structs []StructValue
	Props   []*PropertyMap
}

func (ArrayValue) Kind() Kind { return KindArray }

type SetValue ArrayValue

func (SetValue) Kind() Kind { return KindSet }

// MapValue holds parallel key/value slices (keys and values share index
// position); each side uses an ArrayValue-shaped payload.
type MapValue struct {
	KeyElement   ElementKind
	ValueElement ElementKind
	Keys         ArrayValue
	Values       ArrayValue
}

func (MapValue) Kind() Kind { return KindMap }

type UnknownProperty struct {
	TypeName string
	Raw      []byte
}

func (UnknownProperty) Kind() Kind { return KindUnknown }

// PropertyMap is an ordered mapping from property name to the sequence
// of values recorded under that name (insertion order preserved).
type PropertyMap struct {
	order  []string
	values map[string][]Property
}

// NewPropertyMap returns an empty, ready-to-use PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string][]Property)}
}

// Append records one value under name, preserving first-seen order.
func (m *PropertyMap) Append(name string, v Property) {
	if _, ok := m.values[name]; !ok {
		m.order = append(m.order, name)
	}
	m.values[name] = append(m.values[name], v)
}

// First returns the first value recorded under name, if any.
func (m *PropertyMap) First(name string) (Property, bool) {
	vs, ok := m.values[name]
	if !ok || len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// All returns every value recorded under name, in insertion order.
func (m *PropertyMap) All(name string) []Property {
	return m.values[name]
}

// Names returns the property names in first-seen insertion order.
func (m *PropertyMap) Names() []string {
	return m.order
}

// Tree is the parsed result: the custom-version table plus the root
// property mapping.
type Tree struct {
	GameVersion    string
	CustomVersions map[string]int32
	Root           *PropertyMap
}

// MissingHintError is the structured, recoverable failure the parser
// raises when it cannot infer a Map/Set element type from the byte
// stream alone and no hint covers the current structural path.
type MissingHintError struct {
	HintKind string
	Path     string
	Offset   int
}

func (e *MissingHintError) Error() string {
	return fmt.Sprintf("gvas: missing hint for %s (kind=%s) at offset %d", e.Path, e.HintKind, e.Offset)
}

// ParseError wraps a non-recoverable parser failure with the byte
// offset it occurred at.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gvas: parse error at offset %d: %s", e.Offset, e.Msg)
}
