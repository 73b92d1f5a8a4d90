package planner

import "github.com/discjenny/paldesigner/internal/gvas"

func structCustom(p gvas.Property) (*gvas.PropertyMap, bool) {
	sv, ok := p.(gvas.StructValue)
	if !ok || sv.Custom == nil {
		return nil, false
	}
	return sv.Custom, true
}

func mapValue(p gvas.Property) (gvas.MapValue, bool) {
	mv, ok := p.(gvas.MapValue)
	return mv, ok
}

func arrayValue(p gvas.Property) (gvas.ArrayValue, bool) {
	av, ok := p.(gvas.ArrayValue)
	return av, ok
}

func bytesOf(p gvas.Property) ([]byte, bool) {
	av, ok := arrayValue(p)
	if !ok || av.Element != gvas.ElemBytes {
		return nil, false
	}
	return av.Bytes, true
}

func guidOf(p gvas.Property) (string, bool) {
	sv, ok := p.(gvas.StructValue)
	if !ok || sv.StructType != gvas.StructGuid {
		return "", false
	}
	return normalizeGUID(formatGuidRaw(sv.Raw)), true
}

func formatGuidRaw(b []byte) string {
	const hextable = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}

func fieldMap(m *gvas.PropertyMap, name string) (*gvas.PropertyMap, bool) {
	p, ok := m.First(name)
	if !ok {
		return nil, false
	}
	return structCustom(p)
}

func fieldMapValue(m *gvas.PropertyMap, name string) (gvas.MapValue, bool) {
	p, ok := m.First(name)
	if !ok {
		return gvas.MapValue{}, false
	}
	return mapValue(p)
}

func fieldArray(m *gvas.PropertyMap, name string) (gvas.ArrayValue, bool) {
	p, ok := m.First(name)
	if !ok {
		return gvas.ArrayValue{}, false
	}
	return arrayValue(p)
}

func fieldBytes(m *gvas.PropertyMap, name string) ([]byte, bool) {
	p, ok := m.First(name)
	if !ok {
		return nil, false
	}
	return bytesOf(p)
}

func fieldGuid(m *gvas.PropertyMap, name string) (string, bool) {
	p, ok := m.First(name)
	if !ok {
		return "", false
	}
	return guidOf(p)
}

func fieldInt(m *gvas.PropertyMap, name string) (int64, bool) {
	p, ok := m.First(name)
	if !ok {
		return 0, false
	}
	switch v := p.(type) {
	case gvas.IntProperty:
		return v.Value, true
	case gvas.UIntProperty:
		return int64(v.Value), true
	}
	return 0, false
}

// fieldEnumString extracts the symbolic value from an EnumProperty (UE
// represents things like Gender as an enum, not a raw string).
func fieldEnumString(m *gvas.PropertyMap, name string) (string, bool) {
	p, ok := m.First(name)
	if !ok {
		return "", false
	}
	switch v := p.(type) {
	case gvas.EnumProperty:
		return v.Value, true
	case gvas.StrProperty:
		return string(v), true
	case gvas.NameProperty:
		return string(v), true
	}
	return "", false
}

func fieldBool(m *gvas.PropertyMap, name string) (bool, bool) {
	p, ok := m.First(name)
	if !ok {
		return false, false
	}
	b, ok := p.(gvas.BoolProperty)
	return bool(b), ok
}

func fieldString(m *gvas.PropertyMap, name string) (string, bool) {
	p, ok := m.First(name)
	if !ok {
		return "", false
	}
	switch v := p.(type) {
	case gvas.StrProperty:
		return string(v), true
	case gvas.NameProperty:
		return string(v), true
	}
	return "", false
}

// fieldStringArray accepts arrays of Names, Strings, Enums, or generic
// Properties (pulling the underlying string from each), returning a
// flat slice with nulls dropped -- spec §4.8's string-array normalization.
func fieldStringArray(m *gvas.PropertyMap, name string) []string {
	p, ok := m.First(name)
	if !ok {
		return nil
	}
	av, ok := arrayValue(p)
	if !ok {
		return nil
	}
	var out []string
	switch av.Element {
	case gvas.ElemStrings:
		for _, s := range av.Strings {
			if s != "" {
				out = append(out, s)
			}
		}
	case gvas.ElemNames:
		for _, s := range av.Names {
			if s != "" {
				out = append(out, s)
			}
		}
	case gvas.ElemEnums:
		for _, e := range av.Enums {
			if e.Value != "" {
				out = append(out, e.Value)
			}
		}
	case gvas.ElemProperties:
		for _, props := range av.Props {
			if props == nil {
				continue
			}
			for _, n := range props.Names() {
				if s, ok := fieldString(props, n); ok && s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
