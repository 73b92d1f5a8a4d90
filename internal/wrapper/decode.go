package wrapper

import "fmt"

// DecodeError is the distinct, observable WrapperDecodeError kind from
// spec §7. NotAttempted distinguishes an unknown/unsupported
// compression scheme (non-fatal for the import) from a true decode
// failure.
type DecodeError struct {
	NotAttempted bool
	Msg          string
}

func (e *DecodeError) Error() string {
	if e.NotAttempted {
		return fmt.Sprintf("wrapper: decode not attempted: %s", e.Msg)
	}
	return fmt.Sprintf("wrapper: decode failed: %s", e.Msg)
}

// Decode resolves the descriptor's compression scheme against the
// registered Decompressors and returns the decompressed GVAS byte
// stream. The zlib path applies a second zlib pass whenever
// SaveType==0x32, per §4.3; this call is CPU-bound and is meant to be
// offloaded to a blocking worker by internal/normalize so the driver
// can enforce its 20s/300s deadlines (§5) around it.
func Decode(buf []byte, d Descriptor) ([]byte, error) {
	if d.Compression == "unknown" || d.Compression == "" {
		return nil, &DecodeError{NotAttempted: true, Msg: fmt.Sprintf("unsupported magic/type %q/0x%02x", d.Magic, d.SaveType)}
	}

	payload := d.Payload(buf)
	dec, ok := lookup(d.Compression)
	if !ok {
		return nil, &DecodeError{NotAttempted: true, Msg: fmt.Sprintf("no decompressor registered for %q", d.Compression)}
	}

	expected := int(d.UncompressedSize)

	switch d.Compression {
	case "zlib":
		first, err := dec.Decompress(payload, 0)
		if err != nil {
			return nil, &DecodeError{Msg: err.Error()}
		}
		result := first
		if d.SaveType == saveTypeDoubleZlib {
			second, err := dec.Decompress(first, 0)
			if err != nil {
				return nil, &DecodeError{Msg: fmt.Sprintf("second pass: %v", err)}
			}
			result = second
		}
		if expected != 0 && len(result) != expected {
			return nil, &DecodeError{Msg: fmt.Sprintf("size mismatch: got %d bytes, expected %d", len(result), expected)}
		}
		return result, nil

	case "oodle":
		if expected == 0 {
			return nil, &DecodeError{Msg: "oodle decode requires a known uncompressed_size"}
		}
		out, err := dec.Decompress(payload, expected)
		if err != nil {
			return nil, &DecodeError{Msg: err.Error()}
		}
		return out, nil

	default:
		return nil, &DecodeError{NotAttempted: true, Msg: fmt.Sprintf("unhandled compression %q", d.Compression)}
	}
}
