// Package rawcodec decodes the opaque RawData byte blobs embedded in
// certain GVAS property subtrees via a dispatch table keyed by the
// blob's fully-qualified structural path.
package rawcodec

import (
	"encoding/hex"
	"fmt"
)

// Value is implemented by every codec's decoded result. Every
// implementation preserves the full original byte sequence as hex so
// Encode can be a pure inverse of Decode even for fields a structured
// codec never interprets (spec §4.7 / §8).
type Value interface {
	OriginalBytesHex() string
}

// raw is embedded by every concrete Value type to carry the
// hex-preserved original bytes.
type raw struct {
	hex string
}

func (r raw) OriginalBytesHex() string { return r.hex }

func newRaw(b []byte) raw {
	return raw{hex: hex.EncodeToString(b)}
}

// decodeFromHex is the shared Encode implementation: every codec
// inverts Decode by returning the bytes it was given in the first
// place, recovered from the preserved hex field.
func decodeFromHex(v Value) ([]byte, error) {
	b, err := hex.DecodeString(v.OriginalBytesHex())
	if err != nil {
		return nil, fmt.Errorf("rawcodec: invalid hex in preserved value: %w", err)
	}
	return b, nil
}

// CodecError is the distinct, observable CodecError kind from spec §7.
type CodecError struct {
	Path string
	Msg  string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("rawcodec: %s: %s", e.Path, e.Msg)
}
