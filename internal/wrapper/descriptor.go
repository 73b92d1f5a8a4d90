// Package wrapper parses and decompresses the proprietary save wrapper
// format: a 12-byte (or CNK-prefixed 24-byte) header around a
// zlib- or Oodle-compressed GVAS payload.
package wrapper

import "encoding/binary"

const (
	headerSize  = 12
	cnkPrefix   = "CNK"
	cnkLen      = 12
	magicZlib   = "PlZ"
	magicOodle  = "PlM"
	saveTypeDoubleZlib = 0x32
	saveTypeOodle      = 0x31
)

// Descriptor mirrors spec §3.1: the parsed wrapper header plus the
// payload bounds and the resolved compression scheme name.
type Descriptor struct {
	HasCNKPrefix     bool
	Magic            string
	SaveType         byte
	UncompressedSize uint32
	CompressedSize   uint32
	PayloadOffset    int
	PayloadLen       int
	Compression      string // "zlib" | "oodle" | "unknown"
}

// Detect is a pure function over the wrapper bytes. It never allocates
// beyond the returned Descriptor and never panics, even on truncated
// input -- fewer than 12 header bytes after any CNK prefix yields
// compression="unknown" and zeroed sizes, matching §4.2.
func Detect(buf []byte) Descriptor {
	var d Descriptor

	offset := 0
	if len(buf) >= 3 && string(buf[:3]) == cnkPrefix {
		d.HasCNKPrefix = true
		offset = cnkLen
	}

	if len(buf)-offset < headerSize {
		d.Compression = "unknown"
		return d
	}

	header := buf[offset : offset+headerSize]
	d.UncompressedSize = binary.LittleEndian.Uint32(header[0:4])
	d.CompressedSize = binary.LittleEndian.Uint32(header[4:8])
	d.Magic = string(header[8:11])
	d.SaveType = header[11]

	d.PayloadOffset = offset + headerSize
	d.PayloadLen = resolvePayloadLen(d.CompressedSize, len(buf), d.PayloadOffset)

	switch {
	case d.Magic == magicZlib && d.SaveType == saveTypeDoubleZlib:
		d.Compression = "zlib"
	case d.Magic == magicOodle && d.SaveType == saveTypeOodle:
		d.Compression = "oodle"
	default:
		d.Compression = "unknown"
	}

	return d
}

func resolvePayloadLen(compressedSize uint32, fileLen, payloadOffset int) int {
	remaining := fileLen - payloadOffset
	if remaining < 0 {
		remaining = 0
	}
	if compressedSize == 0 {
		return remaining
	}
	if int(compressedSize) > remaining {
		return remaining
	}
	return int(compressedSize)
}

// Payload returns the wrapper's compressed payload slice per the
// descriptor's bounds.
func (d Descriptor) Payload(buf []byte) []byte {
	end := d.PayloadOffset + d.PayloadLen
	if end > len(buf) {
		end = len(buf)
	}
	if d.PayloadOffset > end {
		return nil
	}
	return buf[d.PayloadOffset:end]
}
