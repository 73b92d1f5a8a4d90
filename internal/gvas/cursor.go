package gvas

import (
	"encoding/binary"
	"fmt"
	"math"
)

// cursor is a bounds-checked little-endian byte-stream reader, in the
// same style as the fixed-offset header readers used for wrapper and
// RawData blob parsing: every read validates the remaining length
// before advancing, and reports the offset a failure occurred at.
type cursor struct {
	buf []byte
	off int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) need(n int) error {
	if c.remaining() < n {
		return &ParseError{Offset: c.off, Msg: fmt.Sprintf("need %d bytes, have %d", n, c.remaining())}
	}
	return nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) i32() (int32, error) {
	v, err := c.u32()
	return int32(v), err
}

func (c *cursor) i64() (int64, error) {
	v, err := c.u64()
	return int64(v), err
}

func (c *cursor) f32() (float32, error) {
	v, err := c.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *cursor) f64() (float64, error) {
	v, err := c.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// fstring reads a UE-style length-prefixed string: an int32 length N;
// if N > 0 the following N-1 bytes are ASCII plus a trailing NUL; if
// N < 0 the string is UTF-16LE, -N*2 bytes with a trailing NUL pair.
func (c *cursor) fstring() (string, error) {
	n, err := c.i32()
	if err != nil {
		return "", err
	}
	switch {
	case n == 0:
		return "", nil
	case n > 0:
		b, err := c.bytes(int(n))
		if err != nil {
			return "", err
		}
		if len(b) > 0 && b[len(b)-1] == 0 {
			b = b[:len(b)-1]
		}
		return string(b), nil
	default:
		count := int(-n)
		b, err := c.bytes(count * 2)
		if err != nil {
			return "", err
		}
		return decodeUTF16LE(b), nil
	}
}

func decodeUTF16LE(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			continue
		}
		units = append(units, u)
	}
	runes := make([]rune, 0, len(units))
	for _, u := range units {
		runes = append(runes, rune(u))
	}
	return string(runes)
}
