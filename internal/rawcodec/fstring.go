package rawcodec

import (
	"encoding/binary"
	"fmt"
)

// blobCursor is a bounds-checked little-endian reader over a RawData
// blob, in the same fixed-offset style the teacher uses for its binary
// headers: every read validates the remaining length before advancing.
type blobCursor struct {
	buf []byte
	off int
}

func newBlobCursor(b []byte) *blobCursor {
	return &blobCursor{buf: b}
}

func (c *blobCursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *blobCursor) bytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, fmt.Errorf("need %d bytes, have %d", n, c.remaining())
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *blobCursor) u8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *blobCursor) guid() (string, error) {
	b, err := c.bytes(16)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%032X", b), nil
}

// fstring reads a length-prefixed UTF string: an int32 byte count N
// followed by N bytes (ASCII plus trailing NUL, matching the wrapper
// and GVAS fstring convention used throughout this blob format).
func (c *blobCursor) fstring() (string, error) {
	lenBytes, err := c.bytes(4)
	if err != nil {
		return "", err
	}
	n := int(int32(binary.LittleEndian.Uint32(lenBytes)))
	if n <= 0 {
		return "", nil
	}
	b, err := c.bytes(n)
	if err != nil {
		return "", err
	}
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b), nil
}

// tail returns every remaining byte, the opaque suffix every codec
// preserves even when it doesn't interpret it.
func (c *blobCursor) tail() []byte {
	b := c.buf[c.off:]
	c.off = len(c.buf)
	return b
}
