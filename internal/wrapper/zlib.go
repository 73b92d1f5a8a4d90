package wrapper

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

func init() {
	Register(zlibDecompressor{})
}

// zlibDecompressor wraps klauspost/compress/zlib, the same module the
// teacher's demo player reaches for (via its zstd subpackage) rather
// than the standard library's compress/zlib.
type zlibDecompressor struct{}

func (zlibDecompressor) Name() string { return "zlib" }

func (zlibDecompressor) Decompress(src []byte, expectedSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("zlib: open stream: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib: decompress: %w", err)
	}
	if expectedSize > 0 && len(out) != expectedSize {
		return nil, fmt.Errorf("zlib: size mismatch: got %d bytes, expected %d", len(out), expectedSize)
	}
	return out, nil
}
