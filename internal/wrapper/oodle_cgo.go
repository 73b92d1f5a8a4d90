//go:build paldesigner_oodle

package wrapper

/*
#cgo LDFLAGS: -looz
#include <stdlib.h>

// Mirrors the ooz project's decompress entry point. Linked only when
// built with -tags paldesigner_oodle against a system libooz.so; the
// default build never touches cgo at all (oodle_stub.go).
extern int Ooz_Decompress(const unsigned char* src, int src_len, unsigned char* dst, int dst_len);
*/
import "C"

import (
	"fmt"
	"unsafe"
)

func init() {
	Register(oodleDecompressor{})
}

// oodleDecompressor binds libooz the same way dsnet-compress's
// benchmark harness binds system zlib: a cgo-gated file behind a build
// tag, kept separate from the tagless default so the common build
// stays pure Go.
type oodleDecompressor struct{}

func (oodleDecompressor) Name() string { return "oodle" }

func (oodleDecompressor) Decompress(src []byte, expectedSize int) ([]byte, error) {
	if expectedSize <= 0 {
		return nil, fmt.Errorf("wrapper: oodle decompress requires a known uncompressed_size")
	}

	dst := make([]byte, expectedSize)
	srcPtr := (*C.uchar)(unsafe.Pointer(&src[0]))
	dstPtr := (*C.uchar)(unsafe.Pointer(&dst[0]))

	n := int(C.Ooz_Decompress(srcPtr, C.int(len(src)), dstPtr, C.int(len(dst))))
	if n != expectedSize {
		return nil, fmt.Errorf("wrapper: oodle decompress produced %d bytes, expected %d", n, expectedSize)
	}
	return dst, nil
}
