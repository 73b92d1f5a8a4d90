//go:build !paldesigner_oodle

package wrapper

import "fmt"

func init() {
	Register(oodleDecompressor{})
}

// oodleDecompressor is the default, cgo-free build: Oodle/"ooz" is a
// proprietary Epic codec with no pure-Go implementation anywhere in
// the ecosystem, so the default build reports the codec unavailable
// rather than link against it. Build with -tags paldesigner_oodle
// against a system ooz shared object to enable real decoding
// (oodle_cgo.go).
type oodleDecompressor struct{}

func (oodleDecompressor) Name() string { return "oodle" }

func (oodleDecompressor) Decompress(src []byte, expectedSize int) ([]byte, error) {
	return nil, fmt.Errorf("wrapper: oodle decompression not available in this build (rebuild with -tags paldesigner_oodle)")
}
