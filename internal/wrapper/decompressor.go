package wrapper

// Decompressor is a pluggable whole-payload codec, one per compression
// scheme named in a Descriptor. Modeled on the sneller project's
// compr.Decompressor interface: a single-method abstraction over a
// third-party compression library so the WrapperDecoder never imports
// a specific codec package directly, and new schemes register without
// touching the decode driver.
type Decompressor interface {
	Name() string
	// Decompress writes the decompressed form of src into a
	// freshly-allocated buffer and returns it. If expectedSize is
	// nonzero, implementations should fail when the result length
	// differs rather than silently truncate or pad.
	Decompress(src []byte, expectedSize int) ([]byte, error)
}

var registry = map[string]Decompressor{}

// Register installs a Decompressor under its Name(). Called from
// package init() in the zlib and oodle implementation files, the same
// static-registration-at-init idiom the RawCodecRegistry uses.
func Register(d Decompressor) {
	registry[d.Name()] = d
}

func lookup(name string) (Decompressor, bool) {
	d, ok := registry[name]
	return d, ok
}
