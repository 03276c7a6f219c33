package s3p

// On-disk layout constants. All multi-byte integers in the format are
// little-endian uint32.
const (
	// MagicContainer identifies an S3P container.
	MagicContainer = "S3P0"

	// MagicStream identifies an embedded S3V stream.
	MagicStream = "S3V0"

	// SidecarFilename is the well-known sidecar name inside an extraction
	// directory.
	SidecarFilename = "metadata.json"

	// PayloadExt is the extension given to extracted payload files. Payloads
	// are ASF media streams, but the codec never inspects them.
	PayloadExt = ".asf"

	// containerHeaderSize covers the container magic and the stream count.
	containerHeaderSize = 8

	// entrySize is the width of one entry table record (offset, length).
	entrySize = 8

	// streamHeaderSize is the fixed S3V preamble preceding every payload.
	streamHeaderSize = 32

	// trailerSize is the width of the optional terminating length word.
	trailerSize = 4

	// maxAlignment bounds the inter-stream alignment the codec will infer
	// from a container. Larger gaps are reported as structural errors rather
	// than guessed at.
	maxAlignment = 4096
)

// Entry is one entry table record: the absolute position and length of an
// embedded S3V stream within the container. Index is the zero-based table
// position and names the extracted payload file ("<Index>.asf").
type Entry struct {
	Index  int
	Offset uint32
	Length uint32
}

// end returns the first byte past the stream, for bounds and overlap checks.
func (e Entry) end() uint64 {
	return uint64(e.Offset) + uint64(e.Length)
}

// tableEnd returns the offset of the first byte past the entry table for a
// container with n streams. The first stream starts here (plus alignment
// padding, if any).
func tableEnd(n int) uint64 {
	return containerHeaderSize + entrySize*uint64(n)
}

// alignUp rounds off up to the next multiple of align. align must be a
// power of two.
func alignUp(off uint64, align uint64) uint64 {
	return (off + align - 1) &^ (align - 1)
}
