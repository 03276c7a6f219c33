package s3p

import (
	"encoding/binary"
	"fmt"
)

// OpaqueField describes one fixed byte range of the stream header whose
// semantics are not modeled. Key is the stable identifier used in the
// sidecar; Offset and Width locate the field within the 32-byte preamble.
type OpaqueField struct {
	Key    string
	Offset int
	Width  int
}

// opaqueFieldTable is the closed set of unmodeled stream header fields.
// Together with the known fields (magic at 0, payload offset at 4, payload
// length at 8) these ranges tile the preamble exactly; keeping the table
// authoritative for both decode and encode is what makes preservation
// correct without understanding any field's meaning.
var opaqueFieldTable = []OpaqueField{
	{Key: "unk1", Offset: 12, Width: 4},
	{Key: "unk2", Offset: 16, Width: 4},
	{Key: "unk3", Offset: 20, Width: 4},
	{Key: "unk4", Offset: 24, Width: 4},
	{Key: "unk5", Offset: 28, Width: 4},
}

// OpaqueFields holds the raw values of the unmodeled stream header fields,
// keyed by the identifiers in opaqueFieldTable.
type OpaqueFields map[string]uint32

// clone returns an independent copy.
func (o OpaqueFields) clone() OpaqueFields {
	c := make(OpaqueFields, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// StreamHeader is the decoded 32-byte S3V preamble. PayloadOffset and
// PayloadLength are the known fields; everything else is carried in Opaque.
type StreamHeader struct {
	PayloadOffset uint32
	PayloadLength uint32
	Opaque        OpaqueFields
}

// decodeStreamHeader parses the fixed-size S3V preamble at the start of b.
func decodeStreamHeader(b []byte) (StreamHeader, error) {
	if len(b) < streamHeaderSize {
		return StreamHeader{}, fmt.Errorf("%w: stream header needs %d bytes, have %d", ErrTruncated, streamHeaderSize, len(b))
	}
	if string(b[:4]) != MagicStream {
		return StreamHeader{}, fmt.Errorf("%w: want %q, got %q", ErrBadMagic, MagicStream, b[:4])
	}

	h := StreamHeader{
		PayloadOffset: binary.LittleEndian.Uint32(b[4:8]),
		PayloadLength: binary.LittleEndian.Uint32(b[8:12]),
		Opaque:        make(OpaqueFields, len(opaqueFieldTable)),
	}
	for _, f := range opaqueFieldTable {
		h.Opaque[f.Key] = binary.LittleEndian.Uint32(b[f.Offset : f.Offset+f.Width])
	}
	return h, nil
}

// encode serializes the preamble back into its fixed layout. Every field is
// written at the same offset and width decode read it from.
func (h StreamHeader) encode() []byte {
	b := make([]byte, streamHeaderSize)
	copy(b, MagicStream)
	binary.LittleEndian.PutUint32(b[4:8], h.PayloadOffset)
	binary.LittleEndian.PutUint32(b[8:12], h.PayloadLength)
	for _, f := range opaqueFieldTable {
		binary.LittleEndian.PutUint32(b[f.Offset:f.Offset+f.Width], h.Opaque[f.Key])
	}
	return b
}

// validate checks the constraints the format puts on the known fields: the
// payload follows the preamble directly and fills the rest of the stream
// exactly. Slack after the payload would be silently dropped on repack, so
// it is rejected instead.
func (h StreamHeader) validate(index int, streamLen uint32) error {
	if h.PayloadOffset != streamHeaderSize {
		return fmt.Errorf("%w: entry %d: payload offset %d, format requires %d", ErrBadStructure, index, h.PayloadOffset, streamHeaderSize)
	}
	end := uint64(h.PayloadOffset) + uint64(h.PayloadLength)
	if end > uint64(streamLen) {
		return fmt.Errorf("%w: entry %d: payload of %d bytes exceeds stream of %d bytes", ErrInvalidEntry, index, h.PayloadLength, streamLen)
	}
	if end < uint64(streamLen) {
		return fmt.Errorf("%w: entry %d: %d trailing bytes after payload", ErrBadStructure, index, uint64(streamLen)-end)
	}
	return nil
}
