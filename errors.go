package s3p

import "errors"

var (
	// ErrTruncated is returned when the input ends before a structure it
	// must contain.
	ErrTruncated = errors.New("s3p: truncated input")

	// ErrBadMagic is returned when a container or stream signature does not
	// match the expected constant.
	ErrBadMagic = errors.New("s3p: bad magic")

	// ErrBadStructure is returned when a container is recognizable but its
	// layout cannot be explained (unaligned gaps, non-zero padding, or a
	// sidecar that disagrees with the directory contents).
	ErrBadStructure = errors.New("s3p: bad structure")

	// ErrInvalidEntry is returned when an entry table record points outside
	// the container or aliases another stream's bytes.
	ErrInvalidEntry = errors.New("s3p: invalid entry")

	// ErrSizeOverflow is returned when a payload or container exceeds the
	// format's 32-bit size fields.
	ErrSizeOverflow = errors.New("s3p: size overflow")

	// ErrMissingMetadata is returned when the sidecar file is absent from a
	// directory being packed.
	ErrMissingMetadata = errors.New("s3p: missing sidecar metadata")

	// ErrMissingField is returned when a required sidecar key is absent,
	// typically after a bad hand edit.
	ErrMissingField = errors.New("s3p: missing sidecar field")

	// ErrMalformedValue is returned when a sidecar value cannot be parsed
	// back to its field's fixed width.
	ErrMalformedValue = errors.New("s3p: malformed sidecar value")

	// ErrEntryGap is returned when payload files in a directory are not a
	// contiguous zero-based ordinal sequence.
	ErrEntryGap = errors.New("s3p: non-contiguous payload ordinals")
)
