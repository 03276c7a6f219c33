package s3p

import (
	"encoding/binary"
	"fmt"
)

// Layout captures the container's padding policy: facts needed to reproduce
// the original byte layout that cannot be recovered from payload sizes
// alone. It is recorded in the sidecar at extraction time and applied
// verbatim when packing.
type Layout struct {
	// Alignment is the power-of-two boundary each stream starts on, with
	// zero-filled gaps. 1 means streams are packed back to back, which is
	// what real containers overwhelmingly use.
	Alignment uint32

	// Trailer reports whether the container ends with a length word holding
	// the byte offset at which the word itself starts.
	Trailer bool
}

// defaultLayout is assumed when a hand-edited sidecar drops the layout keys.
func defaultLayout() Layout {
	return Layout{Alignment: 1, Trailer: true}
}

// detectLayout infers the padding policy that explains the observed stream
// offsets. It tries alignments from 1 upward and keeps the smallest one that
// places every stream, then verifies the gaps are zero-filled and accounts
// for every byte after the last stream. A layout no alignment explains is an
// error: the codec records observed rules, it never guesses.
func detectLayout(b []byte, entries []Entry) (Layout, error) {
	for i := 1; i < len(entries); i++ {
		if entries[i].Offset < entries[i-1].Offset {
			return Layout{}, fmt.Errorf("%w: streams out of table order (entry %d before entry %d)", ErrBadStructure, entries[i].Index, entries[i-1].Index)
		}
	}

	layout := Layout{Alignment: 0}
	for a := uint64(1); a <= maxAlignment; a <<= 1 {
		if alignmentFits(entries, a) {
			layout.Alignment = uint32(a)
			break
		}
	}
	if layout.Alignment == 0 {
		return Layout{}, fmt.Errorf("%w: stream offsets not explained by any alignment up to %d", ErrBadStructure, maxAlignment)
	}

	// Padding must be zero-filled or it would be lost on repack.
	pos := tableEnd(len(entries))
	for _, e := range entries {
		for _, pad := range b[pos:e.Offset] {
			if pad != 0 {
				return Layout{}, fmt.Errorf("%w: non-zero padding before entry %d", ErrBadStructure, e.Index)
			}
		}
		pos = e.end()
	}

	switch rest := uint64(len(b)) - pos; rest {
	case 0:
		layout.Trailer = false
	case trailerSize:
		layout.Trailer = true
		if got := binary.LittleEndian.Uint32(b[pos:]); uint64(got) != pos {
			return Layout{}, fmt.Errorf("%w: trailer holds %d, want container length %d", ErrBadStructure, got, pos)
		}
	default:
		return Layout{}, fmt.Errorf("%w: %d unaccounted bytes after last stream", ErrBadStructure, rest)
	}
	return layout, nil
}

// alignmentFits reports whether aligning each stream start up to a multiple
// of a reproduces every observed offset.
func alignmentFits(entries []Entry, a uint64) bool {
	pos := tableEnd(len(entries))
	for _, e := range entries {
		if alignUp(pos, a) != uint64(e.Offset) {
			return false
		}
		pos = e.end()
	}
	return true
}
