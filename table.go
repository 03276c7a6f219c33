package s3p

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// decodeContainerHeader checks the container magic and returns the stream
// count stored in the fixed header.
func decodeContainerHeader(b []byte) (int, error) {
	if len(b) < containerHeaderSize {
		return 0, fmt.Errorf("%w: container header needs %d bytes, have %d", ErrTruncated, containerHeaderSize, len(b))
	}
	if string(b[:4]) != MagicContainer {
		return 0, fmt.Errorf("%w: want %q, got %q", ErrBadMagic, MagicContainer, b[:4])
	}
	return int(binary.LittleEndian.Uint32(b[4:8])), nil
}

// decodeTable reads count entry records following the container header and
// validates them against the container's total length: every stream must
// start past the table, lie within the container, and not alias another
// stream's bytes.
func decodeTable(b []byte, count int) ([]Entry, error) {
	end := tableEnd(count)
	if uint64(len(b)) < end {
		return nil, fmt.Errorf("%w: entry table needs %d bytes, have %d", ErrTruncated, end, len(b))
	}

	entries := make([]Entry, count)
	for i := range entries {
		rec := b[containerHeaderSize+i*entrySize:]
		entries[i] = Entry{
			Index:  i,
			Offset: binary.LittleEndian.Uint32(rec[0:4]),
			Length: binary.LittleEndian.Uint32(rec[4:8]),
		}
		if uint64(entries[i].Offset) < end {
			return nil, fmt.Errorf("%w: entry %d: offset %d inside header/table region", ErrInvalidEntry, i, entries[i].Offset)
		}
		if entries[i].end() > uint64(len(b)) {
			return nil, fmt.Errorf("%w: entry %d: offset %d + length %d exceeds container of %d bytes", ErrInvalidEntry, i, entries[i].Offset, entries[i].Length, len(b))
		}
	}

	// Streams may be interspersed with padding but must never overlap.
	byOffset := make([]Entry, count)
	copy(byOffset, entries)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].Offset < byOffset[j].Offset })
	for i := 1; i < count; i++ {
		if uint64(byOffset[i].Offset) < byOffset[i-1].end() {
			return nil, fmt.Errorf("%w: entry %d overlaps entry %d", ErrInvalidEntry, byOffset[i].Index, byOffset[i-1].Index)
		}
	}
	return entries, nil
}

// encodeTable serializes entries in ordinal order. Offsets are taken as
// given; layout decisions belong to the packer.
func encodeTable(entries []Entry) []byte {
	b := make([]byte, entrySize*len(entries))
	for i, e := range entries {
		binary.LittleEndian.PutUint32(b[i*entrySize:], e.Offset)
		binary.LittleEndian.PutUint32(b[i*entrySize+4:], e.Length)
	}
	return b
}
