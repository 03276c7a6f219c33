// Package testutil builds synthetic S3P containers byte by byte, without
// going through the codec under test.
package testutil

import "encoding/binary"

// BuildStream assembles one S3V stream: the 32-byte preamble followed by
// the payload.
func BuildStream(payload []byte, unks [5]uint32) []byte {
	b := make([]byte, 32+len(payload))
	copy(b, "S3V0")
	binary.LittleEndian.PutUint32(b[4:], 32)
	binary.LittleEndian.PutUint32(b[8:], uint32(len(payload)))
	for i, u := range unks {
		binary.LittleEndian.PutUint32(b[12+4*i:], u)
	}
	copy(b[32:], payload)
	return b
}

// BuildContainer assembles an S3P container from pre-built streams, padding
// each stream start up to a multiple of align (1 = back to back) and
// appending the length trailer when asked.
func BuildContainer(streams [][]byte, align uint32, trailer bool) []byte {
	n := len(streams)
	offsets := make([]uint32, n)
	pos := uint32(8 + 8*n)
	for i, s := range streams {
		pos = (pos + align - 1) &^ (align - 1)
		offsets[i] = pos
		pos += uint32(len(s))
	}

	total := pos
	if trailer {
		total += 4
	}
	b := make([]byte, total)
	copy(b, "S3P0")
	binary.LittleEndian.PutUint32(b[4:], uint32(n))
	for i, s := range streams {
		binary.LittleEndian.PutUint32(b[8+8*i:], offsets[i])
		binary.LittleEndian.PutUint32(b[8+8*i+4:], uint32(len(s)))
	}
	for i, s := range streams {
		copy(b[offsets[i]:], s)
	}
	if trailer {
		binary.LittleEndian.PutUint32(b[pos:], pos)
	}
	return b
}

// BuildSimpleContainer wraps each payload in a stream with the given opaque
// values and packs them back to back with a trailer, the layout real
// containers use.
func BuildSimpleContainer(payloads [][]byte, unks [][5]uint32) []byte {
	streams := make([][]byte, len(payloads))
	for i, p := range payloads {
		streams[i] = BuildStream(p, unks[i])
	}
	return BuildContainer(streams, 1, true)
}
