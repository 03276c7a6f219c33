package s3p

import (
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
)

// InspectResult describes a container's contents without extracting it.
type InspectResult struct {
	// Layout is the observed padding policy.
	Layout Layout

	// Entries holds one record per embedded stream, in table order.
	Entries []InspectEntry
}

// InspectEntry pairs an entry table record with its decoded stream header
// and payload digest.
type InspectEntry struct {
	Index       int
	Offset      uint32
	Length      uint32
	PayloadSize uint32
	Digest      digest.Digest
	Opaque      OpaqueFields
}

// InspectFile reads the container at path and inspects it.
func InspectFile(path string) (*InspectResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	return Inspect(data)
}

// Inspect validates an S3P container and reports its entry table, stream
// headers, payload digests, and layout policy. Nothing is written; the same
// validation as Extract applies.
func Inspect(container []byte) (*InspectResult, error) {
	count, err := decodeContainerHeader(container)
	if err != nil {
		return nil, err
	}
	entries, err := decodeTable(container, count)
	if err != nil {
		return nil, err
	}
	layout, err := detectLayout(container, entries)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{Layout: layout, Entries: make([]InspectEntry, count)}
	for _, e := range entries {
		block := container[e.Offset:e.end()]
		h, err := decodeStreamHeader(block)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Index, err)
		}
		if err := h.validate(e.Index, e.Length); err != nil {
			return nil, err
		}
		payload := block[h.PayloadOffset : uint64(h.PayloadOffset)+uint64(h.PayloadLength)]
		result.Entries[e.Index] = InspectEntry{
			Index:       e.Index,
			Offset:      e.Offset,
			Length:      e.Length,
			PayloadSize: h.PayloadLength,
			Digest:      digest.FromBytes(payload),
			Opaque:      h.Opaque.clone(),
		}
	}
	return result, nil
}
