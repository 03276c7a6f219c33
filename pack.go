package s3p

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PackFile packs the extraction directory dir and writes the container to
// outPath atomically: a temp file is renamed into place only on full
// success, so no partial container ever appears at the final path.
func PackFile(ctx context.Context, dir, outPath string, opts ...PackOption) error {
	data, err := Pack(ctx, dir, opts...)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(outPath, data); err != nil {
		return fmt.Errorf("write container: %w", err)
	}
	return nil
}

// Pack rebuilds an S3P container from a directory produced by Extract.
//
// Payload files may have been replaced since extraction (transcoded, for
// example); every size is taken from the file actually on disk and every
// offset is recomputed from scratch under the sidecar's layout policy.
// Known header fields never come from the sidecar — only the opaque
// preamble values do.
func Pack(ctx context.Context, dir string, opts ...PackOption) ([]byte, error) {
	cfg := packConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	sc, err := readSidecar(filepath.Join(dir, SidecarFilename))
	if err != nil {
		return nil, err
	}
	names, err := scanPayloadDir(dir)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]StreamMeta, len(sc.Streams))
	for _, s := range sc.Streams {
		byName[s.Filename] = s
	}
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}
	for _, s := range sc.Streams {
		if !present[s.Filename] {
			return nil, fmt.Errorf("%w: sidecar lists %s but no such payload file", ErrBadStructure, s.Filename)
		}
	}

	cfg.log().Info("packing container",
		"streams", len(names), "alignment", sc.Layout.Alignment, "trailer", sc.Layout.Trailer)

	streams := make([][]byte, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: no sidecar record for %s", ErrMissingField, name)
		}
		payload, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read payload %s: %w", name, err)
		}
		if uint64(len(payload)) > math.MaxUint32-streamHeaderSize {
			return nil, fmt.Errorf("%w: payload %s is %d bytes", ErrSizeOverflow, name, len(payload))
		}
		h := StreamHeader{
			PayloadOffset: streamHeaderSize,
			PayloadLength: uint32(len(payload)),
			Opaque:        meta.Opaque,
		}
		streams[i] = append(h.encode(), payload...)
		cfg.log().Debug("packed stream", "index", i, "file", name, "payload_size", len(payload))
	}

	// Offsets are strictly sequential: each depends on the cumulative size
	// and padding of everything before it.
	entries := make([]Entry, len(streams))
	pos := tableEnd(len(streams))
	for i, s := range streams {
		pos = alignUp(pos, uint64(sc.Layout.Alignment))
		entries[i] = Entry{Index: i, Offset: uint32(pos), Length: uint32(len(s))}
		pos += uint64(len(s))
	}
	if pos > math.MaxUint32 {
		return nil, fmt.Errorf("%w: container is %d bytes", ErrSizeOverflow, pos)
	}

	total := pos
	if sc.Layout.Trailer {
		total += trailerSize
	}
	out := make([]byte, total)
	copy(out, MagicContainer)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(streams)))
	copy(out[containerHeaderSize:], encodeTable(entries))
	for i, s := range streams {
		copy(out[entries[i].Offset:], s)
	}
	if sc.Layout.Trailer {
		binary.LittleEndian.PutUint32(out[pos:], uint32(pos))
	}
	return out, nil
}

// scanPayloadDir lists the payload files in dir ordered by ordinal and
// enforces that ordinals form a contiguous zero-based sequence. Filenames
// must be the canonical "<ordinal>.asf" form Extract writes; anything else
// in the directory is ignored.
func scanPayloadDir(dir string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	ordinals := make([]int, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		ord, ok := payloadOrdinal(d.Name())
		if !ok {
			continue
		}
		ordinals = append(ordinals, ord)
	}
	sort.Ints(ordinals)

	names := make([]string, len(ordinals))
	for i, ord := range ordinals {
		if ord != i {
			return nil, fmt.Errorf("%w: expected ordinal %d, found %d", ErrEntryGap, i, ord)
		}
		names[i] = strconv.Itoa(ord) + PayloadExt
	}
	return names, nil
}

// payloadOrdinal parses the ordinal out of a canonical payload filename.
func payloadOrdinal(name string) (int, bool) {
	stem, ok := strings.CutSuffix(name, PayloadExt)
	if !ok {
		return 0, false
	}
	ord, err := strconv.Atoi(stem)
	if err != nil || ord < 0 || strconv.Itoa(ord) != stem {
		return 0, false
	}
	return ord, true
}
