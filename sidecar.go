package s3p

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/bits"
	"os"
	"strconv"
)

// StreamMeta pairs an extracted payload filename with the opaque values
// from its stream preamble.
type StreamMeta struct {
	Filename string
	Opaque   OpaqueFields
}

// Sidecar is the in-memory form of metadata.json: the layout policy plus
// one record per stream. It is the only state carried between extraction
// and packing; known header fields are deliberately absent because the
// packer always recomputes them from the directory contents.
type Sidecar struct {
	Layout  Layout
	Streams []StreamMeta
}

// sidecarDoc is the JSON shape of the sidecar. Layout keys are pointers so
// a hand-edited document that drops them falls back to defaults; opaque
// stream values get no such leniency and are validated field by field.
type sidecarDoc struct {
	Alignment *uint32           `json:"alignment"`
	Trailer   *bool             `json:"trailer"`
	Streams   []json.RawMessage `json:"streams"`
}

// writeSidecar marshals sc to path atomically, using the indented layout
// users will hand-edit.
func writeSidecar(path string, sc Sidecar) error {
	doc := struct {
		Alignment uint32           `json:"alignment"`
		Trailer   bool             `json:"trailer"`
		Streams   []map[string]any `json:"streams"`
	}{
		Alignment: sc.Layout.Alignment,
		Trailer:   sc.Layout.Trailer,
		Streams:   make([]map[string]any, len(sc.Streams)),
	}
	for i, s := range sc.Streams {
		rec := make(map[string]any, len(opaqueFieldTable)+1)
		rec["filename"] = s.Filename
		for _, f := range opaqueFieldTable {
			rec[f.Key] = s.Opaque[f.Key]
		}
		doc.Streams[i] = rec
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// readSidecar loads and validates metadata.json from path.
func readSidecar(path string) (Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sidecar{}, fmt.Errorf("%w: %s", ErrMissingMetadata, path)
		}
		return Sidecar{}, fmt.Errorf("read sidecar: %w", err)
	}

	var doc sidecarDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Sidecar{}, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}

	sc := Sidecar{Layout: defaultLayout()}
	if doc.Alignment != nil {
		a := *doc.Alignment
		if a == 0 || a > maxAlignment || bits.OnesCount32(a) != 1 {
			return Sidecar{}, fmt.Errorf("%w: alignment %d is not a power of two in [1, %d]", ErrMalformedValue, a, maxAlignment)
		}
		sc.Layout.Alignment = a
	}
	if doc.Trailer != nil {
		sc.Layout.Trailer = *doc.Trailer
	}

	sc.Streams = make([]StreamMeta, len(doc.Streams))
	for i, raw := range doc.Streams {
		meta, err := decodeStreamMeta(i, raw)
		if err != nil {
			return Sidecar{}, err
		}
		sc.Streams[i] = meta
	}
	return sc, nil
}

// decodeStreamMeta validates one stream record against the opaque field
// table: every key must be present and hold an integer that fits the
// field's byte width.
func decodeStreamMeta(i int, raw json.RawMessage) (StreamMeta, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return StreamMeta{}, fmt.Errorf("%w: stream %d: %v", ErrMalformedValue, i, err)
	}

	name, ok := rec["filename"]
	if !ok {
		return StreamMeta{}, fmt.Errorf("%w: stream %d: filename", ErrMissingField, i)
	}
	filename, ok := name.(string)
	if !ok {
		return StreamMeta{}, fmt.Errorf("%w: stream %d: filename is not a string", ErrMalformedValue, i)
	}

	meta := StreamMeta{Filename: filename, Opaque: make(OpaqueFields, len(opaqueFieldTable))}
	for _, f := range opaqueFieldTable {
		v, ok := rec[f.Key]
		if !ok {
			return StreamMeta{}, fmt.Errorf("%w: stream %d: %s", ErrMissingField, i, f.Key)
		}
		num, ok := v.(json.Number)
		if !ok {
			return StreamMeta{}, fmt.Errorf("%w: stream %d: %s is not a number", ErrMalformedValue, i, f.Key)
		}
		u, err := parseFieldValue(num, f.Width)
		if err != nil {
			return StreamMeta{}, fmt.Errorf("%w: stream %d: %s: %v", ErrMalformedValue, i, f.Key, err)
		}
		meta.Opaque[f.Key] = u
	}
	return meta, nil
}

// parseFieldValue converts a JSON number back to a fixed-width unsigned
// field value.
func parseFieldValue(num json.Number, width int) (uint32, error) {
	u, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return 0, err
	}
	if u >= 1<<(8*width) {
		return 0, fmt.Errorf("%d does not fit %d bytes", u, width)
	}
	return uint32(u), nil
}
