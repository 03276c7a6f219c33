package s3p

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
)

// StreamInfo describes one extracted payload.
type StreamInfo struct {
	// Index is the stream's ordinal position in the entry table.
	Index int

	// Name is the payload filename inside the extraction directory.
	Name string

	// PayloadSize is the payload length in bytes.
	PayloadSize uint32

	// Digest is the sha256 digest of the payload bytes.
	Digest digest.Digest

	// Opaque holds the unmodeled preamble values, as written to the sidecar.
	Opaque OpaqueFields
}

// ExtractReport summarizes a successful extraction.
type ExtractReport struct {
	Layout  Layout
	Streams []StreamInfo
}

// ExtractFile reads the container at path and extracts it into outDir.
func ExtractFile(ctx context.Context, path, outDir string, opts ...ExtractOption) (*ExtractReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	return Extract(ctx, data, outDir, opts...)
}

// Extract decomposes an S3P container into outDir: one "<ordinal>.asf" file
// per embedded stream plus a metadata.json sidecar carrying the opaque
// preamble values and the observed layout policy.
//
// The whole container is validated before anything is written, and the
// sidecar is written only after every payload file has landed, so a sidecar
// on disk never describes a partial extraction. Payload files themselves are
// not cleaned up on failure.
//
// Payload writes run in parallel (see ExtractWithConcurrency); entries are
// independent once the table is decoded. The input slice is not retained or
// modified.
func Extract(ctx context.Context, container []byte, outDir string, opts ...ExtractOption) (*ExtractReport, error) {
	cfg := extractConfig{concurrency: defaultWriteConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}

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

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	cfg.log().Info("extracting container",
		"streams", count, "alignment", layout.Alignment, "trailer", layout.Trailer)

	streams := make([]StreamInfo, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := extractStream(container, e, outDir)
			if err != nil {
				return err
			}
			streams[e.Index] = info
			cfg.log().Debug("extracted stream",
				"index", e.Index, "file", info.Name, "payload_size", info.PayloadSize, "digest", info.Digest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sc := Sidecar{Layout: layout, Streams: make([]StreamMeta, count)}
	for i, s := range streams {
		sc.Streams[i] = StreamMeta{Filename: s.Name, Opaque: s.Opaque}
	}
	if err := writeSidecar(filepath.Join(outDir, SidecarFilename), sc); err != nil {
		return nil, fmt.Errorf("write sidecar: %w", err)
	}

	return &ExtractReport{Layout: layout, Streams: streams}, nil
}

// extractStream decodes one stream's preamble and writes its payload file.
func extractStream(container []byte, e Entry, outDir string) (StreamInfo, error) {
	block := container[e.Offset:e.end()]
	h, err := decodeStreamHeader(block)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("entry %d: %w", e.Index, err)
	}
	if err := h.validate(e.Index, e.Length); err != nil {
		return StreamInfo{}, err
	}

	payload := block[h.PayloadOffset : uint64(h.PayloadOffset)+uint64(h.PayloadLength)]
	name := fmt.Sprintf("%d%s", e.Index, PayloadExt)
	if err := writeFileAtomic(filepath.Join(outDir, name), payload); err != nil {
		return StreamInfo{}, fmt.Errorf("write payload %s: %w", name, err)
	}

	return StreamInfo{
		Index:       e.Index,
		Name:        name,
		PayloadSize: h.PayloadLength,
		Digest:      digest.FromBytes(payload),
		Opaque:      h.Opaque.clone(),
	}, nil
}
