package s3p

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/s3p/internal/testutil"
)

// extractToTemp extracts container into a fresh directory and returns it.
func extractToTemp(t *testing.T, container []byte) string {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "out")
	_, err := Extract(context.Background(), container, outDir)
	require.NoError(t, err)
	return outDir
}

func TestPackRoundTripIdentity(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer(
		[][]byte{[]byte("first stream"), []byte("2nd"), []byte("the third one")},
		[][5]uint32{{1, 2, 3, 4, 5}, {0, 0, 512, 0, 0}, {9, 8, 7, 6, 5}},
	)

	repacked, err := Pack(context.Background(), extractToTemp(t, container))
	require.NoError(t, err)
	assert.Equal(t, container, repacked)
}

func TestPackRoundTripAligned(t *testing.T) {
	t.Parallel()

	streams := [][]byte{
		testutil.BuildStream([]byte("odd length payload!"), [5]uint32{1, 0, 0, 0, 0}),
		testutil.BuildStream([]byte("q"), [5]uint32{2, 0, 0, 0, 0}),
	}
	container := testutil.BuildContainer(streams, 16, true)

	repacked, err := Pack(context.Background(), extractToTemp(t, container))
	require.NoError(t, err)
	assert.Equal(t, container, repacked)
}

func TestPackRoundTripWithoutTrailer(t *testing.T) {
	t.Parallel()

	streams := [][]byte{testutil.BuildStream([]byte("abc"), [5]uint32{})}
	container := testutil.BuildContainer(streams, 1, false)

	repacked, err := Pack(context.Background(), extractToTemp(t, container))
	require.NoError(t, err)
	assert.Equal(t, container, repacked)
}

func TestPackRoundTripEmpty(t *testing.T) {
	t.Parallel()

	container := testutil.BuildContainer(nil, 1, true)
	repacked, err := Pack(context.Background(), extractToTemp(t, container))
	require.NoError(t, err)
	assert.Equal(t, container, repacked)
}

func TestPackPayloadSubstitution(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer(
		[][]byte{[]byte("first stream"), []byte("second"), []byte("third")},
		[][5]uint32{{1, 0, 0, 0, 0}, {2, 0, 512, 0, 0}, {3, 0, 0, 0, 0}},
	)
	dir := extractToTemp(t, container)

	// Stand-in for an external transcoder: replace stream 1 with a blob of a
	// different length.
	replacement := []byte("a considerably longer replacement payload")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.asf"), replacement, 0o644))

	repacked, err := Pack(context.Background(), dir)
	require.NoError(t, err)

	result, err := Inspect(repacked)
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, uint32(len(replacement)), result.Entries[1].PayloadSize)

	// Opaque values survive the substitution untouched.
	assert.Equal(t, uint32(2), result.Entries[1].Opaque["unk1"])
	assert.Equal(t, uint32(512), result.Entries[1].Opaque["unk3"])

	// Unmodified neighbors keep their exact payloads at the recomputed offsets.
	redir := filepath.Join(t.TempDir(), "re")
	report, err := Extract(context.Background(), repacked, redir)
	require.NoError(t, err)
	for i, want := range [][]byte{[]byte("first stream"), replacement, []byte("third")} {
		got, err := os.ReadFile(filepath.Join(redir, report.Streams[i].Name))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPackOpaqueEditPropagates(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer(
		[][]byte{[]byte("first stream"), []byte("second")},
		[][5]uint32{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}},
	)
	dir := extractToTemp(t, container)

	// Hand-edit unk3 of stream 1 the way a user would.
	sidecarPath := filepath.Join(dir, SidecarFilename)
	raw, err := os.ReadFile(sidecarPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["streams"].([]any)[1].(map[string]any)["unk3"] = 0xBEEF
	edited, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sidecarPath, edited, 0o644))

	repacked, err := Pack(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, len(container), len(repacked))

	// Only the edited field's byte range may differ.
	entries, err := decodeTable(container, 2)
	require.NoError(t, err)
	fieldStart := int(entries[1].Offset) + 20 // unk3 lives at preamble bytes 20..24
	for i := range container {
		if i >= fieldStart && i < fieldStart+4 {
			continue
		}
		require.Equal(t, container[i], repacked[i], "byte %d changed", i)
	}
	assert.Equal(t, uint32(0xBEEF), binary.LittleEndian.Uint32(repacked[fieldStart:]))
}

func TestPackEntryGap(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer(
		[][]byte{[]byte("a"), []byte("b"), []byte("c")},
		[][5]uint32{{}, {}, {}},
	)
	dir := extractToTemp(t, container)
	require.NoError(t, os.Rename(filepath.Join(dir, "2.asf"), filepath.Join(dir, "3.asf")))

	_, err := Pack(context.Background(), dir)
	require.ErrorIs(t, err, ErrEntryGap)
}

func TestPackMissingMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0.asf"), []byte("zzz"), 0o644))

	_, err := Pack(context.Background(), dir)
	require.ErrorIs(t, err, ErrMissingMetadata)
}

func TestPackUnlistedPayload(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer([][]byte{[]byte("a"), []byte("b")}, [][5]uint32{{}, {}})
	dir := extractToTemp(t, container)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.asf"), []byte("extra"), 0o644))

	_, err := Pack(context.Background(), dir)
	require.ErrorIs(t, err, ErrMissingField)
}

func TestPackSidecarListsMissingFile(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer([][]byte{[]byte("a"), []byte("b")}, [][5]uint32{{}, {}})
	dir := extractToTemp(t, container)
	require.NoError(t, os.Remove(filepath.Join(dir, "1.asf")))

	_, err := Pack(context.Background(), dir)
	require.ErrorIs(t, err, ErrBadStructure)
}

func TestPackIgnoresForeignFiles(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer([][]byte{[]byte("a")}, [][5]uint32{{}})
	dir := extractToTemp(t, container)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00.asf"), []byte("non-canonical"), 0o644))

	repacked, err := Pack(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, container, repacked)
}

func TestPackFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir() // no sidecar: packing must fail
	outPath := filepath.Join(t.TempDir(), "out.s3p")

	err := PackFile(context.Background(), dir, outPath)
	require.ErrorIs(t, err, ErrMissingMetadata)
	_, statErr := os.Stat(outPath)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestPackFileWritesContainer(t *testing.T) {
	t.Parallel()

	container := testutil.BuildSimpleContainer([][]byte{[]byte("payload")}, [][5]uint32{{7, 0, 0, 0, 0}})
	dir := extractToTemp(t, container)
	outPath := filepath.Join(t.TempDir(), "out.s3p")

	require.NoError(t, PackFile(context.Background(), dir, outPath))
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, container, got)
}
