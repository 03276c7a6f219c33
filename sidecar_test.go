package s3p

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestSidecar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), SidecarFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSidecarRoundTrip(t *testing.T) {
	t.Parallel()

	sc := Sidecar{
		Layout: Layout{Alignment: 16, Trailer: false},
		Streams: []StreamMeta{
			{Filename: "0.asf", Opaque: OpaqueFields{"unk1": 66, "unk2": 0, "unk3": 512, "unk4": 0, "unk5": 0}},
			{Filename: "1.asf", Opaque: OpaqueFields{"unk1": 1, "unk2": 2, "unk3": 3, "unk4": 4, "unk5": 4294967295}},
		},
	}

	path := filepath.Join(t.TempDir(), SidecarFilename)
	require.NoError(t, writeSidecar(path, sc))

	got, err := readSidecar(path)
	require.NoError(t, err)
	assert.Equal(t, sc, got)
}

func TestReadSidecarMissingFile(t *testing.T) {
	t.Parallel()

	_, err := readSidecar(filepath.Join(t.TempDir(), SidecarFilename))
	require.ErrorIs(t, err, ErrMissingMetadata)
}

func TestReadSidecarDefaultsLayout(t *testing.T) {
	t.Parallel()

	// A hand-edited sidecar that dropped the layout keys falls back to the
	// common case: back-to-back streams with a trailer.
	path := writeTestSidecar(t, `{"streams": []}`)
	sc, err := readSidecar(path)
	require.NoError(t, err)
	assert.Equal(t, Layout{Alignment: 1, Trailer: true}, sc.Layout)
}

func TestReadSidecarMissingOpaqueField(t *testing.T) {
	t.Parallel()

	path := writeTestSidecar(t, `{
        "alignment": 1,
        "trailer": true,
        "streams": [
            {"filename": "0.asf", "unk1": 1, "unk2": 2, "unk4": 4, "unk5": 5}
        ]
    }`)
	_, err := readSidecar(path)
	require.ErrorIs(t, err, ErrMissingField)
	assert.ErrorContains(t, err, "unk3")
}

func TestReadSidecarMissingFilename(t *testing.T) {
	t.Parallel()

	path := writeTestSidecar(t, `{"streams": [{"unk1": 1, "unk2": 2, "unk3": 3, "unk4": 4, "unk5": 5}]}`)
	_, err := readSidecar(path)
	require.ErrorIs(t, err, ErrMissingField)
}

func TestReadSidecarMalformedValue(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"string value":  `{"streams": [{"filename": "0.asf", "unk1": "x", "unk2": 0, "unk3": 0, "unk4": 0, "unk5": 0}]}`,
		"too wide":      `{"streams": [{"filename": "0.asf", "unk1": 4294967296, "unk2": 0, "unk3": 0, "unk4": 0, "unk5": 0}]}`,
		"negative":      `{"streams": [{"filename": "0.asf", "unk1": -1, "unk2": 0, "unk3": 0, "unk4": 0, "unk5": 0}]}`,
		"fractional":    `{"streams": [{"filename": "0.asf", "unk1": 1.5, "unk2": 0, "unk3": 0, "unk4": 0, "unk5": 0}]}`,
		"bad json":      `{"streams": [`,
		"bad alignment": `{"alignment": 3, "streams": []}`,
	}
	for name, content := range cases {
		content := content
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := writeTestSidecar(t, content)
			_, err := readSidecar(path)
			require.ErrorIs(t, err, ErrMalformedValue)
		})
	}
}
