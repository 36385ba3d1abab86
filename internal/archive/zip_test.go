package archive

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() core.Bundle {
	return core.Bundle{
		Files: []core.BundleFile{
			{Name: "001_prf_bulk_import_20240102.csv", Content: []byte("\"Name\"\r\n\"Ann\"\r\n")},
			{Name: core.ErrorReportName, Content: []byte("\"Line\",\"Code\",\"Message\"\r\n")},
			{Name: core.ManifestName, Content: []byte("{}\n")},
		},
		Manifest: core.Manifest{GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
}

func TestZipPackager_RoundTrip(t *testing.T) {
	data, err := NewZipPackager().Package(context.Background(), testBundle())
	require.NoError(t, err)

	entries, err := ReadAll(data)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, f := range testBundle().Files {
		assert.Equal(t, f.Name, entries[i].Name)
		assert.Equal(t, f.Content, entries[i].Content)
	}
}

func TestZipPackager_Deterministic(t *testing.T) {
	p := &ZipPackager{Level: 9}

	a, err := p.Package(context.Background(), testBundle())
	require.NoError(t, err)
	b, err := p.Package(context.Background(), testBundle())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestZipPackager_DuplicateEntry(t *testing.T) {
	b := testBundle()
	b.Files = append(b.Files, b.Files[0])

	_, err := NewZipPackager().Package(context.Background(), b)
	assert.ErrorContains(t, err, "duplicate archive entry")
}

func TestZipPackager_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewZipPackager().Package(ctx, testBundle())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadAll_NotZip(t *testing.T) {
	_, err := ReadAll([]byte("not a zip"))
	assert.Error(t, err)
}

func TestZipPackager_ImplementsPackager(t *testing.T) {
	var _ core.Packager = NewZipPackager()
}
