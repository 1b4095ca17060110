package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/flatback/pkg/errors"
)

func readArchive(t *testing.T, fsys afero.Fs, path string) map[string]string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(content)
	}
	return entries
}

func TestCreate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bak/a.txt", []byte("alpha\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/bak/notes/b.txt", []byte("beta\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/bak/versions/change_log.txt", []byte("log\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/bak/versions/backup_old.zip", []byte("zip"), 0644))

	err := Create(fsys, "/bak", "/bak/versions", "/bak/versions/backup_new.zip")
	require.NoError(t, err)

	entries := readArchive(t, fsys, "/bak/versions/backup_new.zip")
	assert.Equal(t, map[string]string{
		"a.txt":       "alpha\n",
		"notes/b.txt": "beta\n",
	}, entries)
}

func TestCreateExcludesMetadataFolder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bak/versions/change_log.txt", []byte("log\n"), 0644))
	require.NoError(t, fsys.MkdirAll("/bak", 0755))

	err := Create(fsys, "/bak", "/bak/versions", "/bak/versions/backup.zip")
	require.NoError(t, err)

	entries := readArchive(t, fsys, "/bak/versions/backup.zip")
	assert.Empty(t, entries, "metadata folder content must never be archived")
}

func TestCreateUsesDeflate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bak/a.txt", []byte("alpha\n"), 0644))

	require.NoError(t, Create(fsys, "/bak", "/bak/versions", "/bak/versions/backup.zip"))

	data, err := afero.ReadFile(fsys, "/bak/versions/backup.zip")
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, uint16(zip.Deflate), zr.File[0].Method)
}

func TestCreateUnwritableTarget(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := Create(fsys, "/bak", "/bak/versions", "/bak/versions/backup.zip")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveCreate))
}
