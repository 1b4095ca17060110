package changelog

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", "2024-05-01 10:30:00")
	require.NoError(t, err)
	return func() time.Time { return ts }
}

func TestAppendFormat(t *testing.T) {
	fsys := afero.NewMemMapFs()

	w, err := Open(fsys, "versions/change_log.txt")
	require.NoError(t, err)
	w.WithClock(fixedClock(t))

	require.NoError(t, w.Append("notes/a.txt", "Added lines:\nx\nRemoved lines:\nz"))
	require.NoError(t, w.Close())

	data, err := afero.ReadFile(fsys, "versions/change_log.txt")
	require.NoError(t, err)
	assert.Equal(t,
		"Changes in notes/a.txt on 2024-05-01 10:30:00\nAdded lines:\nx\nRemoved lines:\nz\n\n",
		string(data))
}

func TestAppendIsAppendOnly(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "change_log.txt", []byte("old entry\n\n"), 0644))

	w, err := Open(fsys, "change_log.txt")
	require.NoError(t, err)
	w.WithClock(fixedClock(t))

	require.NoError(t, w.Append("b.txt", "Added lines:\nnew"))
	require.NoError(t, w.Close())

	data, err := afero.ReadFile(fsys, "change_log.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "old entry")
	assert.Contains(t, string(data), "Changes in b.txt on 2024-05-01 10:30:00\nAdded lines:\nnew\n\n")
}

func TestAppendMultipleEntries(t *testing.T) {
	fsys := afero.NewMemMapFs()

	w, err := Open(fsys, "change_log.txt")
	require.NoError(t, err)
	w.WithClock(fixedClock(t))

	require.NoError(t, w.Append("a.txt", "Added lines:\none"))
	require.NoError(t, w.Append("b.txt", "Removed lines:\ntwo"))
	require.NoError(t, w.Close())

	data, err := afero.ReadFile(fsys, "change_log.txt")
	require.NoError(t, err)
	assert.Equal(t,
		"Changes in a.txt on 2024-05-01 10:30:00\nAdded lines:\none\n\n"+
			"Changes in b.txt on 2024-05-01 10:30:00\nRemoved lines:\ntwo\n\n",
		string(data))
}
