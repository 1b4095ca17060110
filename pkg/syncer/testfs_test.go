package syncer

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
)

// readErrorFs fails Open for one path, simulating a file that disappears or
// loses read permission mid-run.
type readErrorFs struct {
	afero.Fs
	failPath string
}

func newReadErrorFs(t *testing.T, base afero.Fs, failPath string) afero.Fs {
	t.Helper()
	return &readErrorFs{Fs: base, failPath: failPath}
}

func (f *readErrorFs) Open(name string) (afero.File, error) {
	if name == f.failPath {
		return nil, fmt.Errorf("simulated read failure: %s", name)
	}
	return f.Fs.Open(name)
}
