package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// createErrorFs fails OpenFile for paths with a given suffix, simulating an
// unwritable archive target. Reads and deletes pass through.
type createErrorFs struct {
	afero.Fs
	failSuffix string
}

func (f *createErrorFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && strings.HasSuffix(name, f.failSuffix) {
		return nil, fmt.Errorf("simulated create failure: %s", name)
	}
	return f.Fs.OpenFile(name, flag, perm)
}
