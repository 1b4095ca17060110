package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/arthur-debert/flatback/pkg/logging"
	"github.com/arthur-debert/flatback/pkg/output"
)

// Prune deletes zip archives in dir beyond the max most recently modified
// ones. Equal timestamps are tie-broken by name so retention is
// deterministic. Individual delete failures are reported and the remaining
// deletions are still attempted; the returned error aggregates them.
func Prune(fsys afero.Fs, dir string, max int, reporter output.Reporter) error {
	logger := logging.GetLogger("archive.retention")

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrRetention, "cannot list archive folder").
			WithDetail("path", dir)
	}

	var archives []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		archives = append(archives, entry)
	}

	// Most recent first; name breaks mtime ties
	sort.SliceStable(archives, func(i, j int) bool {
		ti, tj := archives[i].ModTime(), archives[j].ModTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return archives[i].Name() < archives[j].Name()
	})

	if len(archives) <= max {
		return nil
	}

	failed := 0
	for _, old := range archives[max:] {
		path := filepath.Join(dir, old.Name())
		if err := fsys.Remove(path); err != nil {
			reporter.Error("Error deleting file %s: %v", path, err)
			logger.Warn().Err(err).Str("path", path).Msg("Cannot delete old archive")
			failed++
			continue
		}
		logger.Debug().Str("path", path).Msg("Old archive deleted")
	}

	if failed > 0 {
		return errors.Newf(errors.ErrRetention, "failed to delete %d old archive(s)", failed)
	}
	return nil
}
