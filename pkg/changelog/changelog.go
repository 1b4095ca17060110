// Package changelog appends change summaries to the append-only change log
// kept in the backup tree's metadata folder. Entries are never mutated or
// deleted.
package changelog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/spf13/afero"
)

// timestampLayout matches the log entry format: YYYY-MM-DD HH:MM:SS.
const timestampLayout = "2006-01-02 15:04:05"

// Writer appends entries to the change log. It is opened once per
// synchronizer pass and must be closed when the pass ends; no other writer
// is assumed to touch the file in between.
type Writer struct {
	file io.WriteCloser
	now  func() time.Time
}

// Open opens (creating if needed) the change log at path for appending.
func Open(fsys afero.Fs, path string) (*Writer, error) {
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrLogWrite, "cannot open change log").
			WithDetail("path", path)
	}
	return &Writer{file: f, now: time.Now}, nil
}

// WithClock replaces the writer's clock. Tests use this to pin timestamps.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Append writes one entry for relPath with the given change summary:
//
//	Changes in <relPath> on <YYYY-MM-DD HH:MM:SS>
//	<summary>
//
// followed by a blank line.
func (w *Writer) Append(relPath, summary string) error {
	entry := fmt.Sprintf("Changes in %s on %s\n%s\n\n",
		relPath, w.now().Format(timestampLayout), summary)
	if _, err := io.WriteString(w.file, entry); err != nil {
		return errors.Wrap(err, errors.ErrLogWrite, "cannot append to change log").
			WithDetail("file", relPath)
	}
	return nil
}

// Close releases the log file handle.
func (w *Writer) Close() error {
	return w.file.Close()
}
