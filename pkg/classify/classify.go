// Package classify decides whether a file should be treated as text or
// binary. Binary files are still backed up, but they are never diffed or
// written to the change log.
package classify

import (
	"bytes"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/flatback/pkg/logging"
	"github.com/spf13/afero"
)

// sniffLen is how many leading bytes are inspected for a NUL byte when the
// MIME type is inconclusive.
const sniffLen = 1024

// IsBinary reports whether the file at path should be treated as binary.
//
// The check is a two-step heuristic: a MIME type known not to start with
// "text" classifies the file as binary outright; otherwise the first KiB is
// scanned for a NUL byte. Files that cannot be opened or read are classified
// as binary so they are never handed to the differ.
func IsBinary(fsys afero.Fs, path string) bool {
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		if !strings.HasPrefix(mimeType, "text") {
			return true
		}
	}

	f, err := fsys.Open(path)
	if err != nil {
		logger := logging.GetLogger("classify")
		logger.Debug().
			Err(err).Str("path", path).
			Msg("Unreadable file, treating as binary")
		return true
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return true
	}

	return bytes.IndexByte(buf[:n], 0) >= 0
}
