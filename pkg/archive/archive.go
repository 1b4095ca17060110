// Package archive packages the backup tree into timestamped zip snapshots
// and enforces the retention policy on them.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/arthur-debert/flatback/pkg/logging"
)

// Create writes a deflate-compressed zip of everything under backupRoot,
// except the metadata folder, to archivePath. Entry names are
// slash-separated paths relative to backupRoot. An error mid-write may leave
// a partial archive behind; the caller reports it and continues with
// retention.
func Create(fsys afero.Fs, backupRoot, metaDir, archivePath string) error {
	logger := logging.GetLogger("archive")

	out, err := fsys.OpenFile(archivePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrArchiveCreate, "cannot create archive file").
			WithDetail("path", archivePath)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)

	metaPrefix := filepath.Clean(metaDir) + string(filepath.Separator)
	walkErr := afero.Walk(fsys, backupRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// The metadata folder holds the archives themselves; descending
			// into it would zip the zip being written.
			if filepath.Clean(path) == filepath.Clean(metaDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(path, metaPrefix) {
			return nil
		}

		rel, err := filepath.Rel(backupRoot, path)
		if err != nil {
			return err
		}
		return addEntry(fsys, zw, path, rel, info)
	})
	if walkErr != nil {
		_ = zw.Close()
		return errors.Wrap(walkErr, errors.ErrArchiveCreate, "cannot archive backup tree").
			WithDetail("path", archivePath)
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrArchiveCreate, "cannot finish archive").
			WithDetail("path", archivePath)
	}

	logger.Info().Str("path", archivePath).Msg("Archive created")
	return nil
}

// addEntry writes one file into the zip with a deflate-compressed,
// slash-separated relative entry.
func addEntry(fsys afero.Fs, zw *zip.Writer, path, rel string, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(w, f)
	return err
}
