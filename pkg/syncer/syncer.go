// Package syncer implements the tree synchronizer: one pass over the source
// tree that copies new or changed files into the mirrored backup tree and
// records text changes in the change log.
//
// The synchronizer is additive only. Files that disappear from the source
// tree, stop matching an extension, or become ignored are left untouched in
// the backup tree.
package syncer

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/flatback/pkg/changelog"
	"github.com/arthur-debert/flatback/pkg/classify"
	"github.com/arthur-debert/flatback/pkg/config"
	"github.com/arthur-debert/flatback/pkg/diff"
	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/arthur-debert/flatback/pkg/logging"
	"github.com/arthur-debert/flatback/pkg/output"
)

// Stats summarizes one synchronizer pass.
type Stats struct {
	// Visited counts files that passed the extension and ignore filters.
	Visited int
	// Copied counts files written into the backup tree.
	Copied int
	// Logged counts change log entries appended.
	Logged int
	// Errors counts per-file failures that were reported and skipped.
	Errors int
}

// Synchronizer walks the source tree and mirrors eligible files into the
// backup tree. It owns all per-file decisions; the change log handle is the
// only state shared across files and lives for the duration of one Run.
type Synchronizer struct {
	fsys     afero.Fs
	cfg      config.Config
	logPath  string
	reporter output.Reporter
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a Synchronizer. logPath is the change log location inside the
// metadata folder.
func New(fsys afero.Fs, cfg config.Config, logPath string, reporter output.Reporter) *Synchronizer {
	return &Synchronizer{
		fsys:     fsys,
		cfg:      cfg,
		logPath:  logPath,
		reporter: reporter,
		logger:   logging.GetLogger("sync"),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for change log timestamps.
func (s *Synchronizer) WithClock(now func() time.Time) *Synchronizer {
	s.now = now
	return s
}

// Run performs one synchronizer pass. Per-file failures are reported and
// skipped; Run itself only fails when the source tree cannot be walked at
// all.
func (s *Synchronizer) Run() (Stats, error) {
	var stats Stats

	log, err := changelog.Open(s.fsys, s.logPath)
	if err != nil {
		// Sync still proceeds; text changes just go unrecorded this run.
		s.reporter.Error("Error opening change log: %v", err)
		s.logger.Warn().Err(err).Str("path", s.logPath).Msg("Change log unavailable")
		log = nil
	} else {
		log.WithClock(s.now)
		defer func() { _ = log.Close() }()
	}

	walkErr := afero.Walk(s.fsys, s.cfg.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			rel := s.relPath(path)
			s.reporter.FileError(rel, err)
			s.logger.Warn().Err(err).Str("path", path).Msg("Walk error, skipping")
			stats.Errors++
			return nil
		}
		if info.IsDir() {
			return nil
		}

		name := info.Name()
		if !s.matchesExtension(name) {
			return nil
		}
		if s.shouldIgnore(name) {
			s.logger.Trace().Str("name", name).Msg("Ignored by rule")
			return nil
		}

		stats.Visited++
		rel := s.relPath(path)
		if err := s.processFile(path, rel, info, log, &stats); err != nil {
			s.reporter.FileError(rel, err)
			s.logger.Warn().Err(err).Str("file", rel).Msg("File skipped")
			stats.Errors++
		}
		return nil
	})
	if walkErr != nil {
		return stats, errors.Wrap(walkErr, errors.ErrFileAccess, "cannot walk source tree").
			WithDetail("path", s.cfg.SourceDir)
	}

	s.logger.Info().
		Int("visited", stats.Visited).
		Int("copied", stats.Copied).
		Int("logged", stats.Logged).
		Int("errors", stats.Errors).
		Msg("Sync pass finished")
	return stats, nil
}

// processFile applies the per-file pipeline: ensure the destination
// directory, classify, diff, copy, log.
func (s *Synchronizer) processFile(path, rel string, info os.FileInfo, log *changelog.Writer, stats *Stats) error {
	dest := filepath.Join(s.cfg.BackupDir, rel)

	if err := s.fsys.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create destination directory").
			WithDetail("path", filepath.Dir(dest))
	}

	isBinary := classify.IsBinary(s.fsys, path)

	var summary *diff.Summary
	if !isBinary {
		var err error
		summary, err = diff.Compare(s.fsys, path, dest)
		if err != nil {
			return err
		}
	}

	// Binary files are re-copied on every run: without a diff there is no
	// cheap change signal, and overwriting is always correct.
	// Text files are copied when no destination exists yet (nil summary)
	// or when the summary is non-empty.
	if !isBinary && summary != nil && summary.Empty() {
		return nil
	}

	if err := s.copyFile(path, dest, info); err != nil {
		return err
	}
	stats.Copied++
	s.reporter.Copied(rel)

	if isBinary {
		s.reporter.BinarySkipped(rel)
		return nil
	}

	if summary != nil && !summary.Empty() && log != nil {
		if err := log.Append(rel, summary.String()); err != nil {
			return err
		}
		stats.Logged++
	}
	return nil
}

// copyFile copies src over dest, preserving the source's mode and
// modification time.
func (s *Synchronizer) copyFile(src, dest string, info os.FileInfo) error {
	in, err := s.fsys.Open(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileRead, "cannot open source file").
			WithDetail("path", src)
	}
	defer func() { _ = in.Close() }()

	out, err := s.fsys.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot create destination file").
			WithDetail("path", dest)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrap(err, errors.ErrFileWrite, "cannot copy file content").
			WithDetail("path", dest)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot finish destination file").
			WithDetail("path", dest)
	}

	mtime := info.ModTime()
	if err := s.fsys.Chtimes(dest, mtime, mtime); err != nil {
		s.logger.Debug().Err(err).Str("path", dest).Msg("Cannot preserve modification time")
	}
	return nil
}

// matchesExtension reports whether name ends with one of the configured
// suffixes. This is a suffix match, not extension parsing: "report.v2.txt"
// matches ".txt".
func (s *Synchronizer) matchesExtension(name string) bool {
	for _, ext := range s.cfg.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// shouldIgnore reports whether the bare file name is excluded by an exact
// ignore entry or a shell-style glob pattern.
func (s *Synchronizer) shouldIgnore(name string) bool {
	for _, ignored := range s.cfg.IgnoreFiles {
		if name == ignored {
			return true
		}
	}
	for _, pattern := range s.cfg.IgnorePatterns {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			s.logger.Debug().Str("pattern", pattern).Msg("Invalid ignore pattern, skipping it")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// relPath returns path relative to the source root, falling back to the
// bare name when Rel fails.
func (s *Synchronizer) relPath(path string) string {
	rel, err := filepath.Rel(s.cfg.SourceDir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}
