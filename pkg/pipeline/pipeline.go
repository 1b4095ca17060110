// Package pipeline sequences one full backup run: validate configuration,
// prepare the metadata folder, self-backup the running program, synchronize
// the tree, archive it, and prune old archives.
//
// Everything after validation is fail-soft: step failures are reported and
// the remaining steps still run. Only the fatal configuration error (source
// equals backup) aborts, and it does so before any filesystem mutation.
package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/flatback/pkg/archive"
	"github.com/arthur-debert/flatback/pkg/config"
	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/arthur-debert/flatback/pkg/logging"
	"github.com/arthur-debert/flatback/pkg/output"
	"github.com/arthur-debert/flatback/pkg/syncer"
)

// Metadata folder layout inside the backup root.
const (
	// MetaDirName is the reserved subfolder of the backup root holding the
	// change log, archives and self-backup copies. It is excluded from
	// archival.
	MetaDirName = "versions"

	// ChangeLogName is the append-only change log file.
	ChangeLogName = "change_log.txt"

	// stampLayout is the second-resolution timestamp used in archive and
	// self-backup names.
	stampLayout = "20060102_150405"
)

// Pipeline owns the configuration and the metadata folder lifecycle for one
// run. A single process runs the whole pipeline to completion; no locking
// guards against concurrent invocations, the tool assumes it is the sole
// writer to the backup root during a run.
type Pipeline struct {
	fsys     afero.Fs
	cfg      config.Config
	reporter output.Reporter
	logger   zerolog.Logger
	now      func() time.Time
	exePath  func() (string, error)
}

// New creates a Pipeline over fsys with the given resolved configuration.
func New(fsys afero.Fs, cfg config.Config, reporter output.Reporter) *Pipeline {
	return &Pipeline{
		fsys:     fsys,
		cfg:      cfg,
		reporter: reporter,
		logger:   logging.GetLogger("pipeline"),
		now:      time.Now,
		exePath:  os.Executable,
	}
}

// WithClock replaces the clock used for archive names, self-backup names and
// change log timestamps.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// WithExecutable replaces the lookup for the running program's path, used by
// the self-backup step.
func (p *Pipeline) WithExecutable(fn func() (string, error)) *Pipeline {
	p.exePath = fn
	return p
}

// MetaDir returns the metadata folder path for the configured backup root.
func (p *Pipeline) MetaDir() string {
	return filepath.Join(p.cfg.BackupDir, MetaDirName)
}

// Run executes one backup pass. The returned error is non-nil only for the
// fatal configuration error; every other failure is reported and the run
// continues.
func (p *Pipeline) Run() error {
	defer logging.LogDuration(p.now(), "backup run")

	if err := p.cfg.Validate(); err != nil {
		return err
	}

	metaDir := p.MetaDir()
	if err := p.fsys.MkdirAll(metaDir, 0755); err != nil {
		// Downstream steps will fail and report individually; keep the
		// fail-soft contract even here.
		p.reporter.Error("Error creating backup folders: %v", err)
		p.logger.Warn().Err(err).Str("path", metaDir).Msg("Cannot create metadata folder")
	}

	stamp := p.now().Format(stampLayout)

	p.selfBackup(metaDir, stamp)

	logPath := filepath.Join(metaDir, ChangeLogName)
	s := syncer.New(p.fsys, p.cfg, logPath, p.reporter).WithClock(p.now)
	if _, err := s.Run(); err != nil {
		p.reporter.Error("Error during sync: %v", err)
		p.logger.Warn().Err(err).Msg("Sync pass failed")
	}

	archivePath := filepath.Join(metaDir, "backup_"+stamp+".zip")
	if err := archive.Create(p.fsys, p.cfg.BackupDir, metaDir, archivePath); err != nil {
		p.reporter.Error("Error creating zip file: %v", err)
		p.logger.Warn().Err(err).Str("path", archivePath).Msg("Archive creation failed")
	} else {
		p.reporter.Info("Zipped files saved to %s", archivePath)
	}

	if err := archive.Prune(p.fsys, metaDir, p.cfg.MaxArchives, p.reporter); err != nil {
		p.reporter.Error("Error removing old archives: %v", err)
		p.logger.Warn().Err(err).Msg("Retention cleanup failed")
	}

	p.reporter.Info("Change log saved to %s", logPath)
	return nil
}

// selfBackup copies the running program into the metadata folder with a
// timestamped name, for provenance. Failures are reported and ignored.
func (p *Pipeline) selfBackup(metaDir, stamp string) {
	exe, err := p.exePath()
	if err != nil {
		p.reportSelfBackupError(errors.Wrap(err, errors.ErrSelfBackup, "cannot locate running program"))
		return
	}

	dest := filepath.Join(metaDir, "backup_script_"+stamp+filepath.Ext(exe))

	in, err := p.fsys.Open(exe)
	if err != nil {
		p.reportSelfBackupError(errors.Wrap(err, errors.ErrSelfBackup, "cannot open running program").
			WithDetail("path", exe))
		return
	}
	defer func() { _ = in.Close() }()

	out, err := p.fsys.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		p.reportSelfBackupError(errors.Wrap(err, errors.ErrSelfBackup, "cannot create self-backup copy").
			WithDetail("path", dest))
		return
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		p.reportSelfBackupError(errors.Wrap(err, errors.ErrSelfBackup, "cannot copy running program").
			WithDetail("path", dest))
		return
	}
	if err := out.Close(); err != nil {
		p.reportSelfBackupError(errors.Wrap(err, errors.ErrSelfBackup, "cannot finish self-backup copy").
			WithDetail("path", dest))
		return
	}

	p.reporter.Info("Script backed up to %s", dest)
	p.logger.Debug().Str("path", dest).Msg("Self-backup written")
}

func (p *Pipeline) reportSelfBackupError(err error) {
	p.reporter.Error("Error backing up script: %v", err)
	p.logger.Warn().Err(err).Msg("Self-backup failed")
}
