// Package config defines the resolved configuration object handed to the
// backup pipeline and the loader that produces it from an on-disk config
// file (YAML or JSON) merged over built-in defaults.
package config

import (
	"path/filepath"

	"github.com/arthur-debert/flatback/pkg/errors"
)

// Format identifies which decoding strategy produced a Config. The choice is
// made once at load time, based on which config file exists; the pipeline
// itself never inspects the environment.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatDefaults Format = "defaults"
)

// Config is the fully resolved configuration for one backup run.
type Config struct {
	// SourceDir is the directory tree being backed up.
	SourceDir string `koanf:"source_folder"`

	// BackupDir is the mirrored destination tree. Its "versions" subfolder
	// holds the change log, archives and self-backup copies.
	BackupDir string `koanf:"backup_folder"`

	// Extensions are file name suffixes (including the leading dot) that
	// select which files are backed up. Suffix match, not extension parsing:
	// "report.v2.txt" matches ".txt".
	Extensions []string `koanf:"file_extensions"`

	// IgnoreFiles are exact file names to skip.
	IgnoreFiles []string `koanf:"ignore_files"`

	// IgnorePatterns are shell-style glob patterns matched against the bare
	// file name.
	IgnorePatterns []string `koanf:"ignore_patterns"`

	// MaxArchives is the number of zip archives kept in the metadata folder.
	MaxArchives int `koanf:"max_zips"`

	// Format records which decoding strategy produced this Config.
	Format Format `koanf:"-"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() Config {
	return Config{
		SourceDir:      "./source",
		BackupDir:      "./backup",
		Extensions:     []string{".txt"},
		IgnoreFiles:    []string{},
		IgnorePatterns: []string{},
		MaxArchives:    20,
		Format:         FormatDefaults,
	}
}

// Validate checks the invariants that must hold before any filesystem I/O.
// A violation is fatal for the whole run.
func (c Config) Validate() error {
	if c.SourceDir == "" {
		return errors.New(errors.ErrConfigInvalid, "source_folder must not be empty")
	}
	if c.BackupDir == "" {
		return errors.New(errors.ErrConfigInvalid, "backup_folder must not be empty")
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.BackupDir) {
		return errors.New(errors.ErrConfigInvalid, "source and backup folders must not be the same").
			WithDetail("source_folder", c.SourceDir).
			WithDetail("backup_folder", c.BackupDir)
	}
	if c.MaxArchives < 0 {
		return errors.Newf(errors.ErrConfigInvalid, "max_zips must not be negative, got %d", c.MaxArchives)
	}
	return nil
}
