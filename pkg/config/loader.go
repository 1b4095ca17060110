package config

import (
	"os"
	"path/filepath"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/arthur-debert/flatback/pkg/logging"
)

// YAMLConfigName and JSONConfigName are the config file names probed inside
// the config directory, in order of preference.
const (
	YAMLConfigName = "config.yaml"
	JSONConfigName = "config.json"
)

// strategy pairs a config file name with its decoding strategy. Which one is
// used for a run is decided here, by file presence, and recorded in
// Config.Format so nothing downstream has to probe the environment again.
type strategy struct {
	name   string
	parser koanf.Parser
	format Format
}

// Load resolves the configuration for one run. It loads built-in defaults,
// then merges config.yaml from dir if it exists, else config.json, else
// leaves the defaults untouched. Relative source/backup paths are made
// absolute relative to the current working directory.
func Load(dir string) (Config, error) {
	logger := logging.GetLogger("config.loader")

	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"source_folder":   defaults.SourceDir,
		"backup_folder":   defaults.BackupDir,
		"file_extensions": defaults.Extensions,
		"ignore_files":    defaults.IgnoreFiles,
		"ignore_patterns": defaults.IgnorePatterns,
		"max_zips":        defaults.MaxArchives,
	}, "."), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default configuration")
	}

	strategies := []strategy{
		{name: YAMLConfigName, parser: kyaml.Parser(), format: FormatYAML},
		{name: JSONConfigName, parser: kjson.Parser(), format: FormatJSON},
	}

	format := FormatDefaults
	for _, s := range strategies {
		path := filepath.Join(dir, s.name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), s.parser); err != nil {
			return Config{}, errors.Wrap(err, errors.ErrConfigParse, "failed to parse config file").
				WithDetail("path", path)
		}
		format = s.format
		logger.Debug().Str("path", path).Str("format", string(format)).Msg("Loaded config file")
		break
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	cfg.Format = format

	if abs, err := filepath.Abs(cfg.SourceDir); err == nil {
		cfg.SourceDir = abs
	}
	if abs, err := filepath.Abs(cfg.BackupDir); err == nil {
		cfg.BackupDir = abs
	}

	logger.Debug().
		Str("source", cfg.SourceDir).
		Str("backup", cfg.BackupDir).
		Strs("extensions", cfg.Extensions).
		Int("maxArchives", cfg.MaxArchives).
		Msg("Configuration resolved")

	return cfg, nil
}
