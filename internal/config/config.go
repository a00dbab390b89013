package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/paths"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "VERIBAK"

// CurrentVersion is the only config version understood.
const CurrentVersion = 1

// Keys in the configuration file.
const (
	KeyVersion           = "version"
	KeyChecksumAlgorithm = "checksum_algorithm"
	KeyWorkers           = "workers"
	KeySkipUnreadable    = "skip_unreadable"
	KeyCompressionLevel  = "compression_level"
	KeyOutputDir         = "output_dir"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version           int    `mapstructure:"version" yaml:"version" toml:"version" json:"version"`
	ChecksumAlgorithm string `mapstructure:"checksum_algorithm" yaml:"checksum_algorithm" toml:"checksum_algorithm" json:"checksum_algorithm"`
	Workers           int    `mapstructure:"workers" yaml:"workers" toml:"workers" json:"workers"`
	SkipUnreadable    bool   `mapstructure:"skip_unreadable" yaml:"skip_unreadable" toml:"skip_unreadable" json:"skip_unreadable"`
	CompressionLevel  int    `mapstructure:"compression_level" yaml:"compression_level" toml:"compression_level" json:"compression_level"`
	OutputDir         string `mapstructure:"output_dir" yaml:"output_dir" toml:"output_dir" json:"output_dir"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Version:           CurrentVersion,
		ChecksumAlgorithm: checksum.Default,
		Workers:           runtime.NumCPU(),
		SkipUnreadable:    false,
		CompressionLevel:  -1,
		OutputDir:         "",
	}
}

// Init resets Viper and installs defaults, search paths and env handling.
// Call this once at application startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault(KeyVersion, def.Version)
	viper.SetDefault(KeyChecksumAlgorithm, def.ChecksumAlgorithm)
	viper.SetDefault(KeyWorkers, def.Workers)
	viper.SetDefault(KeySkipUnreadable, def.SkipUnreadable)
	viper.SetDefault(KeyCompressionLevel, def.CompressionLevel)
	viper.SetDefault(KeyOutputDir, def.OutputDir)
}

// Dir returns the user config directory, overridable with
// VERIBAK_CONFIG_DIR.
func Dir() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	return paths.ConfigDir()
}

// File returns the user config file inside Dir.
func File() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return paths.ConfigFile()
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file is
// an error. If path is empty, it searches the default locations and falls
// back to defaults when nothing is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(paths.ExpandHome(path))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults apply
		case path != "" && errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrNotFound), "config file not found at %s", path)
		default:
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "unmarshaling config")
	}
	cfg.ChecksumAlgorithm = checksum.Normalize(cfg.ChecksumAlgorithm)

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.Wrap(
			errors.Mark(errors.New(strings.Join(msgs, "; ")), errors.ErrInvalidConfig),
			"validating config")
	}

	return &cfg, nil
}

// FileUsed returns the config file Viper read, or "" if defaults are in use.
func FileUsed() string {
	if f := viper.ConfigFileUsed(); f != "" {
		if abs, err := filepath.Abs(f); err == nil {
			return abs
		}
		return f
	}
	return ""
}
