package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultCompilerPath  = "javac"
	DefaultSourcePattern = "**/*.java"
	DefaultLogLevel      = "info"
)

// Config holds the tool-level settings for jbuild. Per-invocation
// parameters arrive with each request; these settings describe the
// machine the worker runs on.
type Config struct {
	// Path to the compiler binary
	CompilerPath string

	// Extra compiler flags appended to every invocation
	JavacOpts []string

	// Glob selecting compilable sources inside source jars
	SourcePattern string

	// Worker log level (debug, info, warn, error)
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		CompilerPath:  viper.GetString("compiler_path"),
		JavacOpts:     viper.GetStringSlice("javacopts"),
		SourcePattern: viper.GetString("source_pattern"),
		LogLevel:      viper.GetString("log_level"),
	}

	if cfg.CompilerPath == "" {
		cfg.CompilerPath = DefaultCompilerPath
	}

	if cfg.SourcePattern == "" {
		cfg.SourcePattern = DefaultSourcePattern
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
