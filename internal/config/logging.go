package config

import (
	"os"
	"path/filepath"

	"github.com/rshade/budgettree/internal/logging"
)

// ToLoggingConfig converts the YAML logging section into a logging.Config.
// A configured file switches the output to "file"; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns a copy of the global logging section. Callers apply
// flag overrides such as --debug on the copy.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}

// EnsureLogDir creates the directory of the configured log file.
func EnsureLogDir() error {
	file := GetGlobalConfig().Logging.File
	if file == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(file), 0o750)
}
