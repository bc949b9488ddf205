package types

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// Config holds runtime configuration combining flags, environment variables, and defaults
type Config struct {
	// PostgreSQL connection, only needed by check
	ConnectionString string   `yaml:"connection" mapstructure:"connection"`
	SchemaFiles      []string `yaml:"schema_files" mapstructure:"schema_files"` // DDL applied to a scratch database before checking

	// Discovery
	SearchPath string   `yaml:"search_path" mapstructure:"search_path"` // Root path for file discovery
	Patterns   []string `yaml:"patterns" mapstructure:"patterns"`       // Glob patterns selecting embedded-SQL sources
	Ignore     []string `yaml:"ignore" mapstructure:"ignore"`           // Glob patterns excluding files

	// Execution
	Parallelism int           `yaml:"parallelism" mapstructure:"parallelism"` // Max concurrent workers (1 = sequential)
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`         // Per-statement timeout when checking against the database
	Debounce    time.Duration `yaml:"debounce" mapstructure:"debounce"`       // Quiet period before watch re-scans

	// Output
	AnnotationsFile string `yaml:"annotations_file" mapstructure:"annotations_file"` // Annotation data output path
	Verbose         bool   `yaml:"verbose" mapstructure:"verbose"`                   // Enable debug logging
}

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for values no command can work with
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return &ConfigError{Field: "parallelism", Message: fmt.Sprintf("must be at least 1, got %d", c.Parallelism)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Message: fmt.Sprintf("must be positive, got %v", c.Timeout)}
	}
	if c.Debounce < 0 {
		return &ConfigError{Field: "debounce", Message: fmt.Sprintf("must not be negative, got %v", c.Debounce)}
	}
	if c.AnnotationsFile == "" {
		return &ConfigError{Field: "annotations_file", Message: "must not be empty"}
	}
	for _, p := range append(append([]string{}, c.Patterns...), c.Ignore...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			return &ConfigError{Field: "patterns", Message: fmt.Sprintf("%q is not a valid glob: %v", p, err)}
		}
	}
	return nil
}
