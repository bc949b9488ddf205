package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// ConfigFileName is looked up in the directory passed to LoadConfig.
const ConfigFileName = ".esqlscan"

// EnvPrefix prefixes every environment override, e.g. ESQLSCAN_PARALLELISM.
const EnvPrefix = "ESQLSCAN"

// DefaultConfig returns the default configuration values
func DefaultConfig() *Config {
	return &Config{
		ConnectionString: "",
		SearchPath:       ".",
		Patterns:         append([]string(nil), discovery.DefaultPatterns...),
		Timeout:          30 * time.Second,
		Debounce:         500 * time.Millisecond,
		Parallelism:      1,
		AnnotationsFile:  ".esqlscan/annotations.json",
		Verbose:          false,
	}
}

// LoadConfig loads configuration with the following priority (highest to lowest):
// 1. Environment variables (ESQLSCAN_*)
// 2. Config file (.esqlscan.yaml in dir)
// 3. Default values
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// ESQLSCAN_PATTERNS="a b" arrives as one string
	cfg.Patterns = splitList(cfg.Patterns)
	cfg.Ignore = splitList(cfg.Ignore)
	cfg.SchemaFiles = splitList(cfg.SchemaFiles)

	if cfg.ConnectionString == "" {
		cfg.ConnectionString = connectionFromPGEnv()
	}

	return cfg, nil
}

// setDefaults configures viper with default values. Every key gets a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("connection", d.ConnectionString)
	v.SetDefault("schema_files", []string{})
	v.SetDefault("search_path", d.SearchPath)
	v.SetDefault("patterns", d.Patterns)
	v.SetDefault("ignore", []string{})
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("annotations_file", d.AnnotationsFile)
	v.SetDefault("verbose", d.Verbose)
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, f)
		}
	}
	return out
}

// connectionFromPGEnv builds a key=value connection string from the libpq
// PG* variables, or returns "" when none is set.
func connectionFromPGEnv() string {
	var parts []string
	for _, kv := range [][2]string{
		{"host", "PGHOST"},
		{"port", "PGPORT"},
		{"user", "PGUSER"},
		{"password", "PGPASSWORD"},
		{"dbname", "PGDATABASE"},
		{"sslmode", "PGSSLMODE"},
	} {
		if val := os.Getenv(kv[1]); val != "" {
			parts = append(parts, kv[0]+"="+val)
		}
	}
	return strings.Join(parts, " ")
}

// Overrides carries command-line flag values. Zero values leave the
// configuration untouched.
type Overrides struct {
	Connection      string
	SchemaFiles     []string
	Patterns        []string
	Ignore          []string
	Timeout         time.Duration
	Debounce        time.Duration
	Parallel        int
	AnnotationsFile string
	Verbose         bool
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, o Overrides) {
	if o.Connection != "" {
		c.ConnectionString = o.Connection
	}
	if len(o.SchemaFiles) > 0 {
		c.SchemaFiles = o.SchemaFiles
	}
	if len(o.Patterns) > 0 {
		c.Patterns = o.Patterns
	}
	if len(o.Ignore) > 0 {
		c.Ignore = append(c.Ignore, o.Ignore...)
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.Debounce != 0 {
		c.Debounce = o.Debounce
	}
	if o.Parallel != 0 {
		c.Parallelism = o.Parallel
	}
	if o.AnnotationsFile != "" {
		c.AnnotationsFile = o.AnnotationsFile
	}
	c.Verbose = c.Verbose || o.Verbose
}

// ResolveSearchPath makes the search path absolute. A relative
// AnnotationsFile stays relative to the working directory.
func ResolveSearchPath(c *Config, arg string) error {
	if arg != "" {
		c.SearchPath = arg
	}
	abs, err := filepath.Abs(c.SearchPath)
	if err != nil {
		return fmt.Errorf("failed to resolve search path: %w", err)
	}
	c.SearchPath = abs
	return nil
}
