package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where LoadConfig looks when no path is given
const DefaultPath = "config/config.yaml"

// Config holds the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Executor     ExecutorConfig     `yaml:"executor"`
	Dependencies DependenciesConfig `yaml:"dependencies"`
	History      HistoryConfig      `yaml:"history"`
	LLM          LLMConfig          `yaml:"llm"`
	Logging      LoggingConfig      `yaml:"logging"`
	Reporting    ReportingConfig    `yaml:"reporting"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port       int    `yaml:"port"`
	BodyLimit  int64  `yaml:"body_limit"`
	CORSOrigin string `yaml:"cors_origin"`
}

// ExecutorConfig holds configuration for compiling and running generated tests
type ExecutorConfig struct {
	Java       string   `yaml:"java"`
	Javac      string   `yaml:"javac"`
	LibsDir    string   `yaml:"libs_dir"`
	WorkDir    string   `yaml:"work_dir"`
	Timeout    Duration `yaml:"timeout"`
	MaxWorkers int      `yaml:"max_workers"`
	MaxOutput  int      `yaml:"max_output"`
	KeepFiles  bool     `yaml:"keep_files"`
}

// DependenciesConfig holds configuration for fetching the Java test libraries
type DependenciesConfig struct {
	Repository  string   `yaml:"repository"`
	LibsDir     string   `yaml:"libs_dir"`
	Concurrency int      `yaml:"concurrency"`
	Timeout     Duration `yaml:"timeout"`
}

// HistoryConfig selects the database that records generations and runs.
// An empty driver disables history.
type HistoryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether a history database is configured
func (h HistoryConfig) Enabled() bool {
	return h.Driver != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// Duration is a time.Duration that reads "30s" style strings or plain seconds
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if secs, err := strconv.Atoi(node.Value); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, node.Value)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{LLM: defaultLLMConfig()}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads the configuration from a YAML file and environment
// variables. A missing file at the default path is not an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	config := Config{LLM: defaultLLMConfig()}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.LLM.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dsn := os.Getenv("HISTORY_DSN"); dsn != "" {
		c.History.DSN = dsn
	}
	if driver := os.Getenv("HISTORY_DRIVER"); driver != "" {
		c.History.Driver = driver
	}
	c.LLM.applyEnv()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BodyLimit == 0 {
		c.Server.BodyLimit = 10 << 20
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = "*"
	}

	if c.Executor.Java == "" {
		c.Executor.Java = "java"
	}
	if c.Executor.Javac == "" {
		c.Executor.Javac = "javac"
	}
	if c.Executor.LibsDir == "" {
		c.Executor.LibsDir = "libs"
	}
	if c.Executor.WorkDir == "" {
		c.Executor.WorkDir = filepath.Join(os.TempDir(), "api-test-generator")
	}
	if c.Executor.Timeout == 0 {
		c.Executor.Timeout = Duration(120 * time.Second)
	}
	if c.Executor.MaxWorkers == 0 {
		c.Executor.MaxWorkers = 2
	}
	if c.Executor.MaxOutput == 0 {
		c.Executor.MaxOutput = 10 << 20
	}

	if c.Dependencies.Repository == "" {
		c.Dependencies.Repository = "https://repo1.maven.org/maven2"
	}
	if c.Dependencies.LibsDir == "" {
		c.Dependencies.LibsDir = c.Executor.LibsDir
	}
	if c.Dependencies.Concurrency == 0 {
		c.Dependencies.Concurrency = 4
	}
	if c.Dependencies.Timeout == 0 {
		c.Dependencies.Timeout = Duration(60 * time.Second)
	}

	if c.History.Driver == "sqlite" && c.History.DSN == "" {
		c.History.DSN = "history.db"
	}

	c.LLM.applyDefaults()

	if c.Reporting.OutputDir == "" {
		c.Reporting.OutputDir = "generated"
	}
}
