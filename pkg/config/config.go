// Package config loads depnode settings from a YAML file, an optional .env file
// and DEPNODE_* environment variables, in increasing order of precedence.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DEPNODE_"

// Config holds generator, pipeline and storage settings
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Storage   StorageConfig   `yaml:"storage"`
	LogLevel  string          `yaml:"log_level"`
}

// GeneratorConfig names the annotation types and feature read and written by a run
type GeneratorConfig struct {
	TokenType           string `yaml:"token_type"`
	DependenciesFeature string `yaml:"dependencies_feature"`
	OutputType          string `yaml:"output_type"`
}

// PipelineConfig controls batch processing. An empty Format picks the input format from each file's extension.
type PipelineConfig struct {
	BatchSize int    `yaml:"batch_size"`
	Format    string `yaml:"format,omitempty"`
}

// StorageConfig selects where documents and nodes are written
type StorageConfig struct {
	OutputDir  string      `yaml:"output_dir"`
	SQLitePath string      `yaml:"sqlite_path,omitempty"`
	Neo4j      Neo4jConfig `yaml:"neo4j,omitempty"`
}

// Neo4jConfig holds the graph database connection. An empty URI disables it.
type Neo4jConfig struct {
	URI      string `yaml:"uri,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			TokenType:           annotation.TokenType,
			DependenciesFeature: annotation.DependenciesFeature,
			OutputType:          depnode.OutputType,
		},
		Pipeline: PipelineConfig{
			BatchSize: 10,
		},
		Storage: StorageConfig{
			OutputDir: "output",
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults, then loads envFile and applies
// environment overrides. Either path may be empty; a missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load env file %s", envFile)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from DEPNODE_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TOKEN_TYPE":           &c.Generator.TokenType,
		"DEPENDENCIES_FEATURE": &c.Generator.DependenciesFeature,
		"OUTPUT_TYPE":          &c.Generator.OutputType,
		"FORMAT":               &c.Pipeline.Format,
		"OUTPUT_DIR":           &c.Storage.OutputDir,
		"SQLITE_PATH":          &c.Storage.SQLitePath,
		"NEO4J_URI":            &c.Storage.Neo4j.URI,
		"NEO4J_USERNAME":       &c.Storage.Neo4j.Username,
		"NEO4J_PASSWORD":       &c.Storage.Neo4j.Password,
		"LOG_LEVEL":            &c.LogLevel,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = v
		}
	}

	if v, ok := lookup(EnvPrefix + "BATCH_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%sBATCH_SIZE", EnvPrefix)
		}
		c.Pipeline.BatchSize = n
	}
	return nil
}

// Validate rejects settings no run could use
func (c *Config) Validate() error {
	if c.Generator.TokenType == "" || c.Generator.DependenciesFeature == "" || c.Generator.OutputType == "" {
		return errors.New("generator token_type, dependencies_feature and output_type must be set")
	}
	if c.Pipeline.BatchSize <= 0 {
		return errors.Errorf("pipeline batch_size must be positive, got %d", c.Pipeline.BatchSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

// GeneratorOptions converts the generator settings into depnode options
func (c *Config) GeneratorOptions(logger *logrus.Logger) []depnode.Option {
	opts := []depnode.Option{
		depnode.WithTokenType(c.Generator.TokenType),
		depnode.WithDependenciesFeature(c.Generator.DependenciesFeature),
		depnode.WithOutputType(c.Generator.OutputType),
	}
	if logger != nil {
		opts = append(opts, depnode.WithLogger(logger))
	}
	return opts
}
