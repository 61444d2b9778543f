package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, annotation.TokenType, cfg.Generator.TokenType)
	assert.Equal(t, annotation.DependenciesFeature, cfg.Generator.DependenciesFeature)
	assert.Equal(t, depnode.OutputType, cfg.Generator.OutputType)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "depnode.yaml", `
generator:
  token_type: Word
pipeline:
  batch_size: 4
storage:
  sqlite_path: nodes.db
log_level: debug
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Word", cfg.Generator.TokenType)
	assert.Equal(t, annotation.DependenciesFeature, cfg.Generator.DependenciesFeature)
	assert.Equal(t, 4, cfg.Pipeline.BatchSize)
	assert.Equal(t, "nodes.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "output", cfg.Storage.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvFileOverridesYAML(t *testing.T) {
	path := writeFile(t, "depnode.yaml", "pipeline:\n  batch_size: 4\n")
	envFile := writeFile(t, ".env", "DEPNODE_BATCH_SIZE=7\nDEPNODE_OUTPUT_TYPE=DepNode\n")
	t.Cleanup(func() {
		os.Unsetenv("DEPNODE_BATCH_SIZE")
		os.Unsetenv("DEPNODE_OUTPUT_TYPE")
	})

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.BatchSize)
	assert.Equal(t, "DepNode", cfg.Generator.OutputType)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "pipeline: [oops"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "zero.yaml", "pipeline:\n  batch_size: 0\n"), "")
	assert.Error(t, err)

	_, err = Load("", filepath.Join(t.TempDir(), "no.env"))
	assert.NoError(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DEPNODE_TOKEN_TYPE": "Word",
		"DEPNODE_NEO4J_URI":  "bolt://localhost:7687",
		"DEPNODE_LOG_LEVEL":  "warn",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "Word", cfg.Generator.TokenType)
	assert.Equal(t, "bolt://localhost:7687", cfg.Storage.Neo4j.URI)
	assert.Equal(t, "warn", cfg.LogLevel)

	env["DEPNODE_BATCH_SIZE"] = "many"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestGeneratorOptions(t *testing.T) {
	cfg := Default()
	cfg.Generator.TokenType = "Word"

	doc := annotation.NewDocument("d", "hi")
	require.NoError(t, doc.Annotations.Add(1, 0, 2, "Word", nil))

	result, err := depnode.NewGenerator(cfg.GeneratorOptions(nil)...).Execute(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NodesEmitted)
}
