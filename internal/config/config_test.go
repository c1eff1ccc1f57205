package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the test, restoring it on cleanup.
// Equivalent to t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "graphql_mutation", cfg.Migrate.ResourceType)
	assert.Equal(t, []string{
		"mutation_variables",
		"read_query_variables",
		"delete_mutation_variables",
	}, cfg.Migrate.Fields)
	assert.Equal(t, "local", cfg.Backend.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tfgql.yaml")
	content := `
migrate:
  resource_type: graphql_query
  fields:
    - query_variables
backend:
  type: s3
  config:
    bucket: my-states
    key: prod/terraform.tfstate
log:
  level: debug
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "graphql_query", cfg.Migrate.ResourceType)
	assert.Equal(t, []string{"query_variables"}, cfg.Migrate.Fields)
	assert.Equal(t, "s3", cfg.Backend.Type)
	assert.Equal(t, "my-states", cfg.Backend.Config["bucket"])
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tfgql.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(":\n  - not yaml"), 0644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}
