package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfgql-io/tfgql/internal/migrate"
	"github.com/tfgql-io/tfgql/internal/tfstate"
)

const legacyState = `{
	"version": 4,
	"terraform_version": "1.5.7",
	"serial": 3,
	"lineage": "abc",
	"resources": [
		{
			"mode": "managed",
			"type": "graphql_mutation",
			"name": "api_user",
			"instances": [{
				"attributes": {
					"id": "42",
					"create_mutation": "mutation CreateUser($input: UserInput!) { createUser(input: $input) { id } }",
					"read_query": "query GetUser($id: ID!) { user(id: $id) { id name } }",
					"mutation_variables": "{\"input\":{\"name\":\"alice\"}}",
					"read_query_variables": "{\"id\":\"42\"}"
				}
			}]
		},
		{
			"mode": "managed",
			"type": "aws_s3_bucket",
			"name": "logs",
			"instances": [{"attributes": {"bucket": "logs"}}]
		}
	]
}`

// chdir changes the working directory for the test, restoring it on cleanup.
// Equivalent to t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// runCLI executes the root command with fresh flag state.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	migrateResourceType = ""
	migrateFields = nil
	migrateDryRun = false
	migratePush = false
	migrateBackend = ""
	migrateBackendConf = nil
	showJSON = false
	noColor = true

	// Commands flip SilenceUsage once their args validate; undo between runs.
	for _, c := range rootCmd.Commands() {
		c.SilenceUsage = false
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeState(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "terraform.tfstate")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, legacyState)

	out, err := runCLI(t, "migrate", statePath)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Migrated mutation_variables for resource api_user")
	assert.Contains(t, out, "✓ Migrated read_query_variables for resource api_user")
	assert.Contains(t, out, "✓ Migration completed successfully!")
	assert.Contains(t, out, "terraform state push "+statePath+".migrated")

	doc, err := tfstate.Load(statePath + ".migrated")
	require.NoError(t, err)

	attrs := tfstate.Attributes(tfstate.Instances(doc.Resources()[0])[0])
	assert.Equal(t, map[string]any{
		"input": map[string]any{"name": "alice"},
	}, attrs["mutation_variables"])
	assert.Equal(t, map[string]any{"id": "42"}, attrs["read_query_variables"])

	// Untouched resources survive byte-for-byte semantically.
	other := tfstate.Attributes(tfstate.Instances(doc.Resources()[1])[0])
	assert.Equal(t, map[string]any{"bucket": "logs"}, other)

	// The input file is never modified.
	original, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.JSONEq(t, legacyState, string(original))
}

func TestMigrateCommand_ExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, legacyState)
	outPath := filepath.Join(dir, "migrated.tfstate")

	out, err := runCLI(t, "migrate", statePath, outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Migrated state saved to: "+outPath)

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestMigrateCommand_MissingArg(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runCLI(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestMigrateCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := runCLI(t, "migrate", filepath.Join(dir, "nope.tfstate"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, statErr := os.Stat(filepath.Join(dir, "nope.tfstate.migrated"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMigrateCommand_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, `{"resources": [`)

	_, err := runCLI(t, "migrate", statePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestMigrateCommand_InvalidFieldWarnsAndSucceeds(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, `{
		"resources": [{
			"type": "graphql_mutation",
			"name": "r1",
			"instances": [{"attributes": {"mutation_variables": "not json"}}]
		}]
	}`)

	out, err := runCLI(t, "migrate", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "⚠ Warning: Could not parse mutation_variables for resource r1")
	assert.Contains(t, out, "✓ Migration completed successfully!")

	doc, err := tfstate.Load(statePath + ".migrated")
	require.NoError(t, err)
	attrs := tfstate.Attributes(tfstate.Instances(doc.Resources()[0])[0])
	assert.Equal(t, "not json", attrs["mutation_variables"])
}

func TestMigrateCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, legacyState)

	out, err := runCLI(t, "migrate", "--dry-run", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "would migrate")

	_, statErr := os.Stat(statePath + ".migrated")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, legacyState)

	out, err := runCLI(t, "check", statePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still need migration")
	assert.Contains(t, out, "mutation_variables is string-encoded")

	// After migrating, check passes.
	_, err = runCLI(t, "migrate", statePath)
	require.NoError(t, err)

	out, err = runCLI(t, "check", statePath+".migrated")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ State is fully migrated")
}

func TestCheckCommand_InvalidOperation(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, `{
		"resources": [{
			"type": "graphql_mutation",
			"name": "r1",
			"instances": [{"attributes": {
				"create_mutation": "query { user { id } }",
				"mutation_variables": {"already": true}
			}}]
		}]
	}`)

	out, err := runCLI(t, "check", statePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be migrated")
	assert.Contains(t, out, "create_mutation")
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, legacyState)

	_, err := runCLI(t, "migrate", statePath)
	require.NoError(t, err)

	// The migrated state differs exactly in the rewritten fields.
	out, err := runCLI(t, "diff", statePath, statePath+".migrated")
	require.Error(t, err)
	assert.Contains(t, out, "mutation_variables")

	// A state diffed against itself is identical.
	out, err = runCLI(t, "diff", statePath, statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "semantically identical")
}

func TestShowCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	statePath := writeState(t, dir, legacyState)

	out, err := runCLI(t, "show", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "State: version=4")
	assert.Contains(t, out, "# graphql_mutation.api_user")
	assert.Contains(t, out, "mutation_variables = string-encoded")

	out, err = runCLI(t, "show", "--json", statePath)
	require.NoError(t, err)

	var summary tfstate.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 4, summary.Version)
	assert.Equal(t, 2, summary.Resources)
}

func TestRenderScan(t *testing.T) {
	var out bytes.Buffer
	noColor = true

	renderScan(&out, &migrate.Result{
		Records: []migrate.FieldRecord{
			{Resource: "r1", Field: "mutation_variables", Outcome: migrate.OutcomeMigrated},
			{Resource: "r1", Field: "read_query_variables", Outcome: migrate.OutcomeInvalid},
			{Resource: "r2", Field: "mutation_variables", Outcome: migrate.OutcomeStructured},
		},
		Migrated: 1,
		Warned:   1,
	})

	assert.Contains(t, out.String(), "would migrate")
	assert.Contains(t, out.String(), "cannot migrate")
	assert.Contains(t, out.String(), "already migrated")
	assert.Contains(t, out.String(), "Scan summary: 1 to migrate, 1 invalid, 1 already migrated")
}

func TestColorize(t *testing.T) {
	noColor = false
	assert.Equal(t, "\033[31m", colorize("\033[31m"))

	noColor = true
	assert.Equal(t, "", colorize("\033[31m"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", formatValue(nil))
	assert.Equal(t, `"x"`, formatValue("x"))
	assert.Equal(t, "true", formatValue(true))
}
