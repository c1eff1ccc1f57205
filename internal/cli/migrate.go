package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfgql-io/tfgql/internal/backend"
	"github.com/tfgql-io/tfgql/internal/logging"
	"github.com/tfgql-io/tfgql/internal/migrate"
	"github.com/tfgql-io/tfgql/internal/tfstate"
)

var (
	migrateResourceType string
	migrateFields       []string
	migrateDryRun       bool
	migratePush         bool
	migrateBackend      string
	migrateBackendConf  []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <state_file> [output_file]",
	Short: "Migrate string-encoded variable fields to native values",
	Long: `Rewrites the JSON-encoded string variable fields on graphql_mutation
resources (mutation_variables, read_query_variables, delete_mutation_variables)
into native structured values.

The input state is read, transformed in memory, and written to the output
file; the input is never modified. The output defaults to <state_file>.migrated.
A field whose string value is not valid JSON is left untouched with a warning;
this never fails the run.

With --backend s3 the input state is fetched from S3 instead of local disk:

  tfgql migrate terraform.tfstate
  tfgql migrate terraform.tfstate migrated.tfstate
  tfgql migrate --backend s3 --backend-config bucket=my-states \
      --backend-config key=prod/terraform.tfstate remote.tfstate.migrated`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateResourceType, "resource-type", "", "Resource type to migrate (default: graphql_mutation)")
	migrateCmd.Flags().StringArrayVar(&migrateFields, "field", nil, "Attribute field to migrate (repeatable; default: the three variable fields)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Report what would be migrated without writing anything")
	migrateCmd.Flags().BoolVar(&migratePush, "push", false, "Write the migrated state back through the backend instead of to a local file")
	migrateCmd.Flags().StringVar(&migrateBackend, "backend", "", "State backend to read from: local (default) or s3")
	migrateCmd.Flags().StringArrayVar(&migrateBackendConf, "backend-config", nil, "Backend setting as key=value (repeatable)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	input := args[0]
	output := input + ".migrated"
	if len(args) > 1 {
		output = args[1]
	}

	src, err := sourceBackend(input)
	if err != nil {
		return err
	}

	raw, err := src.Read(cmd.Context())
	if err != nil {
		return err
	}

	doc, err := tfstate.LoadBytes(raw)
	if err != nil {
		return err
	}

	m := newMigrator(out)

	if migrateDryRun {
		result := m.Scan(doc)
		renderScan(out, result)
		return nil
	}

	fmt.Fprintf(out, "Migrating state file: %s\n", input)
	result := m.Run(doc)
	logging.Debug("migration pass complete", "migrated", result.Migrated, "warnings", result.Warned)

	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	if migratePush {
		if err := writeLocked(cmd, src, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Migration completed successfully!\n")
		fmt.Fprintf(out, "✓ Migrated state pushed to backend\n")
		return nil
	}

	dst := backend.NewLocal(output)
	if err := writeLocked(cmd, dst, data); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Migration completed successfully!\n")
	fmt.Fprintf(out, "✓ Migrated state saved to: %s\n", output)
	fmt.Fprintf(out, "\nTo apply the migrated state:\n")
	fmt.Fprintf(out, "  terraform state push %s\n", output)
	return nil
}

// sourceBackend builds the backend the input state is read from, from the
// --backend flags falling back to the config file.
func sourceBackend(path string) (backend.Backend, error) {
	bcfg := &backend.Config{
		Type:   cfg.Backend.Type,
		Config: cfg.Backend.Config,
	}
	if migrateBackend != "" {
		bcfg.Type = migrateBackend
		bcfg.Config = map[string]string{}
	}
	if len(migrateBackendConf) > 0 {
		if bcfg.Config == nil {
			bcfg.Config = map[string]string{}
		}
		for _, kv := range migrateBackendConf {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --backend-config %q, expected key=value", kv)
			}
			bcfg.Config[key] = value
		}
	}
	return backend.New(bcfg, path)
}

// newMigrator builds a Migrator from config with flag overrides applied.
func newMigrator(out io.Writer) *migrate.Migrator {
	m := migrate.New(out)
	if cfg.Migrate.ResourceType != "" {
		m.ResourceType = cfg.Migrate.ResourceType
	}
	if len(cfg.Migrate.Fields) > 0 {
		m.Fields = cfg.Migrate.Fields
	}
	if migrateResourceType != "" {
		m.ResourceType = migrateResourceType
	}
	if len(migrateFields) > 0 {
		m.Fields = migrateFields
	}
	return m
}

// writeLocked writes through a backend while holding its lock.
func writeLocked(cmd *cobra.Command, b backend.Backend, data []byte) error {
	if err := b.Lock(); err != nil {
		return err
	}
	defer b.Unlock()
	return b.Write(cmd.Context(), data)
}
