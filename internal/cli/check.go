package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tfgql-io/tfgql/internal/graphql"
	"github.com/tfgql-io/tfgql/internal/tfstate"
)

var checkCmd = &cobra.Command{
	Use:   "check <state_file>",
	Short: "Check whether a state still needs migration",
	Long: `Scans a state file without modifying it and reports, per candidate
field, whether it is still string-encoded, already structured, or holds an
invalid JSON string. Also surface-checks the GraphQL operation attributes
(read_query, create_mutation, update_mutation, delete_mutation).

Exits 1 when any field still needs migration or cannot be migrated, so the
command works as a CI gate.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	doc, err := tfstate.Load(args[0])
	if err != nil {
		return err
	}

	m := newMigrator(out)
	result := m.Scan(doc)
	renderScan(out, result)

	opIssues := checkOperations(out, doc, m.ResourceType)

	// In a scan, "migrated" records are fields that would be migrated.
	pending := result.Migrated
	invalid := result.Warned

	if pending == 0 && invalid == 0 && opIssues == 0 {
		fmt.Fprintln(out, "✓ State is fully migrated")
		return nil
	}
	if invalid > 0 || opIssues > 0 {
		return fmt.Errorf("%d field(s) cannot be migrated automatically", invalid+opIssues)
	}
	return fmt.Errorf("%d field(s) still need migration; run 'tfgql migrate'", pending)
}

// checkOperations validates the GraphQL operation strings on every eligible
// resource and prints one line per problem. Returns the problem count.
func checkOperations(out io.Writer, doc tfstate.Document, resourceType string) int {
	issues := 0
	for _, resource := range doc.Resources() {
		if tfstate.ResourceType(resource) != resourceType {
			continue
		}
		addr := tfstate.Address(resource)

		for _, instance := range tfstate.Instances(resource) {
			attrs := tfstate.Attributes(instance)
			for _, attr := range graphql.OperationAttrs {
				op, ok := attrs[attr.Name].(string)
				if !ok || op == "" {
					continue
				}
				if err := graphql.ValidateOperation(op, attr.Role); err != nil {
					fmt.Fprintf(out, "⚠ %s: %s: %v\n", addr, attr.Name, err)
					issues++
				}
			}
		}
	}
	return issues
}
