package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfgql-io/tfgql/internal/tfstate"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <state_file>",
	Short: "Show a summary of a state file",
	Long:  `Displays the state header and the resources it contains, with the migration status of graphql_mutation resources.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}

func runShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	doc, err := tfstate.Load(args[0])
	if err != nil {
		return err
	}

	summary := doc.Summarize()

	if showJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "State: version=%d terraform=%s serial=%d lineage=%s\n",
		summary.Version, summary.TerraformVersion, summary.Serial, summary.Lineage)
	fmt.Fprintf(out, "Resources: %d (%d instances)\n\n", summary.Resources, summary.Instances)

	m := newMigrator(out)
	for _, res := range doc.Resources() {
		fmt.Fprintf(out, "# %s\n", tfstate.Address(res))
		if tfstate.ResourceType(res) != m.ResourceType {
			fmt.Fprintln(out)
			continue
		}

		for i, inst := range tfstate.Instances(res) {
			attrs := tfstate.Attributes(inst)
			for _, field := range m.Fields {
				value, ok := attrs[field]
				if !ok {
					continue
				}
				status := "native"
				if _, isString := value.(string); isString {
					status = "string-encoded"
				}
				fmt.Fprintf(out, "  [%d] %s = %s\n", i, field, status)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
