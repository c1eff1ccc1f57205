package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tfgql-io/tfgql/internal/jsonutil"
	"github.com/tfgql-io/tfgql/internal/tfstate"
)

var diffCmd = &cobra.Command{
	Use:   "diff <state_a> <state_b>",
	Short: "Semantically compare two state files",
	Long: `Compares two state files resource by resource, ignoring JSON field
order. Intended for verifying that a migrated state is semantically identical
to its source apart from the rewritten variable fields.

Exits 1 when the states differ.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	docA, err := tfstate.Load(args[0])
	if err != nil {
		return err
	}
	docB, err := tfstate.Load(args[1])
	if err != nil {
		return err
	}

	changes := diffDocuments(out, docA, docB)
	if changes == 0 {
		fmt.Fprintln(out, "States are semantically identical.")
		return nil
	}
	return fmt.Errorf("states differ in %d place(s)", changes)
}

// diffDocuments prints per-resource attribute differences and returns the
// number of differing entries. Resources are matched by address; instances by
// position.
func diffDocuments(out io.Writer, a, b tfstate.Document) int {
	byAddrA := resourcesByAddress(a)
	byAddrB := resourcesByAddress(b)

	changes := 0

	for _, addr := range jsonutil.SortedKeys(byAddrA) {
		resB, ok := byAddrB[addr]
		if !ok {
			fmt.Fprintf(out, "%s- %s%s\n", colorize("\033[31m"), addr, colorize("\033[0m"))
			changes++
			continue
		}
		changes += diffResource(out, addr, byAddrA[addr], resB)
	}

	for _, addr := range jsonutil.SortedKeys(byAddrB) {
		if _, ok := byAddrA[addr]; !ok {
			fmt.Fprintf(out, "%s+ %s%s\n", colorize("\033[32m"), addr, colorize("\033[0m"))
			changes++
		}
	}
	return changes
}

func diffResource(out io.Writer, addr string, resA, resB any) int {
	instA := tfstate.Instances(resA)
	instB := tfstate.Instances(resB)

	changes := 0
	if len(instA) != len(instB) {
		fmt.Fprintf(out, "%s~ %s: instance count %d -> %d%s\n",
			colorize("\033[33m"), addr, len(instA), len(instB), colorize("\033[0m"))
		changes++
	}

	n := min(len(instA), len(instB))
	for i := 0; i < n; i++ {
		attrsA := tfstate.Attributes(instA[i])
		attrsB := tfstate.Attributes(instB[i])

		changed := jsonutil.ChangedFields(attrsB, attrsA)
		for _, key := range jsonutil.SortedKeys(changed) {
			before, inA := attrsA[key]
			after, inB := attrsB[key]

			switch {
			case !inA:
				fmt.Fprintf(out, "%s+ %s: %s = %s%s\n",
					colorize("\033[32m"), addr, key, formatValue(after), colorize("\033[0m"))
			case !inB:
				fmt.Fprintf(out, "%s- %s: %s%s\n",
					colorize("\033[31m"), addr, key, colorize("\033[0m"))
			default:
				fmt.Fprintf(out, "%s~ %s: %s = %s -> %s%s\n",
					colorize("\033[33m"), addr, key, formatValue(before), formatValue(after), colorize("\033[0m"))
			}
			changes++
		}
	}
	return changes
}

func resourcesByAddress(doc tfstate.Document) map[string]any {
	byAddr := make(map[string]any)
	for _, res := range doc.Resources() {
		byAddr[tfstate.Address(res)] = res
	}
	return byAddr
}
