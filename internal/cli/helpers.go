package cli

import (
	"fmt"
	"io"

	"github.com/tfgql-io/tfgql/internal/migrate"
)

// colorize returns the ANSI code unless --no-color is set.
func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

// formatValue returns a compact human-readable representation of a value.
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// renderScan prints a scan result, one line per candidate field.
func renderScan(out io.Writer, result *migrate.Result) {
	if len(result.Records) == 0 {
		fmt.Fprintln(out, "No candidate fields found.")
		return
	}

	for _, rec := range result.Records {
		switch rec.Outcome {
		case migrate.OutcomeMigrated:
			fmt.Fprintf(out, "%s~ %s: %s is string-encoded, would migrate%s\n",
				colorize("\033[33m"), rec.Resource, rec.Field, colorize("\033[0m"))
		case migrate.OutcomeInvalid:
			fmt.Fprintf(out, "%s⚠ %s: %s is not valid JSON, cannot migrate%s\n",
				colorize("\033[31m"), rec.Resource, rec.Field, colorize("\033[0m"))
		case migrate.OutcomeStructured:
			fmt.Fprintf(out, "  %s: %s already migrated\n", rec.Resource, rec.Field)
		}
	}

	fmt.Fprintf(out, "\nScan summary: %d to migrate, %d invalid, %d already migrated\n",
		result.Migrated, result.Warned, len(result.Records)-result.Migrated-result.Warned)
}
