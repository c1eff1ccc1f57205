package migrate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tfgql-io/tfgql/internal/logging"
	"github.com/tfgql-io/tfgql/internal/tfstate"
)

// DefaultResourceType is the resource type eligible for migration.
const DefaultResourceType = "graphql_mutation"

// DefaultFields are the attribute fields that moved from JSON-encoded strings
// to native structured values, in processing order.
var DefaultFields = []string{
	"mutation_variables",
	"read_query_variables",
	"delete_mutation_variables",
}

// Outcome classifies what happened (or would happen) to a candidate field.
type Outcome string

const (
	// OutcomeMigrated: the field held a valid JSON string and was decoded in place.
	OutcomeMigrated Outcome = "migrated"
	// OutcomeInvalid: the field held a string that is not valid JSON; left as-is.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeStructured: the field already holds a non-string value.
	OutcomeStructured Outcome = "structured"
)

// FieldRecord is one candidate field's result.
type FieldRecord struct {
	Resource string
	Field    string
	Outcome  Outcome
}

// Result aggregates a migration or scan pass.
type Result struct {
	Records  []FieldRecord
	Migrated int
	Warned   int
}

// Migrator rewrites string-encoded JSON attribute fields into native values.
// The zero value is not usable; construct with New.
type Migrator struct {
	// ResourceType limits the pass to resources of this type.
	ResourceType string
	// Fields are the attribute fields to migrate, in order.
	Fields []string

	out io.Writer
}

// New returns a Migrator with the graphql_mutation defaults, writing progress
// diagnostics to out.
func New(out io.Writer) *Migrator {
	return &Migrator{
		ResourceType: DefaultResourceType,
		Fields:       append([]string(nil), DefaultFields...),
		out:          out,
	}
}

// Run performs a single in-place pass over the document. String fields that
// decode as JSON are replaced with the decoded value; strings that fail to
// decode are left untouched and produce a warning. Non-string fields are
// skipped, which makes the pass idempotent. Run never fails: a bad field is a
// per-field condition, not an error.
func (m *Migrator) Run(doc tfstate.Document) *Result {
	return m.pass(doc, true)
}

// Scan classifies every candidate field without mutating the document or
// emitting diagnostics. Unlike Run it also records already-structured fields,
// so callers can tell "nothing to do" apart from "never present".
func (m *Migrator) Scan(doc tfstate.Document) *Result {
	return m.pass(doc, false)
}

func (m *Migrator) pass(doc tfstate.Document, apply bool) *Result {
	result := &Result{}

	for _, resource := range doc.Resources() {
		if tfstate.ResourceType(resource) != m.ResourceType {
			continue
		}
		name := tfstate.ResourceName(resource, "unknown")

		for _, instance := range tfstate.Instances(resource) {
			attrs := tfstate.Attributes(instance)
			if attrs == nil {
				continue
			}
			for _, field := range m.Fields {
				m.visitField(result, attrs, name, field, apply)
			}
		}
	}
	return result
}

func (m *Migrator) visitField(result *Result, attrs map[string]any, resource, field string, apply bool) {
	raw, present := attrs[field]
	if !present {
		return
	}

	str, isString := raw.(string)
	if !isString {
		if !apply {
			result.Records = append(result.Records, FieldRecord{
				Resource: resource, Field: field, Outcome: OutcomeStructured,
			})
		}
		return
	}

	decoded, err := DecodeJSON(str)
	if err != nil {
		result.Warned++
		result.Records = append(result.Records, FieldRecord{
			Resource: resource, Field: field, Outcome: OutcomeInvalid,
		})
		if apply {
			fmt.Fprintf(m.out, "⚠ Warning: Could not parse %s for resource %s\n", field, resource)
			logging.Debug("field left unmigrated", "resource", resource, "field", field, "error", err)
		}
		return
	}

	result.Migrated++
	result.Records = append(result.Records, FieldRecord{
		Resource: resource, Field: field, Outcome: OutcomeMigrated,
	})
	if apply {
		attrs[field] = decoded
		fmt.Fprintf(m.out, "✓ Migrated %s for resource %s\n", field, resource)
	}
}

// DecodeJSON decodes s as a single complete JSON value, preserving numbers as
// json.Number. Trailing content after the first value is rejected.
func DecodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing content after JSON value")
	}
	return v, nil
}
