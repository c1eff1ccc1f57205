package tfstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Document is a decoded Terraform state file. Only the
// resources/instances/attributes shape is interpreted; every other field is
// carried through to serialization untouched.
type Document map[string]any

// LoadBytes decodes a state document from raw JSON. Numbers are kept as
// json.Number so attribute values round-trip without float conversion.
func LoadBytes(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in state file: %w", err)
	}
	return doc, nil
}

// Load reads and decodes a state file from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// Marshal serializes the document with 2-space indentation, matching the
// format Terraform itself writes. Map keys serialize in sorted order.
func (d Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document to path.
func Save(path string, d Document) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

// Resources returns the document's resource list. A missing or malformed
// resources field yields an empty list.
func (d Document) Resources() []any {
	list, _ := d["resources"].([]any)
	return list
}

// Instances returns a resource's instance list, or nil if the resource is
// not the expected shape.
func Instances(resource any) []any {
	res, ok := resource.(map[string]any)
	if !ok {
		return nil
	}
	list, _ := res["instances"].([]any)
	return list
}

// Attributes returns an instance's attribute map, or nil if the instance is
// not the expected shape.
func Attributes(instance any) map[string]any {
	inst, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	attrs, _ := inst["attributes"].(map[string]any)
	return attrs
}

// ResourceType returns a resource's type, or "" when absent.
func ResourceType(resource any) string {
	res, ok := resource.(map[string]any)
	if !ok {
		return ""
	}
	typ, _ := res["type"].(string)
	return typ
}

// ResourceName returns a resource's name, or fallback when absent. Names are
// only used for diagnostics, never for addressing.
func ResourceName(resource any, fallback string) string {
	res, ok := resource.(map[string]any)
	if !ok {
		return fallback
	}
	name, _ := res["name"].(string)
	if name == "" {
		return fallback
	}
	return name
}

// Summary is a typed view of the document header fields for display.
type Summary struct {
	Version          int    `json:"version"`
	TerraformVersion string `json:"terraform_version"`
	Serial           int    `json:"serial"`
	Lineage          string `json:"lineage"`
	Resources        int    `json:"resources"`
	Instances        int    `json:"instances"`
}

// Summarize extracts the header fields and resource counts from a document.
func (d Document) Summarize() Summary {
	s := Summary{
		Version: intField(d, "version"),
		Serial:  intField(d, "serial"),
	}
	s.TerraformVersion, _ = d["terraform_version"].(string)
	s.Lineage, _ = d["lineage"].(string)

	for _, res := range d.Resources() {
		s.Resources++
		s.Instances += len(Instances(res))
	}
	return s
}

func intField(d Document, key string) int {
	num, ok := d[key].(json.Number)
	if !ok {
		return 0
	}
	n, err := num.Int64()
	if err != nil {
		return 0
	}
	return int(n)
}

// Address renders a resource's display address, e.g. "graphql_mutation.api_user".
func Address(resource any) string {
	typ := ResourceType(resource)
	name := ResourceName(resource, "unknown")
	if typ == "" {
		return name
	}
	return strings.Join([]string{typ, name}, ".")
}
