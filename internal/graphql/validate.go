package graphql

import (
	"fmt"
	"strings"
)

// Attribute roles for operation strings stored on graphql_mutation resources.
const (
	RoleQuery    = "query"
	RoleMutation = "mutation"
)

// OperationAttr names a resource attribute holding a GraphQL operation
// string and the role it is expected to fill.
type OperationAttr struct {
	Name string
	Role string
}

// OperationAttrs are the graphql_mutation attributes that hold operation
// strings, in checking order.
var OperationAttrs = []OperationAttr{
	{Name: "read_query", Role: RoleQuery},
	{Name: "create_mutation", Role: RoleMutation},
	{Name: "update_mutation", Role: RoleMutation},
	{Name: "delete_mutation", Role: RoleMutation},
}

// ValidateOperation surface-checks a GraphQL operation string: non-empty,
// balanced braces, a selection set, and an operation keyword consistent with
// the role. It is deliberately not a full parser; the goal is catching
// truncated or mangled strings in state, not schema validation.
func ValidateOperation(op, role string) error {
	trimmed := strings.TrimSpace(op)
	if trimmed == "" {
		return fmt.Errorf("operation is empty")
	}

	if !hasBalancedBraces(trimmed) {
		return fmt.Errorf("operation has unbalanced braces")
	}

	if !strings.Contains(trimmed, "{") {
		return fmt.Errorf("operation has no selection set")
	}

	lower := strings.ToLower(trimmed)
	switch role {
	case RoleMutation:
		if !strings.HasPrefix(lower, "mutation") {
			return fmt.Errorf("expected a mutation operation")
		}
	case RoleQuery:
		// Anonymous shorthand "{ ... }" is a valid query.
		if !strings.HasPrefix(lower, "query") && !strings.HasPrefix(lower, "{") {
			return fmt.Errorf("expected a query operation")
		}
	}

	return nil
}

func hasBalancedBraces(s string) bool {
	depth := 0
	for _, ch := range s {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
