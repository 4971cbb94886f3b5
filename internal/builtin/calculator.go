// Package builtin holds the tool handlers shipped with corekit itself
// (it ships no resource providers). Register adds them directly to a
// registry; Catalog exposes the same handlers through an
// autoload.HandlerCatalog, so manifests can pick which of them to use.
package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// CalculatorTool is the wire definition for the calculator handler.
func CalculatorTool() protocol.Tool {
	return protocol.Tool{
		Name:        "calculator",
		Description: "A simple calculator that evaluates one arithmetic expression such as '2 + 2' or '4 * 6'",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"expression": {
					Type:        "string",
					Description: "An arithmetic expression in the form 'number operator number'",
				},
			},
			Required: []string{"expression"},
		},
	}
}

// HandleCalculator evaluates a single binary arithmetic expression.
func HandleCalculator(args map[string]any) (registry.HandlerReturn, error) {
	expression, ok := args["expression"].(string)
	if !ok || expression == "" {
		return registry.HandlerReturn{}, fmt.Errorf("expression parameter is required and must be a string")
	}

	result, err := evaluate(expression)
	if err != nil {
		return registry.HandlerReturn{}, err
	}

	return registry.HandlerReturn{
		Text: fmt.Sprintf("%s = %s", expression, strconv.FormatFloat(result, 'g', -1, 64)),
	}, nil
}

func evaluate(expression string) (float64, error) {
	parts := strings.Fields(strings.TrimSpace(expression))
	if len(parts) != 3 {
		return 0, fmt.Errorf("expression must be in the form 'number operator number'")
	}

	num1, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid first number: %w", err)
	}
	num2, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid second number: %w", err)
	}

	switch parts[1] {
	case "+":
		return num1 + num2, nil
	case "-":
		return num1 - num2, nil
	case "*":
		return num1 * num2, nil
	case "/":
		if num2 == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return num1 / num2, nil
	default:
		return 0, fmt.Errorf("unsupported operator: %s", parts[1])
	}
}
