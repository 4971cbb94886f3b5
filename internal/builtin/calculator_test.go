package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCalculator(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"2 + 2", "2 + 2 = 4"},
		{"10 / 4", "10 / 4 = 2.5"},
		{"3 * 3", "3 * 3 = 9"},
	}
	for _, c := range cases {
		got, err := HandleCalculator(map[string]any{"expression": c.expr})
		require.NoError(t, err, "expression %q", c.expr)
		assert.Equal(t, c.want, got.Text, "expression %q", c.expr)
	}
}

func TestHandleCalculatorDivisionByZero(t *testing.T) {
	_, err := HandleCalculator(map[string]any{"expression": "1 / 0"})
	assert.Error(t, err, "expected an error for division by zero")
}

func TestHandleCalculatorMissingExpression(t *testing.T) {
	_, err := HandleCalculator(map[string]any{})
	assert.Error(t, err, "expected an error for missing expression")
}

func TestHandleCalculatorMalformed(t *testing.T) {
	_, err := HandleCalculator(map[string]any{"expression": "2 + "})
	assert.Error(t, err, "expected an error for a malformed expression")
}
