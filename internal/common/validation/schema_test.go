package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"invoice_id":  map[string]interface{}{"type": "integer"},
			"customer_id": map[string]interface{}{"type": "integer", "minimum": 1},
		},
		"required": []interface{}{"invoice_id"},
	}
}

func TestCompile_EmptySchema(t *testing.T) {
	_, err := Compile("empty", nil)
	assert.Error(t, err)
}

func TestSchema_ValidateJSON(t *testing.T) {
	schema, err := Compile("get_employee_by_invoice_and_customer", employeeSchema())
	require.NoError(t, err)
	assert.Equal(t, "get_employee_by_invoice_and_customer", schema.Name())

	tests := []struct {
		name      string
		document  string
		valid     bool
		badFields []string
	}{
		{
			name:     "valid with extra process variables",
			document: `{"invoice_id": 98, "customer_id": 1, "messages": []}`,
			valid:    true,
		},
		{
			name:      "string invoice id",
			document:  `{"invoice_id": "98", "customer_id": 1}`,
			badFields: []string{"invoice_id"},
		},
		{
			name:      "fractional invoice id",
			document:  `{"invoice_id": 9.5}`,
			badFields: []string{"invoice_id"},
		},
		{
			name:     "missing invoice id",
			document: `{"customer_id": 1}`,
		},
		{
			name:      "customer id below minimum",
			document:  `{"invoice_id": 1, "customer_id": 0}`,
			badFields: []string{"customer_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.ValidateJSON(tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			for _, field := range tt.badFields {
				assert.True(t, result.HasErrors(field), "expected error for %s, got %v", field, result.GetErrorMessages())
			}
			if !tt.valid {
				assert.NotEmpty(t, result.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateJSON_Malformed(t *testing.T) {
	schema, err := Compile("x", employeeSchema())
	require.NoError(t, err)

	_, err = schema.ValidateJSON(`{"invoice_id":`)
	assert.Error(t, err)
}
