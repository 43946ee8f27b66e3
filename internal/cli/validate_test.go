package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Text(t *testing.T) {
	stdout, _, err := execute(t, "", "validate", "-d", peopleYAML)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Definition people is valid: 4 parameters")
	assert.Contains(t, stdout, "p.owner_id")
	assert.Contains(t, stdout, "owner")
}

func TestValidate_JSON(t *testing.T) {
	for _, def := range []string{peopleYAML, peopleCUE} {
		t.Run(def, func(t *testing.T) {
			stdout, _, err := execute(t, "", "validate", "-d", def, "--format", "json")
			require.NoError(t, err)

			var resp struct {
				Status string           `json:"status"`
				Data   ValidationResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.True(t, resp.Data.Valid)
			assert.Equal(t, "people p", resp.Data.From)
			assert.Equal(t, 2, resp.Data.PageSize)
			assert.Equal(t, []string{"owner"}, resp.Data.Entities)
			assert.Equal(t, []ParameterOutput{
				{Name: "age", Path: "p.age", Type: "int"},
				{Name: "name", Path: "p.name", Type: "string"},
				{Name: "owner", Path: "p.owner_id", Type: "int", Entity: "owner"},
				{Name: "status", Path: "p.status", Type: "string"},
			}, resp.Data.Parameters)
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
		text string
	}{
		{"missing flag", []string{"validate"}, ErrCodeInvalidConfig, "--definition"},
		{"not found", []string{"validate", "-d", "testdata/missing.yaml"}, ErrCodeNotFound, "not found"},
		{"unsupported type", []string{"validate", "-d", "testdata/bad_type.yaml"}, ErrCodeUnsupportedType, "decimal128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+tt.code+"]")
			assert.Contains(t, stdout, tt.text)
		})
	}
}

func TestValidate_RejectsArguments(t *testing.T) {
	_, _, err := execute(t, "", "validate", "-d", peopleYAML, "extra")
	require.Error(t, err)
}
