package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeCompileResult(t *testing.T, stdout string) CompileResult {
	t.Helper()

	var resp struct {
		Status string        `json:"status"`
		Data   CompileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func renderCompileResult(r CompileResult) string {
	var b strings.Builder
	for _, section := range []struct {
		label string
		stmt  StatementOutput
	}{{"select", r.Select}, {"count", r.Count}} {
		fmt.Fprintf(&b, "-- %s --\n%s\n", section.label, section.stmt.SQL)
		for _, p := range section.stmt.Params {
			fmt.Fprintf(&b, "%s = %s\n", p.Name, p.Value)
		}
	}
	fmt.Fprintf(&b, "page = %d\npage_size = %d\n", r.Page, r.PageSize)
	return b.String()
}

func TestCompile_JSONGolden(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "-d", peopleYAML, "--format", "json", adultsJSON)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "compile_adults", []byte(renderCompileResult(decodeCompileResult(t, stdout))))
}

func TestCompile_CUEDefinitionMatchesYAML(t *testing.T) {
	fromYAML, _, err := execute(t, "", "compile", "-d", peopleYAML, "--format", "json", adultsJSON)
	require.NoError(t, err)
	fromCUE, _, err := execute(t, "", "compile", "-d", peopleCUE, "--format", "json", adultsJSON)
	require.NoError(t, err)

	assert.Equal(t, decodeCompileResult(t, fromYAML), decodeCompileResult(t, fromCUE))
}

func TestCompile_Text(t *testing.T) {
	stdout, _, err := execute(t, `{"filter":[{"status":{"$eq":"A"}}]}`, "compile", "-d", peopleYAML)
	require.NoError(t, err)

	assert.Contains(t, stdout, "-- select --")
	assert.Contains(t, stdout, "SELECT p.* FROM people p WHERE (p.status = :status_1)")
	assert.Contains(t, stdout, "-- count --")
	assert.Contains(t, stdout, "SELECT COUNT(*) FROM people p WHERE (p.status = :status_1)")
	assert.Contains(t, stdout, `"A"`)
	assert.Contains(t, stdout, "page 0, page size 2")
}

func TestCompile_StdinDash(t *testing.T) {
	stdout, _, err := execute(t, `{"sort":[{"name":"ASC"}]}`, "compile", "-d", peopleYAML, "--format", "json", "-")
	require.NoError(t, err)

	result := decodeCompileResult(t, stdout)
	assert.Equal(t, "SELECT p.* FROM people p ORDER BY p.name ASC", result.Select.SQL)
	assert.Empty(t, result.Select.Params)
}

func TestCompile_EmptyInputIsEmptySearch(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "-d", peopleYAML, "--format", "json")
	require.NoError(t, err)

	result := decodeCompileResult(t, stdout)
	assert.Equal(t, "SELECT p.* FROM people p", result.Select.SQL)
	assert.Equal(t, "SELECT COUNT(*) FROM people p", result.Count.SQL)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		code     string
		exitCode int
	}{
		{
			name:     "missing definition flag",
			args:     []string{"compile"},
			code:     ErrCodeInvalidConfig,
			exitCode: ExitCommandError,
		},
		{
			name:     "definition not found",
			args:     []string{"compile", "-d", "testdata/missing.yaml"},
			code:     ErrCodeNotFound,
			exitCode: ExitCommandError,
		},
		{
			name:     "document not found",
			args:     []string{"compile", "-d", peopleYAML, "testdata/missing.json"},
			code:     ErrCodeNotFound,
			exitCode: ExitCommandError,
		},
		{
			name:     "bad parameter type",
			args:     []string{"compile", "-d", "testdata/bad_type.yaml"},
			code:     ErrCodeUnsupportedType,
			exitCode: ExitCommandError,
		},
		{
			name:     "malformed json",
			stdin:    `{"filter": [`,
			args:     []string{"compile", "-d", peopleYAML},
			code:     ErrCodeMalformedDocument,
			exitCode: ExitFailure,
		},
		{
			name:     "unknown operator",
			stdin:    `{"filter":[{"age":{"$gtx":1}}]}`,
			args:     []string{"compile", "-d", peopleYAML},
			code:     ErrCodeUnknownOperator,
			exitCode: ExitFailure,
		},
		{
			name:     "unknown parameter",
			stdin:    `{"filter":[{"colour":{"$eq":"red"}}]}`,
			args:     []string{"compile", "-d", peopleYAML},
			code:     ErrCodeUnknownParameter,
			exitCode: ExitFailure,
		},
		{
			name:     "value parse",
			stdin:    `{"filter":[{"age":{"$eq":"old"}}]}`,
			args:     []string{"compile", "-d", peopleYAML},
			code:     ErrCodeValueParse,
			exitCode: ExitFailure,
		},
		{
			name:     "reference without database",
			stdin:    `{"filter":[{"owner":{"$eq":7}}]}`,
			args:     []string{"compile", "-d", peopleYAML},
			code:     ErrCodeInvalidConfig,
			exitCode: ExitCommandError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--format", "json")
			stdout, _, err := execute(t, tt.stdin, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_ResolvesReferencesWithDatabase(t *testing.T) {
	dsn := seedDatabase(t)

	stdout, _, err := execute(t, `{"filter":[{"owner":{"$eq":7}}]}`,
		"compile", "-d", peopleYAML, "--driver", "sqlite", "--dsn", dsn, "--format", "json")
	require.NoError(t, err)

	result := decodeCompileResult(t, stdout)
	require.Len(t, result.Select.Params, 1)
	assert.Equal(t, "owner_1", result.Select.Params[0].Name)
	assert.JSONEq(t, `{"entity":"owner","id":7}`, string(result.Select.Params[0].Value))
}

func TestCompile_MissingReference(t *testing.T) {
	dsn := seedDatabase(t)

	_, _, err := execute(t, `{"filter":[{"owner":{"$eq":99}}]}`,
		"compile", "-d", peopleYAML, "--driver", "sqlite", "--dsn", dsn)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeReferenceNotFound)
}
