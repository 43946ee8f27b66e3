package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonsearch/internal/ir"
)

func TestLoad_Formats(t *testing.T) {
	for _, file := range []string{"orders.yaml", "orders.cue"} {
		t.Run(file, func(t *testing.T) {
			def, err := Load(filepath.Join("testdata", file))
			require.NoError(t, err)

			assert.Equal(t, "orders", def.Name)
			assert.Equal(t, "orders o", def.From)
			assert.Equal(t, "o", def.Alias)
			assert.True(t, def.Distinct)
			assert.Equal(t, 25, def.EffectivePageSize())
			assert.Equal(t, "id", def.EffectiveKey())

			owner, ok := def.Entity("owner")
			require.True(t, ok)
			assert.Equal(t, EntityDef{Table: "owners", ID: "id"}, owner)

			c, err := def.Catalog()
			require.NoError(t, err)
			assert.Equal(t, 4, c.Len())

			d, ok := c.Lookup("placed")
			require.True(t, ok)
			assert.Equal(t, ir.TypeDate, d.Type)
			assert.Equal(t, "o.placed_on", d.Path)

			d, ok = c.Lookup("owner")
			require.True(t, ok)
			assert.Equal(t, "owner", d.Entity)
			assert.Equal(t, ir.TypeInt, d.Type)
		})
	}
}

func TestLoad_UnknownFields(t *testing.T) {
	for _, file := range []string{"unknown_field.yaml", "unknown_field.cue"} {
		t.Run(file, func(t *testing.T) {
			_, err := Load(filepath.Join("testdata", file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "paramters")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read definition file")
}

func TestDecodeYAML_Defaults(t *testing.T) {
	def, err := DecodeYAML(strings.NewReader(`
from: people
parameters:
  age: {path: age, type: integer}
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, def.EffectivePageSize())
	assert.Equal(t, DefaultKey, def.EffectiveKey())
	assert.Empty(t, def.Alias)
	assert.False(t, def.Distinct)
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing from",
			yaml: "parameters: {age: {path: age, type: int}}",
			want: "from is required",
		},
		{
			name: "bad alias",
			yaml: "from: people\nalias: p q\nparameters: {age: {path: age, type: int}}",
			want: "invalid alias",
		},
		{
			name: "negative page size",
			yaml: "from: people\npage_size: -1\nparameters: {age: {path: age, type: int}}",
			want: "page_size",
		},
		{
			name: "no parameters",
			yaml: "from: people",
			want: "at least one parameter",
		},
		{
			name: "undeclared entity",
			yaml: "from: people\nparameters: {owner: {path: owner_id, type: int, entity: owner}}",
			want: "undeclared entity",
		},
		{
			name: "bad type",
			yaml: "from: people\nparameters: {age: {path: age, type: money}}",
			want: "UNSUPPORTED_TYPE",
		},
		{
			name: "bad table",
			yaml: "from: people\nparameters: {owner: {path: owner_id, type: int, entity: owner}}\nentities: {owner: {table: 'owners;'}}",
			want: "invalid table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeCUE_SchemaViolation(t *testing.T) {
	src := `
from:      "people"
page_size: -2
parameters: age: {path: "age", type: "int"}
`
	_, err := DecodeCUE([]byte(src), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating CUE value")
}
