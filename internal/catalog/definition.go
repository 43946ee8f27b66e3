package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/jsonsearch/internal/ir"
)

// DefaultPageSize is used when a definition leaves page_size unset.
const DefaultPageSize = 10

// DefaultKey is the identifier column counted by distinct counts and
// looked up by entity resolution when none is configured.
const DefaultKey = "id"

//go:embed schema.cue
var schemaCUE string

// Definition is a search definition file: the FROM clause and alias a
// search selects from, the parameters it may filter and sort on, and the
// entity tables reference parameters resolve against.
type Definition struct {
	Name       string                  `yaml:"name,omitempty" json:"name,omitempty"`
	From       string                  `yaml:"from" json:"from"`
	Alias      string                  `yaml:"alias,omitempty" json:"alias,omitempty"`
	Distinct   bool                    `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	Key        string                  `yaml:"key,omitempty" json:"key,omitempty"`
	PageSize   int                     `yaml:"page_size,omitempty" json:"page_size,omitempty"`
	Parameters map[string]ParameterDef `yaml:"parameters" json:"parameters"`
	Entities   map[string]EntityDef    `yaml:"entities,omitempty" json:"entities,omitempty"`
}

// ParameterDef declares one parameter in a definition file.
type ParameterDef struct {
	Path   string `yaml:"path" json:"path"`
	Type   string `yaml:"type" json:"type"`
	Entity string `yaml:"entity,omitempty" json:"entity,omitempty"`
}

// EntityDef maps an entity name to the table holding it.
type EntityDef struct {
	Table string `yaml:"table" json:"table"`
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
}

// Load reads a definition file, choosing the format by extension:
// .cue files are evaluated with CUE, everything else is decoded as YAML
// (which includes JSON).
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	var def *Definition
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		def, err = DecodeCUE(data, path)
	} else {
		def, err = DecodeYAML(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// DecodeYAML decodes and validates a YAML definition.
// Unknown fields are rejected.
func DecodeYAML(r io.Reader) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return &def, nil
}

// DecodeCUE evaluates a CUE definition against the embedded #Definition
// schema and decodes the result.
func DecodeCUE(data []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("building definition schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	value = schema.LookupPath(cue.ParsePath("#Definition")).Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating CUE value: %w", err)
	}

	var def Definition
	if err := value.Decode(&def); err != nil {
		return nil, fmt.Errorf("decoding CUE value: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return &def, nil
}

// Validate checks the definition is complete and internally consistent.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.From) == "" {
		return fmt.Errorf("from is required")
	}
	if d.Alias != "" && !ValidIdentifier(d.Alias) {
		return fmt.Errorf("invalid alias %q", d.Alias)
	}
	if d.Key != "" && !ValidIdentifier(d.Key) {
		return fmt.Errorf("invalid key %q", d.Key)
	}
	if d.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative, got %d", d.PageSize)
	}
	if len(d.Parameters) == 0 {
		return fmt.Errorf("at least one parameter is required")
	}

	for _, name := range sortedKeys(d.Entities) {
		e := d.Entities[name]
		if !ValidIdentifier(name) {
			return fmt.Errorf("invalid entity name %q", name)
		}
		if !pathRe.MatchString(e.Table) {
			return fmt.Errorf("entity %q: invalid table %q", name, e.Table)
		}
		if e.ID != "" && !ValidIdentifier(e.ID) {
			return fmt.Errorf("entity %q: invalid id column %q", name, e.ID)
		}
	}

	for _, name := range sortedKeys(d.Parameters) {
		p := d.Parameters[name]
		if p.Entity == "" {
			continue
		}
		if _, ok := d.Entities[p.Entity]; !ok {
			return fmt.Errorf("parameter %q references undeclared entity %q", name, p.Entity)
		}
	}

	// Catch bad paths and types here too.
	_, err := d.Catalog()
	return err
}

// Catalog builds the parameter catalog the definition declares.
func (d *Definition) Catalog() (*Catalog, error) {
	c := New()
	for _, name := range sortedKeys(d.Parameters) {
		p := d.Parameters[name]
		typ, err := ir.ParseType(p.Type)
		if err != nil {
			return nil, ir.WithField(err, name)
		}
		if err := c.Declare(name, p.Path, typ, p.Entity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// EffectivePageSize returns the configured page size or DefaultPageSize.
func (d *Definition) EffectivePageSize() int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return DefaultPageSize
}

// EffectiveKey returns the configured key column or DefaultKey.
func (d *Definition) EffectiveKey() string {
	if d.Key != "" {
		return d.Key
	}
	return DefaultKey
}

// Entity returns the table and id column of an entity, applying DefaultKey.
func (d *Definition) Entity(name string) (EntityDef, bool) {
	e, ok := d.Entities[name]
	if !ok {
		return EntityDef{}, false
	}
	if e.ID == "" {
		e.ID = DefaultKey
	}
	return e, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
