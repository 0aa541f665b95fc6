// Package schema builds stores declaratively from a YAML field schema.
//
// A schema names every field the store holds, its scalar kind, its default
// value, and the rules gating its validated commits. Fields marked trusted
// are excluded from the recognized commit set and mutate only through
// SetTrusted.
package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/statekit/pkg/store"
	"github.com/go-drift/statekit/pkg/validate"
)

// Schema describes a store's fields.
type Schema struct {
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec declares a single field.
type FieldSpec struct {
	Name    string     `yaml:"name"`
	Kind    string     `yaml:"kind"`
	Default any        `yaml:"default,omitempty"`
	Trusted bool       `yaml:"trusted,omitempty"`
	Rules   []RuleSpec `yaml:"rules,omitempty"`
}

// RuleSpec names a built-in rule and its parameters.
type RuleSpec struct {
	Name string `yaml:"name"`
	Min  int64  `yaml:"min,omitempty"`
	Max  int64  `yaml:"max,omitempty"`
}

// Load reads a schema file. A missing file yields an empty schema, so a
// schema file stays optional for callers that construct stores in code.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Schema{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("invalid schema: field with empty name")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("invalid schema: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if _, err := kindOf(f.Kind); err != nil {
			return nil, fmt.Errorf("invalid schema: field %q: %w", f.Name, err)
		}
	}
	return &s, nil
}

// NewStore builds a store with the schema's defaults as initial state and
// its rules wired in as the validator. Extra options are applied after the
// validator, so a caller can still override the writer or recorder.
func (s *Schema) NewStore(opts ...store.Option) (*store.Store, error) {
	initial := make(map[string]store.Value, len(s.Fields))
	var fields []validate.Field

	for _, f := range s.Fields {
		kind, err := kindOf(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		v, err := defaultValue(kind, f.Default)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		initial[f.Name] = v

		if f.Trusted {
			continue
		}
		rules, err := buildRules(f.Rules)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields = append(fields, validate.Field{Name: f.Name, Rules: rules})
	}

	all := make([]store.Option, 0, len(opts)+1)
	all = append(all, store.WithValidator(validate.NewSet(fields...)))
	all = append(all, opts...)
	return store.New(initial, all...), nil
}

func kindOf(name string) (store.Kind, error) {
	switch name {
	case "string":
		return store.KindString, nil
	case "int":
		return store.KindInt, nil
	case "float":
		return store.KindFloat, nil
	case "bool":
		return store.KindBool, nil
	default:
		return store.KindInvalid, fmt.Errorf("unknown kind %q", name)
	}
}

func defaultValue(kind store.Kind, raw any) (store.Value, error) {
	if raw == nil {
		switch kind {
		case store.KindString:
			return store.StringValue(""), nil
		case store.KindInt:
			return store.IntValue(0), nil
		case store.KindFloat:
			return store.FloatValue(0), nil
		default:
			return store.BoolValue(false), nil
		}
	}
	v, err := store.FromInterface(raw)
	if err != nil {
		return store.Value{}, err
	}
	// YAML decodes integers as int; allow int defaults for float fields.
	if kind == store.KindFloat && v.Kind() == store.KindInt {
		v = store.FloatValue(float64(v.Int()))
	}
	if v.Kind() != kind {
		return store.Value{}, fmt.Errorf("default %v is %s, field is %s", raw, v.Kind(), kind)
	}
	return v, nil
}

func buildRules(specs []RuleSpec) ([]validate.Rule, error) {
	rules := make([]validate.Rule, 0, len(specs))
	for _, spec := range specs {
		switch spec.Name {
		case "nonempty":
			rules = append(rules, validate.NonEmpty())
		case "email":
			rules = append(rules, validate.Email())
		case "range":
			rules = append(rules, validate.Range(spec.Min, spec.Max))
		case "maxlen":
			rules = append(rules, validate.MaxLen(int(spec.Max)))
		default:
			return nil, fmt.Errorf("unknown rule %q", spec.Name)
		}
	}
	return rules, nil
}
