// Package validate provides named field rules for validated commits.
//
// Rules are pure functions over candidate values, evaluated independently
// per field. A Set binds rules to an explicit, closed set of recognized
// field names and reports every failing field together, never just the
// first. Built-in format rules such as Email are backed by a shared
// go-playground/validator instance.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/store"
)

// backend is the shared validator instance for format rules.
var backend = validator.New()

// Rule is a named, pure check over one candidate value.
type Rule struct {
	// Name identifies the rule in failure reports.
	Name string
	// Check returns a non-nil error to reject the value.
	Check func(v store.Value) error
}

// NonEmpty rejects strings that are empty or whitespace-only, and any
// non-string value.
func NonEmpty() Rule {
	return Rule{
		Name: "nonempty",
		Check: func(v store.Value) error {
			if v.Kind() != store.KindString {
				return fmt.Errorf("expected string, got %s", v.Kind())
			}
			if strings.TrimSpace(v.Text()) == "" {
				return fmt.Errorf("must not be empty")
			}
			return nil
		},
	}
}

// Email rejects values that are not a plausible email address.
func Email() Rule {
	return Rule{
		Name: "email",
		Check: func(v store.Value) error {
			if v.Kind() != store.KindString {
				return fmt.Errorf("expected string, got %s", v.Kind())
			}
			if err := backend.Var(v.Text(), "required,email"); err != nil {
				return fmt.Errorf("must be a valid email address")
			}
			return nil
		},
	}
}

// Range rejects integers outside [min, max].
func Range(min, max int64) Rule {
	return Rule{
		Name: "range",
		Check: func(v store.Value) error {
			if v.Kind() != store.KindInt {
				return fmt.Errorf("expected int, got %s", v.Kind())
			}
			if n := v.Int(); n < min || n > max {
				return fmt.Errorf("%d outside [%d, %d]", n, min, max)
			}
			return nil
		},
	}
}

// MaxLen rejects strings longer than n bytes.
func MaxLen(n int) Rule {
	return Rule{
		Name: "maxlen",
		Check: func(v store.Value) error {
			if v.Kind() != store.KindString {
				return fmt.Errorf("expected string, got %s", v.Kind())
			}
			if len(v.Text()) > n {
				return fmt.Errorf("longer than %d bytes", n)
			}
			return nil
		},
	}
}

// Field binds a field name to its rules.
type Field struct {
	Name  string
	Rules []Rule
}

// Set is the closed set of fields recognized by a store's commit path.
// It implements store.Validator.
type Set struct {
	fields map[string][]Rule
}

// NewSet builds a Set from explicit field bindings. A later binding for
// the same name replaces the earlier one.
func NewSet(fields ...Field) *Set {
	s := &Set{fields: make(map[string][]Rule, len(fields))}
	for _, f := range fields {
		s.fields[f.Name] = f.Rules
	}
	return s
}

// Recognized returns the sorted names of recognized fields.
func (s *Set) Recognized() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every candidate independently and returns one
// *errors.ValidationErrors batch with all failures, or nil when every
// candidate passes. A candidate for an unrecognized field is itself a
// failure: the recognized set is closed.
func (s *Set) Validate(candidates map[string]store.Value) error {
	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures []*errors.FieldError
	for _, name := range names {
		rules, ok := s.fields[name]
		if !ok {
			failures = append(failures, &errors.FieldError{
				Field: name,
				Rule:  "recognized",
				Err:   fmt.Errorf("unknown field"),
			})
			continue
		}
		v := candidates[name]
		for _, rule := range rules {
			if err := rule.Check(v); err != nil {
				failures = append(failures, &errors.FieldError{
					Field: name,
					Rule:  rule.Name,
					Err:   err,
				})
			}
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &errors.ValidationErrors{Failures: failures}
}
