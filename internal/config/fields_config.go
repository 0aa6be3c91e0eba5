package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mozilla-ai/gqltz/internal/fields"
)

// ListDirect returns a copy of the configured direct field names.
func (f *FieldsConfig) ListDirect() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.Direct)
}

// ListPaired returns a copy of the configured paired fields.
func (f *FieldsConfig) ListPaired() []fields.Pair {
	if f == nil {
		return nil
	}
	return slices.Clone(f.Paired)
}

func (f *FieldsConfig) clone() *FieldsConfig {
	return &FieldsConfig{
		Direct: slices.Clone(f.Direct),
		Paired: slices.Clone(f.Paired),
	}
}

func (f *FieldsConfig) addDirect(name string) (UpsertResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Noop, fmt.Errorf("%w: field name cannot be empty", ErrInvalidValue)
	}

	if slices.Contains(f.Direct, name) {
		return Noop, nil
	}

	f.Direct = append(f.Direct, name)

	return Created, nil
}

func (f *FieldsConfig) upsertPair(pair fields.Pair) (UpsertResult, error) {
	pair = fields.Pair{
		Date:     strings.TrimSpace(pair.Date),
		Time:     strings.TrimSpace(pair.Time),
		Combined: strings.TrimSpace(pair.Combined),
	}
	if pair.Date == "" {
		return Noop, NewErrInvalidValue("date", pair.Date)
	}
	if pair.Time == "" {
		return Noop, NewErrInvalidValue("time", pair.Time)
	}

	idx := slices.IndexFunc(f.Paired, func(p fields.Pair) bool {
		return p.Date == pair.Date
	})
	if idx == -1 {
		f.Paired = append(f.Paired, pair)
		return Created, nil
	}

	if f.Paired[idx] == pair {
		return Noop, nil
	}

	f.Paired[idx] = pair

	return Updated, nil
}

func (f *FieldsConfig) remove(name string) (UpsertResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Noop, fmt.Errorf("%w: field name cannot be empty", ErrInvalidValue)
	}

	direct := slices.DeleteFunc(slices.Clone(f.Direct), func(s string) bool {
		return s == name
	})
	paired := slices.DeleteFunc(slices.Clone(f.Paired), func(p fields.Pair) bool {
		return p.Date == name || p.Time == name
	})

	if len(direct) == len(f.Direct) && len(paired) == len(f.Paired) {
		return Noop, fmt.Errorf("field '%s' not found in config", name)
	}

	f.Direct = direct
	f.Paired = paired

	return Deleted, nil
}
