// Package normalize walks arbitrary payload trees and rewrites the datetime fields named by a fields.Registry.
package normalize

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

// Kind classifies the field a conversion was applied to.
type Kind string

const (
	KindDirect Kind = "direct"
	KindPaired Kind = "paired"
)

// Observer is notified once for every classified field a traversal converts.
// changed is false when the conversion left the value as it was (e.g. the value was not a datetime).
type Observer interface {
	ObserveField(direction datetime.Direction, kind Kind, changed bool)
}

// IsPlainObjectOrArray reports whether v is a node the traversal descends into.
// Objects and arrays decoded from JSON qualify; nil, time.Time, and scalar values do not.
func IsPlainObjectOrArray(v any) bool {
	switch n := v.(type) {
	case map[string]any:
		return n != nil
	case []any:
		return n != nil
	case []map[string]any:
		return n != nil
	case time.Time, *time.Time:
		return false
	default:
		return false
	}
}

// Walk rewrites every classified field reachable from node, in place.
//
// For each key of an object:
//   - a paired date key whose time sibling is truthy has both siblings combined, converted, and split back,
//   - a direct key holding a string is replaced by its converted value,
//   - an object or array value is walked recursively.
//
// Arrays are walked element by element. Trees are assumed to be acyclic.
// Walk never fails: values that are not datetimes are left untouched by convert.
func Walk(node any, reg *fields.Registry, convert datetime.Converter, split datetime.Splitter) {
	v := &visitor{reg: reg, convert: convert, split: split}
	v.walk(node)
}

// Transform is the non-mutating form of Walk.
// It returns a new tree in which only the objects and arrays on a path to a changed field are copied,
// all untouched subtrees are shared with node. node itself is never modified.
func Transform(node any, reg *fields.Registry, convert datetime.Converter, split datetime.Splitter) any {
	v := &visitor{reg: reg, convert: convert, split: split}
	out, _ := v.transform(node)
	return out
}

// visitor carries the bound primitives for a single traversal pass.
type visitor struct {
	reg       *fields.Registry
	convert   datetime.Converter
	split     datetime.Splitter
	direction datetime.Direction
	observer  Observer

	// changed is set once any classified field is rewritten to a different value.
	changed bool
}

func (v *visitor) observe(kind Kind, changed bool) {
	v.changed = v.changed || changed
	if v.observer != nil {
		v.observer.ObserveField(v.direction, kind, changed)
	}
}

func (v *visitor) walk(node any) {
	switch n := node.(type) {
	case map[string]any:
		v.walkObject(n)
	case []any:
		for _, elem := range n {
			if IsPlainObjectOrArray(elem) {
				v.walk(elem)
			}
		}
	case []map[string]any:
		for _, elem := range n {
			v.walkObject(elem)
		}
	}
}

func (v *visitor) walkObject(obj map[string]any) {
	for k := range obj {
		// Every pair is checked for every key, a key may match more than one pair.
		for _, p := range v.reg.PairsForDate(k) {
			if parts, changed, ok := v.convertPair(obj, p); ok {
				obj[p.Date] = parts.Date
				obj[p.Time] = parts.Time
				v.observe(KindPaired, changed)
			}
		}

		if v.reg.IsDirect(k) {
			if s, ok := obj[k].(string); ok {
				out := v.convert(s)
				obj[k] = out
				v.observe(KindDirect, out != s)
			}
		}

		if IsPlainObjectOrArray(obj[k]) {
			v.walk(obj[k])
		}
	}
}

func (v *visitor) transform(node any) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		return v.transformObject(n)
	case []any:
		var out []any
		for i, elem := range n {
			if !IsPlainObjectOrArray(elem) {
				continue
			}
			if next, changed := v.transform(elem); changed {
				if out == nil {
					out = slices.Clone(n)
				}
				out[i] = next
			}
		}
		if out == nil {
			return n, false
		}
		return out, true
	case []map[string]any:
		var out []map[string]any
		for i, elem := range n {
			if next, changed := v.transformObject(elem); changed {
				if out == nil {
					out = slices.Clone(n)
				}
				out[i] = next.(map[string]any)
			}
		}
		if out == nil {
			return n, false
		}
		return out, true
	default:
		return node, false
	}
}

func (v *visitor) transformObject(obj map[string]any) (any, bool) {
	if obj == nil {
		return obj, false
	}

	// Nested results are collected first so field conversions win on the (misconfigured) overlap.
	nested := map[string]any{}
	updates := map[string]any{}

	for k, val := range obj {
		for _, p := range v.reg.PairsForDate(k) {
			if parts, changed, ok := v.convertPair(obj, p); ok {
				v.observe(KindPaired, changed)
				if changed {
					updates[p.Date] = parts.Date
					updates[p.Time] = parts.Time
				}
			}
		}

		if v.reg.IsDirect(k) {
			if s, ok := val.(string); ok {
				out := v.convert(s)
				v.observe(KindDirect, out != s)
				if out != s {
					updates[k] = out
				}
			}
		}

		if IsPlainObjectOrArray(val) {
			if next, changed := v.transform(val); changed {
				nested[k] = next
			}
		}
	}

	if len(nested) == 0 && len(updates) == 0 {
		return obj, false
	}

	out := maps.Clone(obj)
	maps.Copy(out, nested)
	maps.Copy(out, updates)

	return out, true
}

// convertPair combines, converts, and splits the siblings described by p.
// ok is false when the time sibling is missing or falsy, in which case nothing should be written.
func (v *visitor) convertPair(obj map[string]any, p fields.Pair) (parts datetime.Parts, changed bool, ok bool) {
	timeVal, present := obj[p.Time]
	if !present || !isTruthy(timeVal) {
		return datetime.Parts{}, false, false
	}
	dateVal := obj[p.Date]

	parts = v.split(v.convert(datetime.Combine(stringify(dateVal), stringify(timeVal))))

	origDate, dateIsString := dateVal.(string)
	origTime, timeIsString := timeVal.(string)
	changed = !dateIsString || !timeIsString || origDate != parts.Date || origTime != parts.Time

	return parts, changed, true
}

// isTruthy follows the dashboard's loose truthiness rules: nil, false, the empty string, and numeric zero are falsy.
func isTruthy(v any) bool {
	switch n := v.(type) {
	case nil:
		return false
	case bool:
		return n
	case string:
		return n != ""
	case json.Number:
		f, err := n.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case float64:
		return n != 0 && !math.IsNaN(n)
	case float32:
		return n != 0 && !math.IsNaN(float64(n))
	case int:
		return n != 0
	case int64:
		return n != 0
	case int32:
		return n != 0
	default:
		return true
	}
}

// stringify renders a payload value the way string interpolation would.
func stringify(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case nil:
		return "null"
	case json.Number:
		return n.String()
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprint(n)
	}
}
