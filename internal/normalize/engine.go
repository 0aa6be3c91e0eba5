package normalize

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

// Engine binds a field registry (and optionally an Observer) to the traversal.
// An Engine holds no per-call state and can be shared between goroutines.
// NewEngine should be used to create instances of Engine.
type Engine struct {
	registry *fields.Registry
	observer Observer
}

// EngineOption defines a functional option for configuring an Engine.
type EngineOption func(*Engine) error

// WithObserver configures an Observer that is notified of every classified field conversion.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) error {
		if o == nil || reflect.ValueOf(o).IsNil() {
			return fmt.Errorf("observer cannot be nil")
		}
		e.observer = o
		return nil
	}
}

// NewEngine creates an Engine for the supplied registry.
func NewEngine(registry *fields.Registry, opt ...EngineOption) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("field registry cannot be nil")
	}

	e := &Engine{registry: registry}
	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Registry returns the field registry used by the engine.
func (e *Engine) Registry() *fields.Registry {
	return e.registry
}

// Walk rewrites node in place, converting in the given direction relative to loc.
// It reports whether any classified field now holds a different value.
func (e *Engine) Walk(node any, direction datetime.Direction, loc *time.Location) (bool, error) {
	v, err := e.visitor(direction, loc)
	if err != nil {
		return false, err
	}

	v.walk(node)
	return v.changed, nil
}

// Transform returns a converted copy of node, leaving node untouched.
func (e *Engine) Transform(node any, direction datetime.Direction, loc *time.Location) (any, error) {
	v, err := e.visitor(direction, loc)
	if err != nil {
		return nil, err
	}

	out, _ := v.transform(node)
	return out, nil
}

func (e *Engine) visitor(direction datetime.Direction, loc *time.Location) (*visitor, error) {
	convert, err := direction.Converter(loc)
	if err != nil {
		return nil, err
	}

	return &visitor{
		reg:       e.registry,
		convert:   convert,
		split:     datetime.Split,
		direction: direction,
		observer:  e.observer,
	}, nil
}
