// Package fields holds the classification of payload keys that carry datetime values.
package fields

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidRegistry is returned when a field classification breaks one of the registry invariants.
var ErrInvalidRegistry = errors.New("invalid field registry")

// Pair names two sibling keys that together hold a single instant.
// Combined labels the joined value during conversion, it never appears in payloads.
type Pair struct {
	Date     string `json:"date"     toml:"date"     yaml:"date"`
	Time     string `json:"time"     toml:"time"     yaml:"time"`
	Combined string `json:"combined" toml:"combined,omitempty" yaml:"combined,omitempty"`
}

// Registry classifies payload keys as direct or paired datetime fields.
// A Registry is immutable once created and can be shared between goroutines.
// New should be used to create instances of Registry.
type Registry struct {
	direct      map[string]struct{}
	directOrder []string
	paired      []Pair
	byDate      map[string][]Pair
}

// New creates a Registry from the supplied direct field names and paired fields.
//
// The following invariants are enforced:
//   - No field name may be empty.
//   - A pair's date and time keys must differ.
//   - No key is classified twice (across direct fields and the date/time keys of every pair).
func New(direct []string, paired []Pair) (*Registry, error) {
	seen := make(map[string]string, len(direct)+len(paired)*2)

	claim := func(name string, owner string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: %s field name cannot be empty", ErrInvalidRegistry, owner)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: field '%s' classified as %s and %s", ErrInvalidRegistry, name, prev, owner)
		}
		seen[name] = owner
		return nil
	}

	r := &Registry{
		direct:      make(map[string]struct{}, len(direct)),
		directOrder: make([]string, 0, len(direct)),
		paired:      make([]Pair, 0, len(paired)),
		byDate:      make(map[string][]Pair, len(paired)),
	}

	for _, name := range direct {
		if err := claim(name, "direct"); err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		r.direct[name] = struct{}{}
		r.directOrder = append(r.directOrder, name)
	}

	for _, p := range paired {
		p = Pair{
			Date:     strings.TrimSpace(p.Date),
			Time:     strings.TrimSpace(p.Time),
			Combined: strings.TrimSpace(p.Combined),
		}
		if p.Date != "" && p.Date == p.Time {
			return nil, fmt.Errorf("%w: pair date and time fields are both '%s'", ErrInvalidRegistry, p.Date)
		}
		if err := claim(p.Date, "paired date"); err != nil {
			return nil, err
		}
		if err := claim(p.Time, "paired time"); err != nil {
			return nil, err
		}
		if p.Combined == "" {
			p.Combined = CombinedName(p.Date)
		}
		r.paired = append(r.paired, p)
		r.byDate[p.Date] = append(r.byDate[p.Date], p)
	}

	return r, nil
}

// Default returns the registry used when no configuration overrides it.
func Default() *Registry {
	r, err := New(DefaultDirect(), DefaultPaired())
	if err != nil {
		// The defaults are static, a failure here is a programming error.
		panic(err)
	}
	return r
}

// DefaultDirect returns the default direct field names.
func DefaultDirect() []string {
	return []string{
		"createdAt",
		"updatedAt",
		"birthDate",
		"dueDate",
		"completionDate",
	}
}

// DefaultPaired returns the default paired fields.
func DefaultPaired() []Pair {
	return []Pair{
		{Date: "startDate", Time: "startTime", Combined: "startDateTime"},
		{Date: "endDate", Time: "endTime", Combined: "endDateTime"},
	}
}

// CombinedName derives a combined label from a date key, e.g. 'startDate' becomes 'startDateTime'.
func CombinedName(dateField string) string {
	return dateField + "Time"
}

// IsDirect reports whether key is a direct datetime field.
func (r *Registry) IsDirect(key string) bool {
	_, ok := r.direct[key]
	return ok
}

// Direct returns a copy of the direct field names in declaration order.
func (r *Registry) Direct() []string {
	return slices.Clone(r.directOrder)
}

// Pairs returns a copy of the paired fields in registration order.
func (r *Registry) Pairs() []Pair {
	return slices.Clone(r.paired)
}

// PairsForDate returns every pair whose date key is key.
// NOTE: The returned slice is shared, callers must not mutate it.
func (r *Registry) PairsForDate(key string) []Pair {
	return r.byDate[key]
}

// Len returns the total number of classified keys.
func (r *Registry) Len() int {
	return len(r.direct) + len(r.paired)*2
}
