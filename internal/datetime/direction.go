package datetime

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the way a traversal moves datetime values.
type Direction string

const (
	// ToUTCDirection converts wall-clock values to UTC, used for outgoing operations.
	ToUTCDirection Direction = "outbound"

	// ToLocalDirection converts UTC values to wall-clock time, used for incoming responses.
	ToLocalDirection Direction = "inbound"
)

// Directions returns every supported direction.
func Directions() []Direction {
	return []Direction{ToUTCDirection, ToLocalDirection}
}

// ParseDirection resolves a direction from its name.
// 'utc' and 'local' are accepted as aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ToUTCDirection), "utc":
		return ToUTCDirection, nil
	case string(ToLocalDirection), "local":
		return ToLocalDirection, nil
	default:
		return "", fmt.Errorf("unknown direction '%s', must be one of %v", s, Directions())
	}
}

// Converter returns the primitive bound to this direction for loc.
func (d Direction) Converter(loc *time.Location) (Converter, error) {
	switch d {
	case ToUTCDirection:
		return ToUTC(loc), nil
	case ToLocalDirection:
		return ToLocal(loc), nil
	default:
		return nil, fmt.Errorf("unknown direction '%s'", string(d))
	}
}

// String implements fmt.Stringer.
// This is also required by Cobra as part of implementing flag.Value.
func (d *Direction) String() string {
	return string(*d)
}

// Set is used by Cobra to set the direction value from a string.
func (d *Direction) Set(v string) error {
	parsed, err := ParseDirection(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Type is used by Cobra to get the 'type' of a direction for display purposes.
func (d *Direction) Type() string {
	return "direction"
}
