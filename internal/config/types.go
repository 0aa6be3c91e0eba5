package config

import (
	"github.com/mozilla-ai/gqltz/internal/fields"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

// UpsertResult describes the change a modification made to the configuration.
type UpsertResult string

const (
	Created UpsertResult = "Created"
	Updated UpsertResult = "Updated"
	Deleted UpsertResult = "Deleted"
	Noop    UpsertResult = "Noop"
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	AddDirectField(name string) (UpsertResult, error)
	AddPairedField(pair fields.Pair) (UpsertResult, error)
	RemoveField(name string) (UpsertResult, error)
	Registry() (*fields.Registry, error)
}

type DefaultLoader struct{}

// Config represents the .gqltz.toml file structure.
type Config struct {
	Daemon         *DaemonConfig `json:"daemon,omitempty" toml:"daemon,omitempty" yaml:"daemon,omitempty"`
	Fields         *FieldsConfig `json:"fields,omitempty" toml:"fields,omitempty" yaml:"fields,omitempty"`
	configFilePath string        `toml:"-"`
}

// FieldsConfig lists the payload keys that carry datetime values.
// When the section is absent the built-in classification is used.
type FieldsConfig struct {
	// Direct lists keys whose values are complete date-time strings.
	// e.g. 'createdAt'
	Direct []string `json:"direct,omitempty" toml:"direct,omitempty" yaml:"direct,omitempty"`

	// Paired lists sibling keys holding the date and the time of a single instant.
	// e.g. 'startDate' and 'startTime'
	Paired []fields.Pair `json:"paired,omitempty" toml:"paired,omitempty" yaml:"paired,omitempty"`
}
