package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mozilla-ai/gqltz/internal/fields"
	"github.com/mozilla-ai/gqltz/internal/perms"
)

// Init creates the base skeleton configuration file for the gqltz project.
// The skeleton lists the built-in field classification so it can be edited in place.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), perms.RegularDir); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	cfg := &Config{
		Fields: &FieldsConfig{
			Direct: fields.DefaultDirect(),
			Paired: fields.DefaultPaired(),
		},
		configFilePath: path,
	}

	return cfg.saveConfig()
}

func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'gqltz init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		// An empty file is a valid configuration that uses every default.
		cfg = &Config{}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// Registry builds the field classification described by the configuration.
// Without a fields section the built-in classification is returned.
func (c *Config) Registry() (*fields.Registry, error) {
	if c.Fields == nil {
		return fields.Default(), nil
	}

	return fields.New(c.Fields.Direct, c.Fields.Paired)
}

// AddDirectField classifies name as a direct datetime field and saves the configuration file.
func (c *Config) AddDirectField(name string) (UpsertResult, error) {
	return c.modifyFields(func(f *FieldsConfig) (UpsertResult, error) {
		return f.addDirect(name)
	})
}

// AddPairedField classifies the date and time keys of pair as paired datetime fields and saves the
// configuration file. An existing pair with the same date key is replaced.
func (c *Config) AddPairedField(pair fields.Pair) (UpsertResult, error) {
	return c.modifyFields(func(f *FieldsConfig) (UpsertResult, error) {
		return f.upsertPair(pair)
	})
}

// RemoveField removes the classification of name and saves the configuration file.
// For a paired field, naming either the date or the time key removes the whole pair.
func (c *Config) RemoveField(name string) (UpsertResult, error) {
	return c.modifyFields(func(f *FieldsConfig) (UpsertResult, error) {
		return f.remove(name)
	})
}

// SaveConfig saves the current configuration to the config file.
func (c *Config) SaveConfig() error {
	return c.saveConfig()
}

// modifyFields applies fn to the fields section, materializing the built-in classification first
// so edits are made relative to what is currently in effect.
// The configuration is only validated and saved when fn made a change.
func (c *Config) modifyFields(fn func(*FieldsConfig) (UpsertResult, error)) (UpsertResult, error) {
	previous := c.Fields
	if c.Fields == nil {
		c.Fields = &FieldsConfig{
			Direct: fields.DefaultDirect(),
			Paired: fields.DefaultPaired(),
		}
	} else {
		c.Fields = c.Fields.clone()
	}

	result, err := fn(c.Fields)
	if err != nil || result == Noop {
		c.Fields = previous
		return Noop, err
	}

	if err := c.validate(); err != nil {
		c.Fields = previous
		return Noop, err
	}

	if err := c.saveConfig(); err != nil {
		return Noop, fmt.Errorf("failed to save updated config: %w", err)
	}

	return result, nil
}

func (c *Config) saveConfig() error {
	if c.configFilePath == "" {
		return fmt.Errorf("config file path not present")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configFilePath, data, perms.RegularFile)
}

// validate orchestrates validation of configuration structure.
func (c *Config) validate() error {
	if c.Daemon != nil {
		if err := c.Daemon.Validate(); err != nil {
			return fmt.Errorf("daemon configuration error: %w", err)
		}
	}

	if c.Fields != nil {
		if _, err := c.Registry(); err != nil {
			return fmt.Errorf("fields configuration error: %w", err)
		}
	}

	return nil
}
