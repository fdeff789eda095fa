package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid manifest")

// LoadFile loads and parses a YAML manifest from the given path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	err := yaml.Unmarshal(data, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	// Apply defaults and normalize
	applyDefaults(&m)

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(m *Manifest) {
	if m.Version == "" {
		m.Version = DefaultVersion
	}

	if m.Output == "" {
		m.Output = DefaultOutput
	}

	if m.Prefix == "" {
		m.Prefix = DefaultPrefix
	}
}

// Validate checks the manifest structure. Type names are resolved later
// against the loaded package.
func (m *Manifest) Validate() error {
	var errs []error

	if m.Package == "" {
		errs = append(errs, fmt.Errorf("%w: package is required", ErrInvalid))
	}

	for i, t := range m.Types {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%w: types[%d] has no name", ErrInvalid, i))
		}
	}

	pairs := lo.Map(m.Types, func(t TypeEntry, _ int) string { return t.Name + " -> " + t.TargetName() })
	for _, pair := range lo.FindDuplicates(pairs) {
		errs = append(errs, fmt.Errorf("%w: duplicate type %s", ErrInvalid, pair))
	}

	for _, name := range lo.FindDuplicates(m.Aliases) {
		errs = append(errs, fmt.Errorf("%w: duplicate alias %q", ErrInvalid, name))
	}

	return errors.Join(errs...)
}

// Marshal serializes a Manifest to YAML.
func Marshal(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// WriteFile writes a Manifest to the given path.
func WriteFile(m *Manifest, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	return nil
}
