package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default manifest values.
const (
	DefaultVersion = "1"
	DefaultOutput  = "roundtrip_gen.go"
	DefaultPrefix  = "RoundTrip"
)

// Manifest represents the root of a YAML derive manifest.
type Manifest struct {
	// Version of the manifest schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Package is the package pattern holding the types, e.g. "./examples/deriving".
	Package string `yaml:"package"`

	// Output is the generated file name, written into the package directory.
	Output string `yaml:"output,omitempty"`

	// Prefix is prepended to type names to form function names.
	Prefix string `yaml:"prefix,omitempty"`

	// Types lists the declared types to generate round-trip functions for.
	// Nested types of the same package are generated as well.
	// An entry with a target derives the function from one declared type
	// into another.
	Types []TypeEntry `yaml:"types"`

	// Aliases names package functions func(From) To whose target decodes
	// like From followed by the function.
	Aliases []string `yaml:"aliases,omitempty"`
}

// TypeEntry selects a declared type.
type TypeEntry struct {
	// Name is the type name within the package.
	Name string `yaml:"name"`

	// Target is the type the encoded Name is decoded as. Defaults to Name.
	Target string `yaml:"target,omitempty"`

	// Func overrides the generated function name.
	Func string `yaml:"func,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for TypeEntry.
// Accepts either a bare type name or a mapping.
func (t *TypeEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&t.Name)

	case yaml.MappingNode:
		type plain TypeEntry

		return node.Decode((*plain)(t))

	default:
		return fmt.Errorf("expected type name or mapping, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for TypeEntry.
// Outputs the bare name when no function name is set.
func (t TypeEntry) MarshalYAML() (any, error) {
	if t.Func == "" && t.Target == "" {
		return t.Name, nil
	}

	type plain TypeEntry

	return plain(t), nil
}

// TargetName returns the name of the target type.
func (t TypeEntry) TargetName() string {
	if t.Target == "" {
		return t.Name
	}

	return t.Target
}

// TypeNames returns the selected type names in manifest order.
func (m *Manifest) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for _, t := range m.Types {
		names = append(names, t.Name)
	}

	return names
}
