package codec

import "gopkg.in/yaml.v3"

// YAML does not distinguish nil slices and maps from empty ones: both
// decode as empty containers.
type YAML struct {
	Codec
}

func (YAML) Name() string {
	return "yaml"
}

func (YAML) Encode(val any) ([]byte, error) {
	return yaml.Marshal(val)
}

func (YAML) Decode(data []byte, val any) error {
	return yaml.Unmarshal(data, val)
}

func NewYAML() *YAML {
	return new(YAML)
}
