package codec

import "encoding/json"

type JSON struct {
	Codec
}

func (JSON) Name() string {
	return "json"
}

func (JSON) Encode(val any) ([]byte, error) {
	return json.Marshal(val)
}

func (JSON) Decode(data []byte, val any) error {
	return json.Unmarshal(data, val)
}

func NewJSON() *JSON {
	return new(JSON)
}
