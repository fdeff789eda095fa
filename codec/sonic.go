package codec

import "github.com/bytedance/sonic"

// Sonic encodes JSON with the configuration compatible with encoding/json,
// so map keys are emitted in sorted order.
type Sonic struct {
	Codec
}

func (Sonic) Name() string {
	return "sonic"
}

func (Sonic) Encode(val any) ([]byte, error) {
	return sonic.ConfigStd.Marshal(val)
}

func (Sonic) Decode(data []byte, val any) error {
	return sonic.ConfigStd.Unmarshal(data, val)
}

func NewSonic() *Sonic {
	return new(Sonic)
}
