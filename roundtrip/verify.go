package roundtrip

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/davecgh/go-spew/spew"

	"roundtrip-generator/codec"
)

var ErrMismatch = errors.New("round-trip differs from decoding")

// Verify checks f against c for the value v: f(v) must deeply equal the
// result of decoding c's encoding of v as a T.
func Verify[S, T any](c codec.Codec, f Func[S, T], v S) error {
	got := f(v)

	data, err := c.Encode(v)
	if err != nil {
		return fmt.Errorf("%s: encode %T: %w", c.Name(), v, err)
	}

	var want T
	if err = c.Decode(data, &want); err != nil {
		return fmt.Errorf("%s: decode %T: %w", c.Name(), want, err)
	}

	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("%s: %w\nencoded: %s\nround-trip:\n%sdecoded:\n%s",
			c.Name(), ErrMismatch, data, spew.Sdump(got), spew.Sdump(want))
	}

	return nil
}
