// Package mismatch holds type pairs that cannot be derived.
package mismatch

import (
	"encoding/json"
	"net/url"
	"strings"
)

type Short struct {
	A int `json:"a"`
}

type Long struct {
	A int `json:"a"`
	B int `json:"b"`
}

type Left struct {
	Value *int `json:"left,omitempty"`
}

func (Left) TaggedUnion() {}

type Right struct {
	Value *int `json:"right,omitempty"`
}

func (Right) TaggedUnion() {}

type Trio struct {
	Values [3]int `json:"values"`
}

type Quad struct {
	Values [4]int `json:"values"`
}

type Before struct {
	Email string `json:"email"`
}

type After struct {
	Emails string `json:"email"`
}

type Link struct {
	Target url.URL `json:"target"`
}

type Pipe struct {
	Events chan int `json:"events"`
}

type Generic[T any] struct {
	Value T `json:"value"`
}

type Plain struct {
	Value int `json:"value"`
}

type Orders struct {
	Items []string `json:"items"`
}

type Code string

func FoldCode(s string) Code { return Code(strings.ToUpper(s)) }

func Double(n int) int { return 2 * n }

// Tape encodes itself but cannot be decoded, so it cannot be copied.
type Tape struct {
	frames []int
}

func (t Tape) MarshalJSON() ([]byte, error) { return json.Marshal(t.frames) }

type Reel struct {
	Tape Tape `json:"tape"`
}
