// Package edges holds types exercising the less common generated forms.
package edges

import "math/big"

type Octet uint8

type Blob []byte

type Level int32

type Raw struct {
	Data  []byte `json:"data"`
	Blob  []byte `json:"blob"`
	Level int32  `json:"level,omitempty"`
	Point struct {
		X int `json:"x"`
	} `json:"point"`
	Grid map[string]struct {
		X int `json:"x"`
	} `json:"grid"`
	Flag    bool             `json:"flag,omitempty"`
	Name    string           `json:"name,omitempty"`
	Wrapped []int            `json:"wrapped"`
	Counts  map[string][]int `json:"counts"`
	Amount  big.Int          `json:"amount"`
}

type Cooked struct {
	Data  []Octet `json:"data"`
	Blob  Blob    `json:"blob"`
	Level Level   `json:"level,omitempty"`
	Point struct {
		X int `json:"x"`
	} `json:"point"`
	Grid map[string]struct {
		X int `json:"x"`
	} `json:"grid"`
	Flag    bool              `json:"flag,omitempty"`
	Name    string            `json:"name,omitempty"`
	Wrapped *[]int            `json:"wrapped"`
	Counts  map[string]*[]int `json:"counts"`
	Amount  big.Int           `json:"amount"`
}

type Box[K comparable, V any] struct {
	Items map[K]*V `json:"items"`
	Keys  []K      `json:"keys,omitempty"`
	Value V        `json:"value,omitempty"`
}
