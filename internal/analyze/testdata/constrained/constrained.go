// Package constrained holds declarations the analyzer refuses to shape.
package constrained

// Set constrains V by K.
type Set[K comparable, V interface{ ~[]K }] struct {
	Keys V `json:"keys"`
}

// Stream carries a channel.
type Stream struct {
	Events chan int `json:"events"`
}

// Nested holds a pointer to a pointer.
type Nested struct {
	Value **int `json:"value"`
}

// Keyed uses a struct as a map key.
type Keyed struct {
	Index map[Point]int `json:"index"`
}

type Point struct {
	X int `json:"x"`
}

// Skipped members are left out of the shape.
type Skipped struct {
	Kept    int `json:"kept"`
	Dropped int `json:"-"`
	hidden  int
}

type base struct {
	A int `json:"a"`
}

// Embedding promotes the members of base.
type Embedding struct {
	base
	B *string `json:"b"`
}

func Twice(n int) int { return 2 * n }

func Pick[T any](v T) T { return v }
