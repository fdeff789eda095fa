package plan

import (
	"fmt"
	"sort"
	"strings"

	"roundtrip-generator/internal/analyze"
)

// topoSort returns indices with dependencies first.
//
// Nodes are by index in the input slice.
// depsFn(i) yields indices that should come before i; self dependencies are
// ignored.
//
// The result is deterministic: when multiple nodes are available, we pick the
// smallest index. Recursive types form cycles, so when only cycles remain the
// node with the fewest pending dependencies is taken next.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		deps := depsFn(i)
		for _, d := range deps {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			if d == i {
				continue
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	// Deterministic traversal.
	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	emitted := make([]bool, n)
	order := make([]int, 0, n)

	for len(order) < n {
		if len(ready) == 0 {
			// Break the cycle.
			next := -1
			for i := range n {
				if !emitted[i] && (next < 0 || indeg[i] < indeg[next]) {
					next = i
				}
			}

			indeg[next] = 0
			ready = append(ready, next)
		}

		i := ready[0]
		ready = ready[1:]

		emitted[i] = true
		order = append(order, i)

		for _, j := range out[i] {
			if emitted[j] || indeg[j] == 0 {
				continue
			}

			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	return order, nil
}

func compareIDs(a, b analyze.TypeID) int {
	return strings.Compare(a.String(), b.String())
}
