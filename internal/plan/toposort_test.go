package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSort_Order(t *testing.T) {
	order, err := topoSort(3, func(i int) []int {
		switch i {
		case 0:
			return []int{2}
		case 1:
			return []int{0}
		default:
			return nil
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)
}

func TestTopoSort_SelfDependency(t *testing.T) {
	order, err := topoSort(2, func(i int) []int {
		return []int{i}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, order)
}

func TestTopoSort_Cycle(t *testing.T) {
	// 1 and 2 depend on each other, 0 depends on both.
	order, err := topoSort(3, func(i int) []int {
		switch i {
		case 0:
			return []int{1, 2}
		case 1:
			return []int{2}
		default:
			return []int{1}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestTopoSort_OutOfRange(t *testing.T) {
	_, err := topoSort(1, func(int) []int { return []int{3} })
	assert.Error(t, err)
}
