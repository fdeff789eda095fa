package plan

import (
	"slices"

	"github.com/samber/lo"
)

// dealer hands out pairs still to be planned, each at most once.
type dealer struct {
	needs map[Pair]struct{}
	done  map[Pair]struct{}
}

// NextNeeds returns the smallest pending pair by name and marks it done.
func (d *dealer) NextNeeds() (Pair, bool) {
	if len(d.needs) == 0 {
		return Pair{}, false
	}

	pair := slices.MinFunc(lo.Keys(d.needs), comparePairs)
	d.Done(pair)

	return pair, true
}

func (d *dealer) Needs(pair Pair) {
	if d.needs == nil {
		d.needs = make(map[Pair]struct{})
	}

	if _, exists := d.done[pair]; !exists {
		d.needs[pair] = struct{}{}
	}
}

func (d *dealer) Done(pair Pair) {
	if d.done == nil {
		d.done = make(map[Pair]struct{})
	}

	delete(d.needs, pair)
	d.done[pair] = struct{}{}
}

func comparePairs(a, b Pair) int {
	if c := compareIDs(a.Source, b.Source); c != 0 {
		return c
	}

	return compareIDs(a.Target, b.Target)
}
