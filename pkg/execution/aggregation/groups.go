package aggregation

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// groupTable maps group key fields to per-group state, remembering first-seen
// order. Keys are bucketed by hash and resolved with Equals.
type groupTable[S any] struct {
	buckets map[primitives.HashCode][]*group[S]
	order   []*group[S]
}

type group[S any] struct {
	key   types.Field // nil when ungrouped
	state S
}

func newGroupTable[S any]() *groupTable[S] {
	return &groupTable[S]{buckets: make(map[primitives.HashCode][]*group[S])}
}

// lookup returns the group for key, creating it with init when absent.
func (g *groupTable[S]) lookup(key types.Field, init func() S) *group[S] {
	var h primitives.HashCode
	if key != nil {
		h = key.Hash()
	}

	for _, grp := range g.buckets[h] {
		if sameKey(grp.key, key) {
			return grp
		}
	}

	grp := &group[S]{key: key, state: init()}
	g.buckets[h] = append(g.buckets[h], grp)
	g.order = append(g.order, grp)
	return grp
}

func (g *groupTable[S]) len() int {
	return len(g.order)
}

func sameKey(a, b types.Field) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// groupKey extracts the grouping field of t, or nil when ungrouped.
func groupKey(spec Spec, t *tuple.Tuple) (types.Field, error) {
	if !spec.Grouped() {
		return nil, nil
	}
	key := t.GetField(spec.GroupField)
	if key == nil {
		return nil, errMissingField(spec.GroupField)
	}
	return key, nil
}

// resultTuple assembles [group?, values...] under td.
func resultTuple(td *tuple.TupleDescription, key types.Field, values ...types.Field) *tuple.Tuple {
	t := tuple.NewTuple(td)
	i := 0
	if key != nil {
		t.SetField(i, key)
		i++
	}
	for _, v := range values {
		t.SetField(i, v)
		i++
	}
	return t
}

func errMissingField(i int) error {
	return dberror.ErrNotFound.Detailf("tuple has no field %d", i)
}
