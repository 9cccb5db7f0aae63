package critbit

import (
	"bytes"
	"iter"
)

// Entry is one stored key/value pair, the leaf of the tree.
type Entry[V any] struct {
	key   []byte
	Value V
}

// Key returns the entry's key. Callers must not modify the returned slice.
func (e *Entry[V]) Key() []byte { return e.key }

func (e *Entry[V]) count() int { return 1 }

// walk terminates a descent. The entry is the closest stored key to the
// search key in terms of critical bits shared, which may not share a prefix
// with it. Callers verify.
func (e *Entry[V]) walk(key []byte) *Entry[V] { return e }

func (e *Entry[V]) traverse() iter.Seq[*Entry[V]] {
	return func(yield func(*Entry[V]) bool) {
		yield(e)
	}
}

func (e *Entry[V]) findTop(prefix []byte, top node[V]) node[V] { return top }

func (e *Entry[V]) firstGreaterThan(key []byte) *Entry[V] {
	if bytes.Compare(e.key, key) > 0 {
		return e
	}
	return nil
}

// insert places n directly above this entry. The new entry is already in the
// child slot its key selects, so this entry takes the other slot.
func (e *Entry[V]) insert(key []byte, n *branch[V]) node[V] {
	n.setChild(1-n.direction(key), e)
	return n
}

// delete reports a match by returning a nil replacement, which tells the
// parent branch to collapse into its other child.
func (e *Entry[V]) delete(key []byte) (node[V], *Entry[V]) {
	if bytes.Equal(key, e.key) {
		return nil, e
	}
	return e, nil
}

func (e *Entry[V]) randomWalk(rng Source) *Entry[V] { return e }
