// Package critbit implements a critical-bit trie: an ordered map from byte
// string keys to values, stored as a binary tree with path compression. Every
// internal node tests exactly one bit, the first bit at which its two
// subtrees differ, so the shape of the tree is fully determined by the key
// set regardless of insertion order.
//
// Keys are byte slices. Go strings are UTF-8, so string keys pass through a
// plain []byte(s) conversion with no further normalization. Keys shorter than
// a branch's tested position read as zero bytes, which means a key extending
// another stored key by only zero bytes cannot be told apart from it and must
// not be stored.
//
// Beyond the usual ordered-map operations the tree maintains a cached entry
// count per subtree, which makes RandomWalk select a uniformly random entry
// in O(depth) rather than O(n).
//
// The tree is not safe for concurrent use. Writers must exclude all other
// operations, including reads, with a mutex around the whole tree.
package critbit

import (
	"bytes"
	"errors"
	"iter"
)

var (
	// ErrNotFound reports a key with no matching entry.
	ErrNotFound = errors.New("NotFound")

	// ErrPrefixAbsent reports a prefix matched by no stored key. A present
	// prefix always matches at least one entry, so this is distinct from an
	// empty result.
	ErrPrefixAbsent = errors.New("PrefixAbsent")
)

// Source supplies randomness for RandomWalk. *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Tree is the critbit trie. The zero value is an empty tree ready for use.
type Tree[V any] struct {
	root node[V]
}

func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Count returns the number of stored entries.
func (t *Tree[V]) Count() int {
	if t.root == nil {
		return 0
	}
	return t.root.count()
}

// Insert stores value under key and returns the new entry. If key is already
// present the stored value is left unchanged and the existing entry is
// returned; callers wanting to overwrite must Delete first. The tree keeps
// key without copying, so callers must not modify it afterwards.
func (t *Tree[V]) Insert(key []byte, value V) *Entry[V] {
	if t.root == nil {
		e := &Entry[V]{key: key, Value: value}
		t.root = e
		return e
	}

	// Find the stored entry closest to key by bit pattern. If its key is an
	// exact match there is nothing to do.
	nearest := t.root.walk(key)
	if bytes.Equal(key, nearest.key) {
		return nearest
	}

	// Build a branch from the critical bit between key and the nearest key,
	// attach the new entry on its own side, and let the recursion splice the
	// branch in at the depth its bit position demands.
	e := &Entry[V]{key: key, Value: value}
	n := newBranch[V](key, nearest.key)
	n.setChild(n.direction(key), e)
	t.root = t.root.insert(key, n)
	if n.child[0] == nil || n.child[1] == nil {
		panic("BUG: critbit: insert left a branch half built")
	}
	return e
}

// Lookup returns the value stored under key, or ErrNotFound.
func (t *Tree[V]) Lookup(key []byte) (V, error) {
	var zero V
	if t.root == nil {
		return zero, ErrNotFound
	}
	e := t.root.walk(key)
	if !bytes.Equal(key, e.key) {
		return zero, ErrNotFound
	}
	return e.Value, nil
}

// Delete removes key and returns its entry, or ErrNotFound if absent.
func (t *Tree[V]) Delete(key []byte) (*Entry[V], error) {
	if t.root == nil {
		return nil, ErrNotFound
	}
	root, removed := t.root.delete(key)
	t.root = root
	if removed == nil {
		return nil, ErrNotFound
	}
	return removed, nil
}

// Traverse returns all entries in lexicographic key order. The sequence is
// lazy and restartable.
func (t *Tree[V]) Traverse() iter.Seq[*Entry[V]] {
	if t.root == nil {
		return func(yield func(*Entry[V]) bool) {}
	}
	return t.root.traverse()
}

// TraversePrefix returns the entries whose keys start with prefix, in
// lexicographic order. An empty prefix yields the whole tree. When no stored
// key has the prefix the error is ErrPrefixAbsent.
func (t *Tree[V]) TraversePrefix(prefix []byte) (iter.Seq[*Entry[V]], error) {
	if t.root == nil {
		return func(yield func(*Entry[V]) bool) {}, nil
	}
	if len(prefix) == 0 {
		return t.root.traverse(), nil
	}

	// top is the root of the subtree whose keys could carry the prefix: the
	// deepest node reached before the branch bit positions pass the end of
	// the prefix. Any one entry under top witnesses whether the prefix is
	// actually present, because all of them share its first len(prefix)
	// bytes.
	top := t.root.findTop(prefix, t.root)
	if !bytes.HasPrefix(top.walk(prefix).key, prefix) {
		return nil, ErrPrefixAbsent
	}
	return top.traverse(), nil
}

// FirstGreaterThan returns the entry with the smallest key strictly greater
// than key. With cyclic set, a key at or past the largest stored key wraps
// around to the smallest entry, treating the key space as a ring.
func (t *Tree[V]) FirstGreaterThan(key []byte, cyclic bool) (*Entry[V], error) {
	if t.root == nil {
		return nil, ErrNotFound
	}
	e := t.root.firstGreaterThan(key)
	if e == nil && cyclic {
		// Walking with an empty key takes the 0 side at every branch,
		// landing on the smallest entry.
		e = t.root.walk(nil)
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// RandomWalk returns a uniformly random stored value, each entry with
// probability 1/Count regardless of tree shape or key content. Repeatable
// routing wants a deterministically seeded rng; the tree imposes no policy.
func (t *Tree[V]) RandomWalk(rng Source) (V, error) {
	var zero V
	if t.root == nil {
		return zero, ErrNotFound
	}
	return t.root.randomWalk(rng).Value, nil
}
