package critbit

import (
	"bytes"
	"iter"
	"math/bits"
)

// node is either an *Entry leaf or a *branch. Structural mutations return the
// replacement for the receiver so that parents can swap a child in place
// without back references.
type node[V any] interface {
	count() int
	walk(key []byte) *Entry[V]
	traverse() iter.Seq[*Entry[V]]
	findTop(prefix []byte, top node[V]) node[V]
	firstGreaterThan(key []byte) *Entry[V]
	insert(key []byte, n *branch[V]) node[V]
	delete(key []byte) (node[V], *Entry[V])
	randomWalk(rng Source) *Entry[V]
}

// branch tests one critical bit: the bit under mask in the byte at pos. Keys
// with that bit clear live under child[0], the rest under child[1]. size
// caches the number of entries below.
type branch[V any] struct {
	pos   int
	mask  byte
	child [2]node[V]
	size  int
}

// newBranch computes the critical bit between two distinct keys: the most
// significant differing bit of the first differing byte. The shorter key
// reads as zero bytes past its end. Equal keys have no critical bit and
// indicate a caller bug.
func newBranch[V any](a, b []byte) *branch[V] {
	pos := commonPrefixLen(a, b)
	diff := byteAt(a, pos) ^ byteAt(b, pos)
	if diff == 0 {
		panic("BUG: critbit: no critical bit between equal keys")
	}
	mask := byte(1) << (7 - bits.LeadingZeros8(diff))
	return &branch[V]{pos: pos, mask: mask}
}

func commonPrefixLen(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func byteAt(key []byte, pos int) byte {
	if pos < len(key) {
		return key[pos]
	}
	return 0
}

func (b *branch[V]) count() int { return b.size }

// setChild is the only way a child pointer changes, so the cached size cannot
// drift from the children.
func (b *branch[V]) setChild(dir int, n node[V]) {
	b.child[dir] = n
	b.size = 0
	for _, c := range b.child {
		if c != nil {
			b.size += c.count()
		}
	}
}

// direction selects the child for key: 1 when the critical bit is set.
func (b *branch[V]) direction(key []byte) int {
	if byteAt(key, b.pos)&b.mask != 0 {
		return 1
	}
	return 0
}

func (b *branch[V]) walk(key []byte) *Entry[V] {
	return b.child[b.direction(key)].walk(key)
}

func (b *branch[V]) traverse() iter.Seq[*Entry[V]] {
	return func(yield func(*Entry[V]) bool) {
		for e := range b.child[0].traverse() {
			if !yield(e) {
				return
			}
		}
		for e := range b.child[1].traverse() {
			if !yield(e) {
				return
			}
		}
	}
}

// findTop descends while this branch still tests a byte inside the prefix.
// Once pos reaches the prefix length, every key below agrees on all prefix
// bytes, so the last node reached on the way down is the top of the prefix's
// subtree. Whether the prefix is actually present is the caller's check.
func (b *branch[V]) findTop(prefix []byte, top node[V]) node[V] {
	if b.pos < len(prefix) {
		next := b.child[b.direction(prefix)]
		return next.findTop(prefix, next)
	}
	return top
}

func (b *branch[V]) firstGreaterThan(key []byte) *Entry[V] {
	// When even the smallest entry below exceeds key, it is the answer.
	// This also covers keys that diverge from the subtree's common prefix
	// before pos, where the direction test would read a meaningless byte.
	if leftmost := b.walk(nil); bytes.Compare(leftmost.key, key) > 0 {
		return leftmost
	}
	dir := b.direction(key)
	e := b.child[dir].firstGreaterThan(key)
	if e == nil && dir == 0 {
		// Everything under child 1 sorts after everything under child 0.
		e = b.child[1].firstGreaterThan(key)
	}
	return e
}

// moreSpecific reports whether b sits deeper than other in the tree: it
// tests a later byte, or a less significant bit of the same byte.
func (b *branch[V]) moreSpecific(other *branch[V]) bool {
	return b.pos > other.pos || (b.pos == other.pos && b.mask < other.mask)
}

// insert splices n into the subtree rooted at b and returns the replacement
// for b. n arrives with the new entry already in the child slot key selects.
func (b *branch[V]) insert(key []byte, n *branch[V]) node[V] {
	if b.moreSpecific(n) {
		// b belongs below n: n takes b's place in the parent and adopts b on
		// the side the new key does not occupy.
		n.setChild(1-n.direction(key), b)
		return n
	}
	dir := b.direction(key)
	b.setChild(dir, b.child[dir].insert(key, n))
	return b
}

func (b *branch[V]) delete(key []byte) (node[V], *Entry[V]) {
	dir := b.direction(key)
	child, removed := b.child[dir].delete(key)
	if child == nil {
		// The entry under dir is gone. Collapse this branch into its
		// surviving child.
		return b.child[1-dir], removed
	}
	b.setChild(dir, child)
	return b, removed
}

// randomWalk descends choosing each side with probability proportional to its
// entry count, so every entry below is reached with probability 1/size.
func (b *branch[V]) randomWalk(rng Source) *Entry[V] {
	dir := 0
	if rng.IntN(b.size) >= b.child[0].count() {
		dir = 1
	}
	return b.child[dir].randomWalk(rng)
}
