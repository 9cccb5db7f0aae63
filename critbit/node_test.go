package critbit

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBranchCriticalBit(t *testing.T) {
	// 'a' = 0x61, 'c' = 0x63: first difference at byte 2, bit 0x02.
	b := newBranch[int]([]byte("aba"), []byte("abc"))
	assert.Equal(t, 2, b.pos)
	assert.Equal(t, byte(0x02), b.mask)

	// A key ending early reads as zero bytes, so the critical bit of
	// "ab"/"abc" is the high bit of 'c'.
	b = newBranch[int]([]byte("ab"), []byte("abc"))
	assert.Equal(t, 2, b.pos)
	assert.Equal(t, byte(0x40), b.mask)
}

func TestNewBranchEqualKeysPanics(t *testing.T) {
	assert.Panics(t, func() {
		newBranch[int]([]byte("same"), []byte("same"))
	})
}

func TestDirection(t *testing.T) {
	b := &branch[int]{pos: 1, mask: 0x01}
	assert.Equal(t, 1, b.direction([]byte{0x00, 0x01}))
	assert.Equal(t, 0, b.direction([]byte{0x00, 0x02}))
	// Keys shorter than pos+1 read a zero byte.
	assert.Equal(t, 0, b.direction([]byte{0xff}))
	assert.Equal(t, 0, b.direction(nil))
}

// Branch shape must be a pure function of the key set. Traversal order alone
// would not catch a broken specificity order, so compare positions and masks
// node by node.
func TestShapeCanonicalStructure(t *testing.T) {
	keySet := [][]byte{
		[]byte("abc"), []byte("abcd"), []byte("bbcd"), []byte("a"),
	}

	reference := New[int]()
	for i, k := range keySet {
		reference.Insert(k, i)
	}

	perms := [][]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1},
		{0, 2, 1, 3}, {3, 1, 2, 0},
	}
	for _, order := range perms {
		tree := New[int]()
		for _, i := range order {
			tree.Insert(keySet[i], i)
		}
		requireSameShape(t, reference.root, tree.root)
	}
}

func requireSameShape[V any](t *testing.T, want, got node[V]) {
	t.Helper()
	switch w := want.(type) {
	case *Entry[V]:
		g, ok := got.(*Entry[V])
		require.True(t, ok, "expected entry %q, got branch", w.key)
		require.Equal(t, w.key, g.key)
	case *branch[V]:
		g, ok := got.(*branch[V])
		require.True(t, ok, "expected branch at pos %d, got entry", w.pos)
		require.Equal(t, w.pos, g.pos)
		require.Equal(t, w.mask, g.mask)
		require.Equal(t, w.size, g.size)
		requireSameShape(t, w.child[0], g.child[0])
		requireSameShape(t, w.child[1], g.child[1])
	}
}

// Cached sizes must track the real entry counts through an arbitrary mix of
// inserts and deletes.
func TestCachedCountsStayFresh(t *testing.T) {
	tree := New[int]()
	rng := rand.New(rand.NewPCG(17, 19))

	live := map[string]bool{}
	for i := range 2000 {
		key := make([]byte, 2)
		binary.BigEndian.PutUint16(key, uint16(rng.IntN(512)))
		if rng.IntN(3) == 0 {
			if _, err := tree.Delete(key); err == nil {
				delete(live, string(key))
			}
		} else {
			tree.Insert(key, i)
			live[string(key)] = true
		}
		requireFreshCounts(t, tree.root)
	}
	require.Equal(t, len(live), tree.Count())
}

// requireFreshCounts recomputes subtree sizes and returns the real count.
func requireFreshCounts[V any](t *testing.T, n node[V]) int {
	t.Helper()
	if n == nil {
		return 0
	}
	b, ok := n.(*branch[V])
	if !ok {
		return 1
	}
	actual := requireFreshCounts(t, b.child[0]) + requireFreshCounts(t, b.child[1])
	require.Equal(t, actual, b.size, "cached size drifted at pos %d", b.pos)
	return actual
}

// Specificity must strictly increase along every root-to-leaf path.
func TestSpecificityOrderHolds(t *testing.T) {
	tree := New[int]()
	rng := rand.New(rand.NewPCG(23, 29))
	for i := range 500 {
		key := make([]byte, 1+rng.IntN(6))
		for j := range key {
			key[j] = byte(1 + rng.IntN(3)) // few distinct bytes force deep shapes
		}
		tree.Insert(key, i)
	}
	if b, ok := tree.root.(*branch[int]); ok {
		requireDescendantsMoreSpecific(t, b)
	}
}

func requireDescendantsMoreSpecific[V any](t *testing.T, b *branch[V]) {
	t.Helper()
	for _, c := range b.child {
		child, ok := c.(*branch[V])
		if !ok {
			continue
		}
		require.True(t, child.moreSpecific(b),
			"child %d:%08b under %d:%08b violates specificity order",
			child.pos, child.mask, b.pos, b.mask)
		requireDescendantsMoreSpecific(t, child)
	}
}
