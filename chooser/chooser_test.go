package chooser_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hashpick.dev/hashpick/chooser"
	"hashpick.dev/hashpick/util/murmur"
)

func allChoosers() []chooser.Chooser {
	return []chooser.Chooser{
		&chooser.Trie{},
		&chooser.Ring{VNodes: 64},
		&chooser.Rendezvous{},
		&chooser.Shuffle{},
		&chooser.Modulo{},
	}
}

func randomIDs(n int) [][]byte {
	ids := make([][]byte, n)
	for i := range ids {
		ids[i] = ksuid.New().Bytes()
	}
	return ids
}

func TestPickIsRepeatable(t *testing.T) {
	workers := randomIDs(8)
	messages := randomIDs(50)

	for _, c := range allChoosers() {
		t.Run(c.Name(), func(t *testing.T) {
			pick := c.Build(workers)
			for _, m := range messages {
				first := pick(m)
				assert.Equal(t, first, pick(m), "same message must route to the same worker")
			}
		})
	}
}

func TestPickReturnsKnownWorker(t *testing.T) {
	workers := randomIDs(5)
	known := make(map[string]bool, len(workers))
	for _, w := range workers {
		known[string(w)] = true
	}

	for _, c := range allChoosers() {
		t.Run(c.Name(), func(t *testing.T) {
			pick := c.Build(workers)
			for _, m := range randomIDs(200) {
				assert.True(t, known[string(pick(m))])
			}
		})
	}
}

func TestSingleWorker(t *testing.T) {
	workers := randomIDs(1)
	for _, c := range allChoosers() {
		t.Run(c.Name(), func(t *testing.T) {
			pick := c.Build(workers)
			assert.Equal(t, workers[0], pick([]byte("anything")))
		})
	}
}

func TestBuildEmptyWorkerSetPanics(t *testing.T) {
	for _, c := range allChoosers() {
		t.Run(c.Name(), func(t *testing.T) {
			assert.Panics(t, func() { c.Build(nil) })
		})
	}
}

// Every chooser should spread uniform random messages within a factor of two
// of a perfectly even split.
func TestBalance(t *testing.T) {
	const nworkers, nmessages = 16, 16000
	workers := randomIDs(nworkers)
	messages := randomIDs(nmessages)
	expected := nmessages / nworkers

	for _, c := range allChoosers() {
		t.Run(c.Name(), func(t *testing.T) {
			pick := c.Build(workers)
			counts := make(map[string]int, nworkers)
			for _, m := range messages {
				counts[string(pick(m))]++
			}
			require.Len(t, counts, nworkers, "every worker should receive messages")
			for w, n := range counts {
				assert.Greater(t, n, expected/2, "worker %x starved", w)
				assert.Less(t, n, expected*2, "worker %x overloaded", w)
			}
		})
	}
}

// The trie chooser's tree shape is canonical for a worker set, so two
// independently built choosers agree even when the workers arrive in a
// different order.
func TestTrieAgreesAcrossBuilds(t *testing.T) {
	workers := randomIDs(12)
	shuffled := make([][]byte, len(workers))
	copy(shuffled, workers)
	rng := rand.New(rand.NewPCG(1, 2))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pickA := (&chooser.Trie{}).Build(workers)
	pickB := (&chooser.Trie{}).Build(shuffled)
	for _, m := range randomIDs(500) {
		assert.Equal(t, pickA(m), pickB(m))
	}
}

// Rendezvous scores workers independently, so dropping one worker remaps only
// the messages that worker owned.
func TestRendezvousMinimalRemapping(t *testing.T) {
	workers := randomIDs(8)
	messages := randomIDs(1000)

	pick := (&chooser.Rendezvous{}).Build(workers)
	before := make([][]byte, len(messages))
	for i, m := range messages {
		before[i] = pick(m)
	}

	removed := workers[3]
	survivors := append(append([][]byte{}, workers[:3]...), workers[4:]...)
	pickAfter := (&chooser.Rendezvous{}).Build(survivors)

	for i, m := range messages {
		if bytes.Equal(before[i], removed) {
			continue
		}
		assert.Equal(t, before[i], pickAfter(m), "message %d moved without cause", i)
	}
}

func TestMurmurHashChaining(t *testing.T) {
	// Multi-part digests must differ from the digest of the concatenation,
	// and from reordered parts, or (message, worker) scores would collide.
	a, b := []byte("part-a"), []byte("part-b")
	assert.NotEqual(t, chooser.Murmur(a, b), chooser.Murmur(b, a))
	assert.Equal(t, chooser.Murmur(a, b), chooser.Murmur(a, b))
	assert.Len(t, chooser.Murmur(a), 4)
	assert.Len(t, chooser.MD5(a, b), 16)

	// Each part's digest seeds the next part's hash.
	want := make([]byte, 4)
	binary.BigEndian.PutUint32(want, murmur.Hash(b, murmur.Hash(a, 0)))
	assert.Equal(t, want, chooser.Murmur(a, b))
}

func BenchmarkPick(b *testing.B) {
	for _, nworkers := range []int{8, 64} {
		workers := randomIDs(nworkers)
		messages := randomIDs(1024)
		for _, c := range allChoosers() {
			b.Run(fmt.Sprintf("%s_workers_%d", c.Name(), nworkers), func(b *testing.B) {
				pick := c.Build(workers)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					pick(messages[i%len(messages)])
				}
			})
		}
	}
}
