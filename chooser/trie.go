package chooser

import (
	"encoding/binary"
	"math/rand/v2"

	"hashpick.dev/hashpick/critbit"
)

// Trie routes with a cardinality-weighted random walk over a critbit tree
// keyed by worker digests. The walk's randomness is seeded from the message
// digest, so routing is repeatable while staying uniform across workers. Two
// Trie choosers built over the same worker set route identically: the tree's
// shape is canonical for a key set and the seeds carry no process state.
type Trie struct {
	Hash Hash // defaults to MD5
}

func (c *Trie) Name() string { return "trie" }

func (c *Trie) Build(workers [][]byte) PickFunc {
	requireWorkers(workers)
	hash := c.Hash
	if hash == nil {
		hash = MD5
	}

	tree := critbit.New[[]byte]()
	for _, w := range workers {
		tree.Insert(hash(w), w)
	}

	return func(message []byte) []byte {
		hi, lo := seed(hash(message))
		rng := rand.New(rand.NewPCG(hi, lo))
		worker, _ := tree.RandomWalk(rng) // tree is never empty here
		return worker
	}
}

// seed splits a digest into the two uint64 halves a PCG wants. Digests
// shorter than 16 bytes are zero padded.
func seed(digest []byte) (uint64, uint64) {
	var buf [16]byte
	copy(buf[:], digest)
	return binary.BigEndian.Uint64(buf[:8]), binary.BigEndian.Uint64(buf[8:])
}
