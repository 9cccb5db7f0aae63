package chooser

import (
	"bytes"
	"slices"
	"sort"

	"github.com/segmentio/ksuid"
)

const defaultVNodes = 250

// Ring is a classic consistent hash ring. Every worker occupies VNodes
// positions on the ring, derived by hashing the worker id with each of a
// shared set of random tokens. A message routes to the owner of the first
// position at or after the message's digest, wrapping past the top of the
// ring to position zero.
type Ring struct {
	Hash   Hash
	VNodes int // ring positions per worker, defaults to 250
}

type ringPoint struct {
	pos    []byte
	worker []byte
}

func (c *Ring) Name() string { return "ring" }

func (c *Ring) Build(workers [][]byte) PickFunc {
	requireWorkers(workers)
	hash := c.Hash
	if hash == nil {
		hash = MD5
	}
	vnodes := c.VNodes
	if vnodes <= 0 {
		vnodes = defaultVNodes
	}

	tokens := make([][]byte, vnodes)
	for i := range tokens {
		tokens[i] = ksuid.New().Bytes()
	}

	points := make([]ringPoint, 0, vnodes*len(workers))
	for _, w := range workers {
		for _, tok := range tokens {
			points = append(points, ringPoint{pos: hash(tok, w), worker: w})
		}
	}
	slices.SortFunc(points, func(a, b ringPoint) int {
		return bytes.Compare(a.pos, b.pos)
	})

	return func(message []byte) []byte {
		h := hash(message)
		i := sort.Search(len(points), func(i int) bool {
			return bytes.Compare(points[i].pos, h) >= 0
		})
		if i == len(points) {
			i = 0
		}
		return points[i].worker
	}
}
