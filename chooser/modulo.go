package chooser

import (
	"slices"

	"hashpick.dev/hashpick/util/murmur"
)

// Modulo hashes the message and indexes the worker list directly. It is the
// baseline the consistent strategies are measured against: the cheapest
// possible pick, but any change to the worker set remaps almost every
// message.
type Modulo struct{}

func (c *Modulo) Name() string { return "modulo" }

func (c *Modulo) Build(workers [][]byte) PickFunc {
	requireWorkers(workers)
	ws := slices.Clone(workers)
	return func(message []byte) []byte {
		return ws[murmur.Hash(message, 0)%uint32(len(ws))]
	}
}
