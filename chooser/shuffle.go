package chooser

import "slices"

// Shuffle deals the workers into a message-specific permutation and takes the
// first card. A djb2 hash accumulator seeded from the message drives the
// Fisher-Yates placement, and each chosen position folds back into the
// accumulator so later placements depend on the earlier ones.
type Shuffle struct{}

func (c *Shuffle) Name() string { return "shuffle" }

func (c *Shuffle) Build(workers [][]byte) PickFunc {
	ws := slices.Clone(workers)
	requireWorkers(ws)

	return func(message []byte) []byte {
		h := uint32(5381)
		for _, b := range message {
			h = h*33 + uint32(b)
		}

		order := make([][]byte, 0, len(ws))
		for i, w := range ws {
			pos := int(h>>13) % (i + 1)
			h = h*33 + uint32(pos)
			if pos != i {
				order = append(order, order[pos])
				order[pos] = w
			} else {
				order = append(order, w)
			}
		}
		return order[0]
	}
}
