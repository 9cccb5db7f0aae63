package chooser

import "bytes"

// Rendezvous is highest-random-weight hashing: every message scores every
// worker with hash(message, worker) and picks the highest score. No shared
// state between picks, O(workers) per message, and removing a worker only
// remaps the messages that worker owned.
type Rendezvous struct {
	Hash Hash // defaults to MD5
}

func (c *Rendezvous) Name() string { return "rendezvous" }

func (c *Rendezvous) Build(workers [][]byte) PickFunc {
	requireWorkers(workers)
	hash := c.Hash
	if hash == nil {
		hash = MD5
	}

	return func(message []byte) []byte {
		var best, bestScore []byte
		for _, w := range workers {
			score := hash(message, w)
			if bestScore == nil || bytes.Compare(score, bestScore) > 0 {
				best, bestScore = w, score
			}
		}
		return best
	}
}
