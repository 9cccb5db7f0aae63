// Package chooser provides strategies that route messages to workers. A
// chooser is built once over a fixed worker set and then answers "which
// worker handles this message" deterministically: the same message and the
// same worker set always yield the same worker.
//
// Four strategies with the same contract are provided: Trie (weighted random
// walk over a critbit tree), Ring (sorted vnode ring with binary search),
// Rendezvous (highest random weight) and Shuffle (hash-driven permutation).
package chooser

import (
	"crypto/md5"
	"encoding/binary"

	"hashpick.dev/hashpick/util/murmur"
)

// A PickFunc routes one message to a worker id from the set the chooser was
// built over.
type PickFunc func(message []byte) []byte

// A Chooser builds a PickFunc over a fixed worker set. Workers are opaque
// byte string identities. Build panics when the worker set is empty.
type Chooser interface {
	Name() string
	Build(workers [][]byte) PickFunc
}

// A Hash digests one or more byte strings. Choosers that score (message,
// worker) pairs feed both through a single Hash call.
type Hash func(parts ...[]byte) []byte

// MD5 digests the concatenated parts to 16 bytes. The fixed width digests
// double as trie keys and ring positions.
func MD5(parts ...[]byte) []byte {
	h := md5.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// Murmur digests the concatenated parts to 4 bytes with MurmurHash3, chaining
// each part's digest into the next seed. A cheaper alternative to MD5.
func Murmur(parts ...[]byte) []byte {
	var h uint32
	for _, p := range parts {
		h = murmur.Hash(p, h)
	}
	digest := make([]byte, 4)
	binary.BigEndian.PutUint32(digest, h)
	return digest
}

func requireWorkers(workers [][]byte) {
	if len(workers) == 0 {
		panic("chooser: Build requires at least one worker")
	}
}
