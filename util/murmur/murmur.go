// Package murmur implements the 32-bit MurmurHash3 digest. It is the cheap
// non-cryptographic hash used by the chooser strategies, where a pick must be
// a pure function of the message bytes on every machine in a cluster.
//
// Reference C++ implementation: https://github.com/aappleby/smhasher/blob/master/src/MurmurHash3.cpp
package murmur

import (
	"math/bits"
)

const (
	c1 uint32 = 0xcc9e2d51
	c2 uint32 = 0x1b873593
)

// Hash digests data with the given seed. Feeding one call's digest into the
// next call's seed chains digests over multiple byte strings.
func Hash(data []byte, seed uint32) uint32 {
	h := seed
	inputLen := uint32(len(data))

	// Body: consume four-byte blocks.
	for len(data) >= 4 {
		k := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24

		k *= c1
		k = bits.RotateLeft32(k, 15)
		k *= c2

		h ^= k
		h = bits.RotateLeft32(h, 13)
		h = h*5 + 0xe6546b64

		data = data[4:]
	}

	// Tail: up to three remaining bytes.
	var k uint32
	switch len(data) & 3 {
	case 3:
		k ^= uint32(data[2]) << 16
		fallthrough
	case 2:
		k ^= uint32(data[1]) << 8
		fallthrough
	case 1:
		k ^= uint32(data[0])

		k *= c1
		k = bits.RotateLeft32(k, 15)
		k *= c2
		h ^= k
	}

	// Finalization: force avalanching of the last bits.
	h ^= inputLen
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h
}
