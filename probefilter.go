// Probe filter for SingletonAllocator: a fixed-size bloom filter that
// gives a fast, definite "not present" answer before a lookup descends
// the backing AA-tree. Sized for ~10k entries at 1% false positive rate.
package triplestore

import (
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Probe filter sizing constants.
const (
	probeFilterBytes = 11982 // ~96k bits for 10k entries at 1% FP
	probeFilterK     = 7     // number of hash functions
)

type probeFilter struct {
	bits []byte
	alg  int
}

// newProbeFilter returns a zeroed probe filter using alg to derive the
// two base hashes fed into double hashing.
func newProbeFilter(alg int) *probeFilter {
	return &probeFilter{bits: make([]byte, probeFilterBytes), alg: alg}
}

// Add records key as present.
func (p *probeFilter) Add(key string) {
	for _, pos := range p.positions(key) {
		p.bits[pos/8] |= 1 << (pos % 8)
	}
}

// MaybeContains returns false if key is definitely absent, true if it
// might be present (a tree descent is required to be sure).
func (p *probeFilter) MaybeContains(key string) bool {
	for _, pos := range p.positions(key) {
		if p.bits[pos/8]&(1<<(pos%8)) == 0 {
			return false
		}
	}
	return true
}

// Reset clears all bits, as after a full rebuild from the tree.
func (p *probeFilter) Reset() {
	clear(p.bits)
}

// positions derives probeFilterK bit positions from two independent
// base hashes of key via double hashing, per Kirsch-Mitzenmacher.
// AlgFNV1a reuses FNV for both bases (no external dependency); the
// other two algorithms pair the configured hash with FNV-32a as the
// step so every algorithm still produces probeFilterK positions from a
// single additional hash computation.
func (p *probeFilter) positions(key string) [probeFilterK]uint {
	var a uint64
	switch p.alg {
	case AlgXXHash3:
		a = xxh3.HashString(key)
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil)
		h.Write([]byte(key))
		for _, b := range h.Sum(nil) {
			a = a<<8 | uint64(b)
		}
	default:
		h64 := fnv.New64a()
		h64.Write([]byte(key))
		a = h64.Sum64()
	}

	h32 := fnv.New32a()
	h32.Write([]byte(key))
	b := uint(h32.Sum32())

	nbits := uint(probeFilterBytes * 8)
	var pos [probeFilterK]uint
	for i := range probeFilterK {
		pos[i] = (uint(a) + uint(i)*b) % nbits
	}
	return pos
}
