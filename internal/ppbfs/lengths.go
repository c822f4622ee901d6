package ppbfs

import (
	"math/bits"
)

// bitset is a growable set of small non-negative integers.
type bitset []uint64

func (b *bitset) set(i int) bool {
	w := i >> 6
	for len(*b) <= w {
		*b = append(*b, 0)
	}
	mask := uint64(1) << (uint(i) & 63)
	if (*b)[w]&mask != 0 {
		return false
	}
	(*b)[w] |= mask
	return true
}

func (b bitset) has(i int) bool {
	if i < 0 {
		return false
	}
	w := i >> 6
	return w < len(b) && b[w]&(uint64(1)<<(uint(i)&63)) != 0
}

func (b bitset) clear(i int) bool {
	if !b.has(i) {
		return false
	}
	b[i>>6] &^= uint64(1) << (uint(i) & 63)
	return true
}

func (b bitset) empty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

// min returns the smallest member, or -1.
func (b bitset) min() int {
	for i, w := range b {
		if w != 0 {
			return i<<6 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// max returns the largest member, or -1.
func (b bitset) max() int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			return i<<6 + 63 - bits.LeadingZeros64(b[i])
		}
	}
	return -1
}

// members returns the members in ascending order. The result is a snapshot: the set may be
// mutated while the caller ranges over it.
func (b bitset) members() []int {
	var res []int
	for i, w := range b {
		for w != 0 {
			res = append(res, i<<6+bits.TrailingZeros64(w))
			w &= w - 1
		}
	}
	return res
}

// LengthDimension selects one of the two independent length sets of a Lengths record.
type LengthDimension int

const (
	// Source holds the depths at which something is currently certified reachable from the source.
	Source LengthDimension = iota
	// ConfirmedSource holds the depths validated by a trail that reached the source.
	ConfirmedSource
	// Pruned holds the depths a signpost was found not to certify. They are never certified again.
	Pruned
)

// Lengths records discovery depths for a node state or a signpost.
type Lengths struct {
	dims [3]bitset
}

// Set adds length to the dimension and reports whether it was absent.
func (l *Lengths) Set(d LengthDimension, length int) bool {
	return l.dims[d].set(length)
}

func (l *Lengths) Has(d LengthDimension, length int) bool {
	return l.dims[d].has(length)
}

// Clear removes length from the dimension and reports whether it was present.
func (l *Lengths) Clear(d LengthDimension, length int) bool {
	return l.dims[d].clear(length)
}

func (l *Lengths) IsEmpty(d LengthDimension) bool {
	return l.dims[d].empty()
}

func (l *Lengths) Min(d LengthDimension) int {
	return l.dims[d].min()
}

func (l *Lengths) Max(d LengthDimension) int {
	return l.dims[d].max()
}

func (l *Lengths) All(d LengthDimension) []int {
	return l.dims[d].members()
}
