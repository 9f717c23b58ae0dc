package plot

import "github.com/spacemeshos/poc1to2/shared"

// ScoopPair is a mirrored pair of scoop blocks. Forward holds scoop s and
// Backward holds scoop ScoopsPerNonce-1-s.
type ScoopPair struct {
	Scoop    int
	Forward  int64
	Backward int64
}

// Mirror returns the pair for scoop s of a plot of the given size and block
// size. The backward block is addressed by its distance from the end of the
// file, which lands on the mirrored block only when size is exactly
// ScoopsPerNonce*blockSize.
func Mirror(size, blockSize int64, s int) ScoopPair {
	forward := int64(s) * blockSize
	return ScoopPair{
		Scoop:    s,
		Forward:  forward,
		Backward: size - forward - blockSize,
	}
}

// Pairs lists every mirrored scoop pair of the plot, in processing order.
func (d *Descriptor) Pairs() []ScoopPair {
	pairs := make([]ScoopPair, 0, shared.NumScoopPairs)
	for s := 0; s < shared.NumScoopPairs; s++ {
		pairs = append(pairs, Mirror(int64(d.Size), d.BlockSize(), s))
	}
	return pairs
}

// SwapSecondHalves exchanges the second hash of every scoop record in a with
// the one at the same position in b. First hashes are left untouched.
// a and b must have the same length and must not overlap.
func SwapSecondHalves(a, b []byte) {
	var tmp [shared.HashSize]byte
	for off := shared.HashSize; off+shared.HashSize <= len(a); off += shared.ScoopSize {
		x := a[off : off+shared.HashSize]
		y := b[off : off+shared.HashSize]
		copy(tmp[:], x)
		copy(x, y)
		copy(y, tmp[:])
	}
}
