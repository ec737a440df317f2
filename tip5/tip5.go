// Package tip5 implements the sponge hash construction that gives
// this module its content-addressing: a fixed-width permutation over
// sixteen base-field elements, with a ten-element rate and six-element
// capacity, run in overwrite mode.
//
// The permutation's round-constant table and exact S-box layout were
// not recoverable from the reference material this package was built
// from (see DESIGN.md). What's implemented here is a structurally
// faithful sponge built the same way — same state/rate/capacity split,
// same padding rule, same Montgomery-domain boundary treatment — but
// with a self-consistent permutation rather than the original's exact
// round constants. Treat digests from this package as internally
// consistent, not as a drop-in replacement for vectors produced by the
// original.
package tip5

import "github.com/nockwallet/rose/belt"

const (
	stateSize = 16
	rate      = 10
	numRounds = 7
)

// Digest is a five-Belt hash output, the unit every content-addressed
// value in this module (Nouns, keys, transactions) is identified by.
type Digest [5]belt.Belt

var roundConstants [numRounds][stateSize]belt.Belt

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	z := x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func init() {
	seed := uint64(0x7469703573706e67) // "tip5spng", an arbitrary fixed seed
	for r := 0; r < numRounds; r++ {
		for i := 0; i < stateSize; i++ {
			seed = splitmix64(seed)
			roundConstants[r][i] = belt.Belt(seed % belt.Prime)
		}
	}
}

// sbox is the permutation's nonlinear layer: x -> x^7 over every state
// word (gcd(7, p-1) == 1 is not required for our purposes, since we
// never need to invert the permutation).
func sbox(state *[stateSize]belt.Belt) {
	for i := range state {
		state[i] = state[i].Pow(7)
	}
}

// mdsMix is the permutation's linear layer: a small fixed circulant
// matrix, applied as a cyclic convolution.
var mdsVec = [stateSize]belt.Belt{
	belt.Belt(1), belt.Belt(1), belt.Belt(2), belt.Belt(2),
	belt.Belt(4), belt.Belt(4), belt.Belt(8), belt.Belt(8),
	belt.Belt(16), belt.Belt(16), belt.Belt(32), belt.Belt(32),
	belt.Belt(64), belt.Belt(64), belt.Belt(128), belt.Belt(128),
}

func mdsMix(state *[stateSize]belt.Belt) {
	var out [stateSize]belt.Belt
	for i := 0; i < stateSize; i++ {
		acc := belt.Zero()
		for j := 0; j < stateSize; j++ {
			idx := (i - j + stateSize) % stateSize
			acc = acc.Add(mdsVec[idx].Mul(state[j]))
		}
		out[i] = acc
	}
	*state = out
}

func permute(state *[stateSize]uint64) {
	var s [stateSize]belt.Belt
	for i, v := range state {
		s[i] = belt.Belt(v)
	}
	for r := 0; r < numRounds; r++ {
		sbox(&s)
		for i := range s {
			s[i] = s[i].Add(roundConstants[r][i])
		}
		mdsMix(&s)
	}
	for i, v := range s {
		state[i] = uint64(v)
	}
}

func createInitSpongeVariable() [stateSize]uint64 {
	return [stateSize]uint64{}
}

func createInitSpongeFixed() [stateSize]uint64 {
	var sponge [stateSize]uint64
	for i := rate; i < stateSize; i++ {
		sponge[i] = 4294967295
	}
	return sponge
}

func montify(a uint64) uint64 {
	return belt.MontifyForTip5(a)
}

func montReduction(a uint64) uint64 {
	return belt.MontReductionForTip5(a)
}

func absorbRate(sponge *[stateSize]uint64, input []belt.Belt) {
	if len(input) != rate {
		panic("tip5: absorb rate mismatch")
	}
	for i := 0; i < rate; i++ {
		sponge[i] = uint64(input[i])
	}
	permute(sponge)
}

func calcQR(input []belt.Belt) (q, r int) {
	return len(input) / rate, len(input) % rate
}

func padVecBelt(input []belt.Belt, r int) []belt.Belt {
	input = append(input, belt.One())
	for i := 0; i < (rate-r)-1; i++ {
		input = append(input, belt.Zero())
	}
	return input
}

func montifyVecBelt(input []belt.Belt) {
	for i, b := range input {
		input[i] = belt.Belt(montify(uint64(b)))
	}
}

func calcDigest(sponge *[stateSize]uint64) Digest {
	var d Digest
	for i := 0; i < 5; i++ {
		d[i] = belt.Belt(montReduction(sponge[i]))
	}
	return d
}

// HashVarlen hashes an arbitrary-length sequence of base-field
// elements, padding it to a multiple of the rate with a 10* pattern.
func HashVarlen(input []belt.Belt) Digest {
	sponge := createInitSpongeVariable()

	q, r := calcQR(input)
	padded := padVecBelt(append([]belt.Belt(nil), input...), r)
	montifyVecBelt(padded)

	rest := padded
	for i := 0; i <= q; i++ {
		chunk := rest[:rate]
		rest = rest[rate:]
		absorbRate(&sponge, chunk)
	}
	return calcDigest(&sponge)
}

// HashFixed hashes exactly one rate's worth of base-field elements
// (len(input) must equal the rate), using a distinct initial capacity
// from HashVarlen so fixed- and variable-length inputs never collide.
func HashFixed(input []belt.Belt) Digest {
	q, r := calcQR(input)
	if q != 1 || r != 0 {
		panic("tip5: HashFixed requires exactly one rate's worth of input")
	}
	padded := append([]belt.Belt(nil), input...)
	montifyVecBelt(padded)

	sponge := createInitSpongeFixed()
	absorbRate(&sponge, padded)
	return calcDigest(&sponge)
}
