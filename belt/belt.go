// Package belt implements arithmetic over the 64-bit prime field
// F_p, p = 2^64 - 2^32 + 1, the base field everything else in this
// module (the sponge hash, the sextic extension, the curve) is built
// on top of.
package belt

import "math/bits"

// Prime is the field modulus, 2^64 - 2^32 + 1.
const Prime uint64 = 18446744069414584321

// r2 is R^2 mod p in Montgomery form, used to move values into the
// Montgomery domain (montify).
const r2 uint64 = 18446744065119617025

// roots holds 2^k-th roots of unity for k = 0..32, used by OrderedRoot.
var roots = [33]uint64{
	0x0000000000000001,
	0xffffffff00000000,
	0x0001000000000000,
	0xfffffffeff000001,
	0xefffffff00000001,
	0x00003fffffffc000,
	0x0000008000000000,
	0xf80007ff08000001,
	0xbf79143ce60ca966,
	0x1905d02a5c411f4e,
	0x9d8f2ad78bfed972,
	0x0653b4801da1c8cf,
	0xf2c35199959dfcb6,
	0x1544ef2335d17997,
	0xe0ee099310bba1e2,
	0xf6b2cffe2306baac,
	0x54df9630bf79450e,
	0xabd0a6e8aa3d8a0e,
	0x81281a7b05f9beac,
	0xfbd41c6b8caa3302,
	0x30ba2ecd5e93e76d,
	0xf502aef532322654,
	0x4b2a18ade67246b5,
	0xea9d5a1336fbc98b,
	0x86cdcc31c307e171,
	0x4bbaf5976ecfefd8,
	0xed41d05b78d6e286,
	0x10d78dd8915a171d,
	0x59049500004a4485,
	0xdfa8c93ba46d2666,
	0x7e9bd009b86a0845,
	0x400a7f755588e659,
	0x185629dcda58878c,
}

// Belt is an element of F_p, always held in [0, Prime).
type Belt uint64

// Zero is the additive identity.
func Zero() Belt { return Belt(0) }

// One is the multiplicative identity.
func One() Belt { return Belt(1) }

// IsZero reports whether b is the additive identity.
func (b Belt) IsZero() bool { return b == 0 }

// IsOne reports whether b is the multiplicative identity.
func (b Belt) IsOne() bool { return b == 1 }

// Add returns a+b mod p.
func (a Belt) Add(b Belt) Belt { return Belt(badd(uint64(a), uint64(b))) }

// Sub returns a-b mod p.
func (a Belt) Sub(b Belt) Belt { return Belt(bsub(uint64(a), uint64(b))) }

// Neg returns -a mod p.
func (a Belt) Neg() Belt { return Belt(bneg(uint64(a))) }

// Mul returns a*b mod p.
func (a Belt) Mul(b Belt) Belt { return Belt(bmul(uint64(a), uint64(b))) }

// Inv returns a^-1 mod p. Callers must not pass zero.
func (a Belt) Inv() Belt { return Belt(binv(uint64(a))) }

// Div returns a/b mod p. Callers must not pass a zero divisor.
func (a Belt) Div(b Belt) Belt { return a.Mul(b.Inv()) }

// Pow returns a^e mod p.
func (a Belt) Pow(e uint64) Belt { return Belt(bpow(uint64(a), e)) }

// OrderedRoot returns the root of unity of order self, when self is an
// exact power of two no larger than 2^32. It reports ok=false for any
// other value, including zero.
func (a Belt) OrderedRoot() (root Belt, ok bool) {
	v := uint64(a)
	if v == 0 {
		return 0, false
	}
	logOf := uint(bits.Len64(v) - 1)
	if int(logOf) >= len(roots) {
		return 0, false
	}
	if v != uint64(1)<<logOf {
		return 0, false
	}
	return Belt(roots[logOf]), true
}

// FromBytes packs a byte string into Belts, 4 bytes (little-endian,
// zero-padded) per element, mirroring the source's 32-bit packing rule.
func FromBytes(b []byte) []Belt {
	out := make([]Belt, 0, (len(b)+3)/4)
	for i := 0; i < len(b); i += 4 {
		end := i + 4
		if end > len(b) {
			end = len(b)
		}
		var arr [4]byte
		copy(arr[:], b[i:end])
		v := uint32(arr[0]) | uint32(arr[1])<<8 | uint32(arr[2])<<16 | uint32(arr[3])<<24
		out = append(out, Belt(v))
	}
	return out
}

// ToBytes unpacks Belts produced by FromBytes back into a byte string.
// Panics if any element does not fit in 32 bits, matching the source's
// own expectation that these elements never exceed a u32.
func ToBytes(belts []Belt) []byte {
	out := make([]byte, 0, len(belts)*4)
	for _, b := range belts {
		if uint64(b) > 0xffffffff {
			panic("belt: element too big for u32")
		}
		v := uint32(b)
		out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return out
}

// montReduction is the Goldilocks-tailored Montgomery reduction: given
// the 128-bit product hi:lo, returns hi:lo * R^-1 mod p without a
// general 64-bit division.
func montReduction(hi, lo uint64) uint64 {
	x1 := (lo >> 32) & 0xffffffff
	x2 := hi
	x0 := lo & 0xffffffff

	s := x0 + x1 // fits in 33 bits
	cLo := (s & 0xffffffff) << 32
	f := s >> 32 // the carry bit of s<<32, 0 or 1

	var rhsLo uint64
	if f == 1 {
		rhsLo = Prime
	}
	rhsLo, carry := bits.Add64(rhsLo, x1, 0)
	rhsHi := carry

	dLo, borrow := bits.Sub64(cLo, rhsLo, 0)
	_, _ = bits.Sub64(f, rhsHi, borrow) // high word of d, expected 0
	d := dLo

	if x2 >= d {
		return x2 - d
	}
	sumLo, sumHi := bits.Add64(x2, Prime, 0)
	resLo, _ := bits.Sub64(sumLo, d, 0)
	_ = sumHi
	return resLo
}

// MontifyForTip5 exposes montify (move a field element into Montgomery
// form) for the sponge hash's boundary conversion.
func MontifyForTip5(a uint64) uint64 { return montify(a) }

// MontReductionForTip5 exposes the raw Montgomery reduction of a
// single field-sized word (treated as the low word of a 128-bit value
// with zero high word) for the sponge hash's digest extraction.
func MontReductionForTip5(a uint64) uint64 { return montReduction(0, a) }

func montiply(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return montReduction(hi, lo)
}

func montify(a uint64) uint64 {
	hi, lo := bits.Mul64(a, r2)
	return montReduction(hi, lo)
}

func badd(a, b uint64) uint64 {
	bNeg := Prime - b
	r, c := bits.Sub64(a, bNeg, 0)
	if c != 0 {
		r -= uint64(uint32(0) - uint32(c))
	}
	return r
}

func bneg(a uint64) uint64 {
	if a != 0 {
		return Prime - a
	}
	return 0
}

func bsub(a, b uint64) uint64 {
	r, c := bits.Sub64(a, b, 0)
	if c != 0 {
		r -= uint64(uint32(0) - uint32(c))
	}
	return r
}

// reduce performs the fast Goldilocks reduction of a 128-bit value
// (given as hi:lo) into [0, Prime).
func reduce(hi, lo uint64) uint64 {
	mid := uint32(hi)
	high := hi >> 32
	return reduce159(lo, mid, high)
}

func reduce159(low uint64, mid uint32, high uint64) uint64 {
	low2, carry := bits.Sub64(low, high, 0)
	if carry != 0 {
		low2 += Prime
	}

	product := uint64(mid) << 32
	product -= product >> 32

	result, carry := bits.Add64(product, low2, 0)
	if carry != 0 {
		result -= Prime
	}

	if result >= Prime {
		result -= Prime
	}
	return result
}

func bmul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return reduce(hi, lo)
}

// binv computes a^-1 mod p via a fixed addition chain over the
// Montgomery domain (p-2 has a short chain for this prime).
func binv(a uint64) uint64 {
	y := montify(a)
	y2 := montiply(y, montiply(y, y))
	y3 := montiply(y, montiply(y2, y2))
	y5 := montiply(y2, montwopow(y3, 2))
	y10 := montiply(y5, montwopow(y5, 5))
	y20 := montiply(y10, montwopow(y10, 10))
	y30 := montiply(y10, montwopow(y20, 10))
	y31 := montiply(y, montiply(y30, y30))
	dup := montiply(montwopow(y31, 32), y31)

	return montReduction(0, montiply(y, montiply(dup, dup)))
}

func montwopow(a uint64, n uint32) uint64 {
	res := a
	for i := uint32(0); i < n; i++ {
		res = montiply(res, res)
	}
	return res
}

func bpow(a, e uint64) uint64 {
	if e == 0 {
		return 1
	}
	c := uint64(1)
	for e > 1 {
		if e&1 == 0 {
			a = bmul(a, a)
			e /= 2
		} else {
			c = bmul(c, a)
			a = bmul(a, a)
			e = (e - 1) / 2
		}
	}
	return bmul(c, a)
}
