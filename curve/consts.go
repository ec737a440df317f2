package curve

import (
	"math/big"

	"github.com/nockwallet/rose/belt"
)

// GOrder is the order of the cheetah curve's generator subgroup.
var GOrder, _ = new(big.Int).SetString("7af2599b3b3f22d0563fbf0f990a37b5327aa72330157722d443623eaed4accf", 16)

var (
	pBig  = new(big.Int).SetUint64(belt.Prime)
	pBig2 = new(big.Int).Mul(pBig, pBig)
	pBig3 = new(big.Int).Mul(pBig2, pBig)
)

// Gen is the curve's distinguished base point.
var Gen = Point{
	X: F6{
		belt.Belt(2754611494552410273),
		belt.Belt(8599518745794843693),
		belt.Belt(10526511002404673680),
		belt.Belt(4830863958577994148),
		belt.Belt(375185138577093320),
		belt.Belt(12938930721685970739),
	},
	Y: F6{
		belt.Belt(15384029202802550068),
		belt.Belt(2774812795997841935),
		belt.Belt(14375303400746062753),
		belt.Belt(10708493419890101954),
		belt.Belt(13187678623570541764),
		belt.Belt(9990732138772505951),
	},
	Inf: false,
}

// ScalBig computes n*p via double-and-add for an arbitrary-precision
// scalar, the operation the signature and key-derivation schemes use
// throughout (scalars live mod GOrder, far larger than a uint64).
func ScalBig(n *big.Int, p Point) (Point, bool) {
	acc := Identity
	cur := p
	nCopy := new(big.Int).Set(n)
	zero := big.NewInt(0)
	for nCopy.Cmp(zero) > 0 {
		if nCopy.Bit(0) == 1 {
			var ok bool
			acc, ok = Add(acc, cur)
			if !ok {
				return Point{}, false
			}
		}
		var ok bool
		cur, ok = Double(cur)
		if !ok {
			return Point{}, false
		}
		nCopy.Rsh(nCopy, 1)
	}
	return acc, true
}

// InCurve reports whether p is the identity or a point whose order
// divides GOrder, the membership check used when decoding an
// untrusted wire-format point.
func InCurve(p Point) bool {
	if p.Equal(Identity) {
		return true
	}
	scaled, ok := ScalBig(GOrder, p)
	if !ok {
		return false
	}
	return scaled.Equal(Identity)
}

// TruncGOrder reconstructs a scalar mod GOrder from four field-sized
// words, interpreted as digits in base Prime (a[0] least significant),
// matching the source's truncation rule for folding a wide hash digest
// down into a curve scalar.
func TruncGOrder(a [4]uint64) *big.Int {
	result := new(big.Int).SetUint64(a[0])
	t := new(big.Int).Mul(pBig, new(big.Int).SetUint64(a[1]))
	result.Add(result, t)
	t = new(big.Int).Mul(pBig2, new(big.Int).SetUint64(a[2]))
	result.Add(result, t)
	t = new(big.Int).Mul(pBig3, new(big.Int).SetUint64(a[3]))
	result.Add(result, t)
	return result.Mod(result, GOrder)
}
