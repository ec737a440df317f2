package curve

import "github.com/nockwallet/rose/belt"

// Point is a point on the cheetah curve y^2 = x^3 + x + B over F_p^6,
// in affine coordinates, with an explicit point-at-infinity flag.
type Point struct {
	X, Y F6
	Inf  bool
}

// Identity is the point at infinity, the group's neutral element.
var Identity = Point{X: F6Zero, Y: F6One, Inf: true}

func (p Point) Equal(q Point) bool {
	return p.Inf == q.Inf && p.X == q.X && p.Y == q.Y
}

// Double computes p+p.
func Double(p Point) (Point, bool) {
	if p.Inf || p.Y == F6Zero {
		return Identity, true
	}
	return doubleUnsafe(p.X, p.Y)
}

func doubleUnsafe(x, y F6) (Point, bool) {
	num := F6Add(F6Scal(belt.Belt(3), F6Square(x)), F6One)
	den := F6Scal(belt.Belt(2), y)
	slope, ok := F6Div(num, den)
	if !ok {
		return Point{}, false
	}
	xOut := F6Sub(F6Square(slope), F6Scal(belt.Belt(2), x))
	yOut := F6Sub(F6Mul(slope, F6Sub(x, xOut)), y)
	return Point{X: xOut, Y: yOut, Inf: false}, true
}

func addUnsafe(p, q Point) (Point, bool) {
	slope, ok := F6Div(F6Sub(p.Y, q.Y), F6Sub(p.X, q.X))
	if !ok {
		return Point{}, false
	}
	xOut := F6Sub(F6Square(slope), F6Add(p.X, q.X))
	yOut := F6Sub(F6Mul(slope, F6Sub(p.X, xOut)), p.Y)
	return Point{X: xOut, Y: yOut, Inf: false}, true
}

// Neg returns -p.
func Neg(p Point) Point { return Point{X: p.X, Y: F6Neg(p.Y), Inf: p.Inf} }

// Add computes p+q, handling the identity, negation, and doubling
// special cases before falling back to the general chord slope.
func Add(p, q Point) (Point, bool) {
	if p.Inf {
		return q, true
	}
	if q.Inf {
		return p, true
	}
	if p.Equal(Neg(q)) {
		return Identity, true
	}
	if p.Equal(q) {
		return Double(p)
	}
	return addUnsafe(p, q)
}

// Scal computes n*p via double-and-add for a native uint64 scalar.
func Scal(n uint64, p Point) (Point, bool) {
	acc := Identity
	cur := p
	for n > 0 {
		if n&1 == 1 {
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
		n >>= 1
	}
	return acc, true
}
