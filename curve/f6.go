// Package curve implements the sextic extension field F_p^6 (over the
// belt field) and the cheetah elliptic curve y^2 = x^3 + x + B defined
// over it, the lowest layer the signing and key-derivation packages
// build on.
package curve

import "github.com/nockwallet/rose/belt"

// F6 is an element of F_p^6 = F_p[y]/(y^6 - 7), held as its six belt
// coefficients in ascending degree order.
type F6 [6]belt.Belt

// F6Zero and F6One are the additive and multiplicative identities.
var (
	F6Zero = F6{}
	F6One  = F6{belt.One()}
)

func F6Add(a, b F6) F6 {
	var r F6
	for i := 0; i < 6; i++ {
		r[i] = a[i].Add(b[i])
	}
	return r
}

func F6Neg(a F6) F6 {
	var r F6
	for i := 0; i < 6; i++ {
		r[i] = a[i].Neg()
	}
	return r
}

func F6Sub(a, b F6) F6 { return F6Add(a, F6Neg(b)) }

func F6Scal(s belt.Belt, a F6) F6 {
	var r F6
	for i := 0; i < 6; i++ {
		r[i] = a[i].Mul(s)
	}
	return r
}

func F6Equal(a, b F6) bool { return a == b }

// karat3 multiplies two 3-term polynomials via Karatsuba, returning
// the 5-term product.
func karat3(a, b [3]belt.Belt) [5]belt.Belt {
	m := [3]belt.Belt{a[0].Mul(b[0]), a[1].Mul(b[1]), a[2].Mul(b[2])}
	return [5]belt.Belt{
		m[0],
		a[0].Add(a[1]).Mul(b[0].Add(b[1])).Sub(m[0].Add(m[1])),
		a[0].Add(a[2]).Mul(b[0].Add(b[2])).Sub(m[0].Add(m[2])).Add(m[1]),
		a[1].Add(a[2]).Mul(b[1].Add(b[2])).Sub(m[1].Add(m[2])),
		m[2],
	}
}

// F6Mul multiplies two sextic elements by splitting each into two
// cubic halves, multiplying each half and the cross term via karat3,
// then folding the result back modulo y^6 - 7 (the cubic non-residue
// 7 scales everything that wraps past degree 5).
func F6Mul(f, g F6) F6 {
	f0g0 := karat3([3]belt.Belt{f[0], f[1], f[2]}, [3]belt.Belt{g[0], g[1], g[2]})
	f1g1 := karat3([3]belt.Belt{f[3], f[4], f[5]}, [3]belt.Belt{g[3], g[4], g[5]})
	foil := karat3(
		[3]belt.Belt{f[0].Add(f[3]), f[1].Add(f[4]), f[2].Add(f[5])},
		[3]belt.Belt{g[0].Add(g[3]), g[1].Add(g[4]), g[2].Add(g[5])},
	)

	var cross [5]belt.Belt
	for i := 0; i < 5; i++ {
		cross[i] = foil[i].Sub(f0g0[i].Add(f1g1[i]))
	}

	seven := belt.Belt(7)
	return F6{
		f0g0[0].Add(seven.Mul(cross[3].Add(f1g1[0]))),
		f0g0[1].Add(seven.Mul(cross[4].Add(f1g1[1]))),
		f0g0[2].Add(seven.Mul(f1g1[2])),
		f0g0[3].Add(cross[0]).Add(seven.Mul(f1g1[3])),
		f0g0[4].Add(cross[1]).Add(seven.Mul(f1g1[4])),
		cross[2],
	}
}

func F6Square(f F6) F6 { return F6Mul(f, f) }

// f6Modulus is y^6 - 7 expressed as a 7-term polynomial, -7 + y^6.
var f6Modulus = [7]belt.Belt{belt.Zero().Sub(belt.Belt(7)), 0, 0, 0, 0, 0, belt.One()}

// F6Inv inverts a nonzero sextic element via the extended Euclidean
// algorithm against the field's reduction polynomial y^6 - 7.
func F6Inv(f F6) (F6, bool) {
	if f == F6Zero {
		return F6{}, false
	}
	var d, u [7]belt.Belt
	var v [6]belt.Belt
	belt.BpEGCD(f[:], f6Modulus[:], d[:], u[:], v[:])
	inv := d[0].Inv()
	var res [6]belt.Belt
	belt.BpScal(inv, u[:6], res[:])
	return F6(res), true
}

func F6Div(f, g F6) (F6, bool) {
	ginv, ok := F6Inv(g)
	if !ok {
		return F6{}, false
	}
	return F6Mul(f, ginv), true
}
