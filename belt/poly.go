package belt

// This file ports the generic dense-polynomial helpers over Belt
// coefficients used by the sextic extension field's inversion routine
// (extended Euclidean algorithm against the field's reduction
// polynomial). Polynomials are plain []Belt, coefficient i holding the
// x^i term, same convention as the source.

func polyDegree(a []Belt) int {
	for i := len(a) - 1; i > 0; i-- {
		if !a[i].IsZero() {
			return i
		}
	}
	return 0
}

func polyIsZero(a []Belt) bool {
	if len(a) == 0 {
		return true
	}
	for _, x := range a {
		if !x.IsZero() {
			return false
		}
	}
	return true
}

// BpSub computes a-b into res (res must be len(max(len(a),len(b)))).
func BpSub(a, b, res []Belt) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case i < len(a) && i < len(b):
			res[i] = a[i].Sub(b[i])
		case i < len(a):
			res[i] = a[i]
		default:
			res[i] = b[i].Neg()
		}
	}
}

// BpMul computes the polynomial product a*b into res (res must be
// len(a)+len(b)-1, pre-sized by the caller).
func BpMul(a, b, res []Belt) {
	if polyIsZero(a) || polyIsZero(b) {
		for i := range res {
			res[i] = Zero()
		}
		return
	}
	for i := range res {
		res[i] = Zero()
	}
	for i := 0; i < len(a); i++ {
		if a[i].IsZero() {
			continue
		}
		for j := 0; j < len(b); j++ {
			res[i+j] = res[i+j].Add(a[i].Mul(b[j]))
		}
	}
}

// BpScal scales b by scalar into res.
func BpScal(scalar Belt, b, res []Belt) {
	for i := range b {
		res[i] = scalar.Mul(b[i])
	}
}

// BpDvr divides a by b, writing quotient into q and remainder into res.
func BpDvr(a, b []Belt, q, res []Belt) {
	if polyIsZero(a) {
		for i := range q {
			q[i] = Zero()
		}
		for i := range res {
			res[i] = Zero()
		}
		return
	}
	if polyIsZero(b) {
		panic("belt: polynomial divide by zero")
	}
	for i := range q {
		q[i] = Zero()
	}
	for i := range res {
		res[i] = Zero()
	}

	aEnd := polyDegree(a)
	r := make([]Belt, aEnd+1)
	copy(r, a[:aEnd+1])

	degB := polyDegree(b)
	endB := degB

	i := aEnd
	degR := polyDegree(a)
	qIndex := degR - degB
	if qIndex < 0 {
		qIndex = 0
	}

	for degR >= degB {
		coeff := r[i].Div(b[endB])
		q[qIndex] = coeff
		for k := 0; k <= degB; k++ {
			if k <= aEnd && k < len(b) && k <= i {
				r[i-k] = r[i-k].Sub(coeff.Mul(b[endB-k]))
			}
		}
		if degR > 0 {
			degR--
		}
		if qIndex > 0 {
			qIndex--
		}
		if degR == 0 && r[0].IsZero() {
			break
		}
		i--
	}

	rLen := degR + 1
	copy(res[:rLen], r[:rLen])
}

// BpEGCD runs the extended Euclidean algorithm on polynomials a and b,
// writing gcd into d and Bezout coefficients into u (for a) and v (for
// b), such that d = u*a + v*b.
func BpEGCD(a, b []Belt, d, u, v []Belt) {
	m1u := []Belt{Zero()}
	m2u := []Belt{One()}
	m1v := []Belt{One()}
	m2v := []Belt{Zero()}

	for i := range d {
		d[i] = Zero()
	}
	for i := range u {
		u[i] = Zero()
	}
	for i := range v {
		v[i] = Zero()
	}

	ac := append([]Belt(nil), a...)
	bc := append([]Belt(nil), b...)

	for !polyIsZero(bc) {
		degA := polyDegree(ac)
		degB := polyDegree(bc)
		degQ := degA - degB
		if degQ < 0 {
			degQ = 0
		}
		lenQ := degQ + 1
		lenR := degB + 1

		q := make([]Belt, lenQ)
		r := make([]Belt, lenR)
		BpDvr(ac, bc, q, r)

		ac = bc
		bc = r

		res1Len := len(q) + len(m1u) - 1
		res1 := make([]Belt, res1Len)
		BpMul(q, m1u, res1)

		lenRes2 := len(m2u)
		if res1Len > lenRes2 {
			lenRes2 = res1Len
		}
		res2 := make([]Belt, lenRes2)
		BpSub(m2u, res1, res2)

		m2u = m1u
		m1u = res2

		res1b := make([]Belt, len(q)+len(m1v)-1)
		BpMul(q, m1v, res1b)

		lenRes3 := len(m2v)
		if len(res1b) > lenRes3 {
			lenRes3 = len(res1b)
		}
		res3 := make([]Belt, lenRes3)
		BpSub(m2v, res1b, res3)

		m2v = m1v
		m1v = res3
	}

	copy(d[:len(ac)], ac)
	copy(u[:len(m2u)], m2u)
	copy(v[:len(m2v)], m2v)
}
