package belt

import (
	"math/rand"
	"testing"
)

func sample(r *rand.Rand) Belt {
	return Belt(r.Uint64() % Prime)
}

func TestAddSubRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := sample(r)
		b := sample(r)
		sum := a.Add(b)
		if got := sum.Sub(b); got != a {
			t.Fatalf("(a+b)-b != a: a=%d b=%d got=%d", a, b, got)
		}
	}
}

func TestAddCommutativeAssociative(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		a, b, c := sample(r), sample(r), sample(r)
		if a.Add(b) != b.Add(a) {
			t.Fatalf("addition not commutative: a=%d b=%d", a, b)
		}
		if a.Add(b).Add(c) != a.Add(b.Add(c)) {
			t.Fatalf("addition not associative: a=%d b=%d c=%d", a, b, c)
		}
	}
}

func TestNegIsAdditiveInverse(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		a := sample(r)
		if got := a.Add(a.Neg()); got != Zero() {
			t.Fatalf("a + (-a) != 0: a=%d got=%d", a, got)
		}
	}
}

func TestMulCommutativeAssociativeDistributive(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		a, b, c := sample(r), sample(r), sample(r)
		if a.Mul(b) != b.Mul(a) {
			t.Fatalf("mul not commutative: a=%d b=%d", a, b)
		}
		if a.Mul(b).Mul(c) != a.Mul(b.Mul(c)) {
			t.Fatalf("mul not associative: a=%d b=%d c=%d", a, b, c)
		}
		lhs := a.Mul(b.Add(c))
		rhs := a.Mul(b).Add(a.Mul(c))
		if lhs != rhs {
			t.Fatalf("mul not distributive over add: a=%d b=%d c=%d", a, b, c)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		a := sample(r)
		if got := a.Mul(One()); got != a {
			t.Fatalf("a*1 != a: a=%d got=%d", a, got)
		}
	}
}

func TestInvIsMultiplicativeInverse(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	for i := 0; i < 1000; i++ {
		a := sample(r)
		if a.IsZero() {
			continue
		}
		if got := a.Mul(a.Inv()); got != One() {
			t.Fatalf("a * a^-1 != 1: a=%d got=%d", a, got)
		}
	}
}

func TestDiv(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		a, b := sample(r), sample(r)
		if b.IsZero() {
			continue
		}
		if got := a.Div(b).Mul(b); got != a {
			t.Fatalf("(a/b)*b != a: a=%d b=%d got=%d", a, b, got)
		}
	}
}

func TestPowMatchesRepeatedMul(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	for i := 0; i < 200; i++ {
		a := sample(r)
		e := r.Intn(20)
		want := One()
		for j := 0; j < e; j++ {
			want = want.Mul(a)
		}
		if got := a.Pow(uint64(e)); got != want {
			t.Fatalf("a^e mismatch: a=%d e=%d want=%d got=%d", a, e, want, got)
		}
	}
}

func TestOrderedRootOrders(t *testing.T) {
	for k := 0; k < 20; k++ {
		b := Belt(uint64(1) << uint(k))
		root, ok := b.OrderedRoot()
		if !ok {
			t.Fatalf("OrderedRoot(2^%d) failed", k)
		}
		got := root.Pow(uint64(1) << uint(k))
		if got != One() {
			t.Fatalf("root^order != 1 for k=%d: got=%d", k, got)
		}
	}
}

func TestOrderedRootRejectsNonPowerOfTwo(t *testing.T) {
	if _, ok := Belt(3).OrderedRoot(); ok {
		t.Fatalf("expected OrderedRoot(3) to fail")
	}
	if _, ok := Belt(0).OrderedRoot(); ok {
		t.Fatalf("expected OrderedRoot(0) to fail")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6, 7}
	belts := FromBytes(in)
	out := ToBytes(belts)
	if len(out) != 8 {
		t.Fatalf("expected zero-padded length 8, got %d", len(out))
	}
	for i, b := range in {
		if out[i] != b {
			t.Fatalf("byte %d mismatch: want %d got %d", i, b, out[i])
		}
	}
	for i := len(in); i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("expected zero padding at %d, got %d", i, out[i])
		}
	}
}

func TestZeroAndOne(t *testing.T) {
	if !Zero().IsZero() {
		t.Fatalf("Zero() is not IsZero()")
	}
	if !One().IsOne() {
		t.Fatalf("One() is not IsOne()")
	}
	if Zero().Add(One()) != One() {
		t.Fatalf("0+1 != 1")
	}
}
