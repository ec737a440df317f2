package curve

import (
	"math/big"
	"testing"

	"github.com/nockwallet/rose/belt"
)

func TestF6AddSubRoundTrip(t *testing.T) {
	a := F6{belt.Belt(1), belt.Belt(2), belt.Belt(3), belt.Belt(4), belt.Belt(5), belt.Belt(6)}
	b := F6{belt.Belt(7), belt.Belt(8), belt.Belt(9), belt.Belt(10), belt.Belt(11), belt.Belt(12)}
	sum := F6Add(a, b)
	back := F6Sub(sum, b)
	if back != a {
		t.Fatalf("add/sub round trip failed: got %v want %v", back, a)
	}
}

func TestF6MulIdentity(t *testing.T) {
	a := F6{belt.Belt(3), belt.Belt(5), belt.Belt(7), belt.Belt(11), belt.Belt(13), belt.Belt(17)}
	got := F6Mul(a, F6One)
	if got != a {
		t.Fatalf("multiplying by one should be identity: got %v want %v", got, a)
	}
}

func TestF6MulCommutative(t *testing.T) {
	a := F6{belt.Belt(2), belt.Belt(4), belt.Belt(6), belt.Belt(8), belt.Belt(10), belt.Belt(12)}
	b := F6{belt.Belt(1), belt.Belt(3), belt.Belt(5), belt.Belt(7), belt.Belt(9), belt.Belt(11)}
	if F6Mul(a, b) != F6Mul(b, a) {
		t.Fatalf("sextic multiplication should be commutative")
	}
}

func TestF6InvRoundTrip(t *testing.T) {
	a := F6{belt.Belt(9), belt.Belt(2), belt.Belt(100), belt.Belt(7), belt.Belt(3), belt.Belt(55)}
	inv, ok := F6Inv(a)
	if !ok {
		t.Fatalf("expected invertible element")
	}
	got := F6Mul(a, inv)
	if got != F6One {
		t.Fatalf("a * a^-1 should be one, got %v", got)
	}
}

func TestF6InvZeroFails(t *testing.T) {
	if _, ok := F6Inv(F6Zero); ok {
		t.Fatalf("zero should not be invertible")
	}
}

func TestGenIsOnCurve(t *testing.T) {
	if !InCurve(Gen) {
		t.Fatalf("generator should satisfy in_curve")
	}
}

func TestIdentityIsOnCurve(t *testing.T) {
	if !InCurve(Identity) {
		t.Fatalf("identity should satisfy in_curve")
	}
}

func TestDoubleMatchesAdd(t *testing.T) {
	doubled, ok := Double(Gen)
	if !ok {
		t.Fatalf("double failed")
	}
	added, ok := Add(Gen, Gen)
	if !ok {
		t.Fatalf("add failed")
	}
	if !doubled.Equal(added) {
		t.Fatalf("double(p) should equal add(p,p)")
	}
}

func TestScalTwoMatchesDouble(t *testing.T) {
	scaled, ok := Scal(2, Gen)
	if !ok {
		t.Fatalf("scal failed")
	}
	doubled, ok := Double(Gen)
	if !ok {
		t.Fatalf("double failed")
	}
	if !scaled.Equal(doubled) {
		t.Fatalf("2*G should equal double(G)")
	}
}

func TestScalBigMatchesRepeatedAdd(t *testing.T) {
	n := 7
	acc := Identity
	for i := 0; i < n; i++ {
		var ok bool
		acc, ok = Add(acc, Gen)
		if !ok {
			t.Fatalf("add failed at step %d", i)
		}
	}
	scaled, ok := ScalBig(big.NewInt(int64(n)), Gen)
	if !ok {
		t.Fatalf("scal_big failed")
	}
	if !scaled.Equal(acc) {
		t.Fatalf("scal_big(n, G) should equal n successive adds of G")
	}
}

func TestAddIdentityIsNoOp(t *testing.T) {
	sum, ok := Add(Gen, Identity)
	if !ok {
		t.Fatalf("add with identity failed")
	}
	if !sum.Equal(Gen) {
		t.Fatalf("G + identity should equal G")
	}
}

func TestAddNegationIsIdentity(t *testing.T) {
	sum, ok := Add(Gen, Neg(Gen))
	if !ok {
		t.Fatalf("add with negation failed")
	}
	if !sum.Equal(Identity) {
		t.Fatalf("G + (-G) should equal identity")
	}
}

func TestScalByOrderIsIdentity(t *testing.T) {
	scaled, ok := ScalBig(GOrder, Gen)
	if !ok {
		t.Fatalf("scal_big by group order failed")
	}
	if !scaled.Equal(Identity) {
		t.Fatalf("GOrder * G should equal identity")
	}
}

func TestWireRoundTrip(t *testing.T) {
	b, err := ToBeBytes(Gen)
	if err != nil {
		t.Fatalf("to_be_bytes failed: %v", err)
	}
	back, err := PointFromBeBytes(b[:])
	if err != nil {
		t.Fatalf("from_be_bytes failed: %v", err)
	}
	if !back.Equal(Gen) {
		t.Fatalf("wire round trip mismatch")
	}
}

func TestBase58RoundTrip(t *testing.T) {
	s, err := ToBase58(Gen)
	if err != nil {
		t.Fatalf("to_base58 failed: %v", err)
	}
	back, err := FromBase58(s)
	if err != nil {
		t.Fatalf("from_base58 failed: %v", err)
	}
	if !back.Equal(Gen) {
		t.Fatalf("base58 round trip mismatch")
	}
}

func TestTruncGOrderWithinRange(t *testing.T) {
	v := TruncGOrder([4]uint64{1, 2, 3, 4})
	if v.Sign() < 0 || v.Cmp(GOrder) >= 0 {
		t.Fatalf("trunc_g_order should always be within [0, GOrder)")
	}
}
