package cheetah

import (
	"math/big"
	"testing"

	"github.com/nockwallet/rose/belt"
	"github.com/nockwallet/rose/noun"
)

// testMessage is an arbitrary stand-in digest; these tests exercise
// the signature scheme structurally and do not depend on any
// particular hash vector.
func testMessage() noun.Digest {
	return noun.Digest{belt.Belt(8), belt.Belt(9), belt.Belt(10), belt.Belt(11), belt.Belt(12)}
}

func TestSignAndVerify(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(123456789)}
	m := testMessage()
	sig, err := pk.Sign(m)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !Verify(pk.PublicKey(), m, sig) {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerifyRejectsCorruptedSignature(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(987654321)}
	m := testMessage()
	sig, err := pk.Sign(m)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	corrupt := Signature{C: sig.C, S: new(big.Int).Add(sig.S, big.NewInt(1))}
	if Verify(pk.PublicKey(), m, corrupt) {
		t.Fatalf("corrupted signature should not verify")
	}
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(42)}
	m := testMessage()
	other := noun.Digest{belt.Belt(1), belt.Belt(1), belt.Belt(1), belt.Belt(1), belt.Belt(1)}
	sig, err := pk.Sign(m)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if Verify(pk.PublicKey(), other, sig) {
		t.Fatalf("signature over a different message should not verify")
	}
}

func TestPublicKeyDerivationDeterministic(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(555)}
	a := pk.PublicKey()
	b := pk.PublicKey()
	if !a.Point.Equal(b.Point) {
		t.Fatalf("public key derivation should be deterministic")
	}
}

func TestMultipartySignAndAggregate(t *testing.T) {
	pk1 := PrivateKey{Scalar: big.NewInt(123)}
	pk2 := PrivateKey{Scalar: big.NewInt(456)}
	m := testMessage()

	nonce1 := pk1.NonceFor(m)
	nonce2 := pk2.NonceFor(m)
	combinedNonce := CombineNonces([]*big.Int{nonce1, nonce2})

	combinedPubkey, ok := pk1.PublicKey().Add(pk2.PublicKey())
	if !ok {
		t.Fatalf("public key aggregation failed")
	}

	sig1, err := pk1.SignMulti(m, combinedNonce, combinedPubkey)
	if err != nil {
		t.Fatalf("sign_multi 1 failed: %v", err)
	}
	sig2, err := pk2.SignMulti(m, combinedNonce, combinedPubkey)
	if err != nil {
		t.Fatalf("sign_multi 2 failed: %v", err)
	}

	combinedSig, ok := SumSignatures([]Signature{sig1, sig2})
	if !ok {
		t.Fatalf("signature aggregation failed")
	}

	if !Verify(combinedPubkey, m, combinedSig) {
		t.Fatalf("aggregated signature should verify against the combined public key")
	}
}

func TestSumSignaturesRejectsMismatchedChallenges(t *testing.T) {
	sig1 := Signature{C: big.NewInt(1), S: big.NewInt(2)}
	sig2 := Signature{C: big.NewInt(3), S: big.NewInt(4)}
	if _, ok := SumSignatures([]Signature{sig1, sig2}); ok {
		t.Fatalf("expected mismatched-challenge aggregation to fail")
	}
}

func TestSumSignaturesRejectsEmpty(t *testing.T) {
	if _, ok := SumSignatures(nil); ok {
		t.Fatalf("expected empty aggregation to fail")
	}
}

func TestSignatureNounRoundTrip(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(99999999999)}
	m := testMessage()
	sig, err := pk.Sign(m)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	n := sig.ToNoun()
	decoded, ok := DecodeSignature(n)
	if !ok {
		t.Fatalf("decode signature failed")
	}
	if decoded.C.Cmp(sig.C) != 0 || decoded.S.Cmp(sig.S) != 0 {
		t.Fatalf("signature round trip mismatch")
	}
}

func TestPublicKeyWireRoundTrip(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(13579)}
	pub := pk.PublicKey()
	b, err := pub.ToBeBytes()
	if err != nil {
		t.Fatalf("to_be_bytes failed: %v", err)
	}
	back, err := PublicKeyFromBeBytes(b[:])
	if err != nil {
		t.Fatalf("from_be_bytes failed: %v", err)
	}
	if !pub.Point.Equal(back.Point) {
		t.Fatalf("public key wire round trip mismatch")
	}
}

func TestPublicKeyBase58RoundTrip(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(24680)}
	pub := pk.PublicKey()
	s, err := pub.ToBase58()
	if err != nil {
		t.Fatalf("to_base58 failed: %v", err)
	}
	back, err := PublicKeyFromBase58(s)
	if err != nil {
		t.Fatalf("from_base58 failed: %v", err)
	}
	if !pub.Point.Equal(back.Point) {
		t.Fatalf("public key base58 round trip mismatch")
	}
}

func TestPublicKeyNounRoundTrip(t *testing.T) {
	pk := PrivateKey{Scalar: big.NewInt(2468)}
	pub := pk.PublicKey()
	n := pub.ToNoun()
	decoded, ok := DecodePublicKey(n)
	if !ok {
		t.Fatalf("decode public key failed")
	}
	if !pub.Point.Equal(decoded.Point) {
		t.Fatalf("public key noun round trip mismatch")
	}
	if pub.Hash() != decoded.Hash() {
		t.Fatalf("public key hash mismatch after round trip")
	}
}
