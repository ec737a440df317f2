// Package cheetah implements Schnorr-style signatures (single-party,
// multiparty, and aggregatable) over the cheetah curve, built on top
// of the lower-level curve and tip5 packages.
package cheetah

import (
	"errors"
	"math/big"

	"github.com/nockwallet/rose/belt"
	"github.com/nockwallet/rose/curve"
	"github.com/nockwallet/rose/noun"
	"github.com/nockwallet/rose/tip5"
)

var (
	ErrInvalidSignature = errors.New("cheetah: signature scalar out of range")
	ErrAggregateMismatch = errors.New("cheetah: aggregated signatures do not share a challenge")
	ErrEmptyAggregate    = errors.New("cheetah: cannot aggregate zero signatures")
	ErrCurveOp           = errors.New("cheetah: curve operation failed")
)

// PublicKey wraps a curve point, the verification half of a keypair.
type PublicKey struct {
	Point curve.Point
}

// ToNoun encodes the public key the way the underlying point encodes.
func (pk PublicKey) ToNoun() *noun.Noun { return pointToNoun(pk.Point) }

// DecodePublicKey is the inverse of ToNoun.
func DecodePublicKey(n *noun.Noun) (PublicKey, bool) {
	p, ok := pointFromNoun(n)
	return PublicKey{Point: p}, ok
}

// Hash digests the public key via its Noun encoding.
func (pk PublicKey) Hash() noun.Digest { return pk.ToNoun().Hash() }

// Add combines two public keys by adding their curve points, the
// operation multiparty key aggregation uses.
func (pk PublicKey) Add(other PublicKey) (PublicKey, bool) {
	p, ok := curve.Add(pk.Point, other.Point)
	return PublicKey{Point: p}, ok
}

// Sub subtracts other's point from pk's.
func (pk PublicKey) Sub(other PublicKey) (PublicKey, bool) {
	p, ok := curve.Add(pk.Point, curve.Neg(other.Point))
	return PublicKey{Point: p}, ok
}

// SumPublicKeys folds a list of public keys into their aggregate,
// starting from the identity.
func SumPublicKeys(keys []PublicKey) (PublicKey, bool) {
	acc := PublicKey{Point: curve.Identity}
	for _, k := range keys {
		var ok bool
		acc, ok = acc.Add(k)
		if !ok {
			return PublicKey{}, false
		}
	}
	return acc, true
}

// ToBeBytes is the 97-byte wire encoding (leading 0x01 tag, y then x
// coordinates reversed, 8 big-endian bytes per belt).
func (pk PublicKey) ToBeBytes() ([97]byte, error) { return curve.ToBeBytes(pk.Point) }

// PublicKeyFromBeBytes is the inverse of ToBeBytes. It does not check
// curve membership.
func PublicKeyFromBeBytes(data []byte) (PublicKey, error) {
	p, err := curve.PointFromBeBytes(data)
	return PublicKey{Point: p}, err
}

// ToSlip10Bytes is the legacy 96-byte encoding used by HD derivation:
// the same coordinate layout as ToBeBytes but without the prefix byte.
func (pk PublicKey) ToSlip10Bytes() ([]byte, error) {
	full, err := curve.ToBeBytes(pk.Point)
	if err != nil {
		return nil, err
	}
	return full[1:], nil
}

// ToBase58 / FromBase58 are the display forms, validating curve
// membership on decode.
func (pk PublicKey) ToBase58() (string, error) { return curve.ToBase58(pk.Point) }

func PublicKeyFromBase58(s string) (PublicKey, error) {
	p, err := curve.FromBase58(s)
	return PublicKey{Point: p}, err
}

// Signature is a Schnorr challenge/response pair.
type Signature struct {
	C, S *big.Int
}

// ToNoun encodes a Signature as (c, s), each scalar packed as 8 belts.
func (sig Signature) ToNoun() *noun.Noun {
	return noun.Cons(scalarToNoun(sig.C), scalarToNoun(sig.S))
}

// DecodeSignature is the inverse of ToNoun.
func DecodeSignature(n *noun.Noun) (Signature, bool) {
	if !n.IsCell() {
		return Signature{}, false
	}
	c, ok := scalarFromNoun(n.Left)
	if !ok {
		return Signature{}, false
	}
	s, ok := scalarFromNoun(n.Right)
	if !ok {
		return Signature{}, false
	}
	return Signature{C: c, S: s}, true
}

// Hash digests a Signature via its Noun encoding.
func (sig Signature) Hash() noun.Digest { return sig.ToNoun().Hash() }

// SumSignatures aggregates partial signatures sharing the same
// challenge into a single valid signature, the multiparty-signing
// combine step. It fails if the list is empty or the challenges
// disagree.
func SumSignatures(sigs []Signature) (Signature, bool) {
	if len(sigs) == 0 {
		return Signature{}, false
	}
	var c *big.Int
	s := big.NewInt(0)
	for _, sig := range sigs {
		if c != nil && c.Cmp(sig.C) != 0 {
			return Signature{}, false
		}
		c = sig.C
		s.Add(s, sig.S)
		s.Mod(s, curve.GOrder)
	}
	return Signature{C: c, S: s}, true
}

// PrivateKey is a scalar mod curve.GOrder, the signing half of a
// keypair.
type PrivateKey struct {
	Scalar *big.Int
}

// PublicKey derives the corresponding public key, Scalar*Gen.
func (pk PrivateKey) PublicKey() PublicKey {
	p, _ := curve.ScalBig(pk.Scalar, curve.Gen)
	return PublicKey{Point: p}
}

func digestWords4(d tip5.Digest) [4]uint64 {
	var a [4]uint64
	for i := 0; i < 4; i++ {
		a[i] = uint64(d[i])
	}
	return a
}

// NonceFor derives the deterministic per-message nonce scalar used as
// the signing commitment: a hash of the public key's coordinates, the
// message digest, and the private scalar's own bytes, truncated mod
// curve.GOrder.
func (pk PrivateKey) NonceFor(m noun.Digest) *big.Int {
	pubkey := pk.PublicKey().Point
	transcript := make([]belt.Belt, 0, 6+6+5+8)
	transcript = append(transcript, pubkey.X[:]...)
	transcript = append(transcript, pubkey.Y[:]...)
	transcript = append(transcript, m[:]...)
	skBytes := scalarLEBytesMinimal(pk.Scalar)
	for i := 0; i < len(skBytes); i += 4 {
		end := i + 4
		if end > len(skBytes) {
			end = len(skBytes)
		}
		var buf [4]byte
		copy(buf[:], skBytes[i:end])
		v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		transcript = append(transcript, belt.Belt(v))
	}
	digest := tip5.HashVarlen(transcript)
	return curve.TruncGOrder(digestWords4(digest))
}

// CombineNonces sums a set of per-party nonces mod curve.GOrder, the
// step multiparty signing uses to agree on a shared nonce before any
// partial signature is produced.
func CombineNonces(nonces []*big.Int) *big.Int {
	acc := big.NewInt(0)
	for _, n := range nonces {
		acc.Add(acc, n)
	}
	return acc.Mod(acc, curve.GOrder)
}

// Sign produces a single-party signature over digest m.
func (pk PrivateKey) Sign(m noun.Digest) (Signature, error) {
	return pk.SignMulti(m, pk.NonceFor(m), pk.PublicKey())
}

// SignMulti produces a partial signature against a shared nonce and a
// combined public key; combining the partial signatures of every
// party that contributed to both (via SumSignatures) yields a
// signature valid under the combined key.
func (pk PrivateKey) SignMulti(m noun.Digest, sharedNonce *big.Int, combinedPubkey PublicKey) (Signature, error) {
	scalar, ok := curve.ScalBig(sharedNonce, curve.Gen)
	if !ok {
		return Signature{}, ErrCurveOp
	}
	transcript := make([]belt.Belt, 0, 6+6+6+6+5)
	transcript = append(transcript, scalar.X[:]...)
	transcript = append(transcript, scalar.Y[:]...)
	transcript = append(transcript, combinedPubkey.Point.X[:]...)
	transcript = append(transcript, combinedPubkey.Point.Y[:]...)
	transcript = append(transcript, m[:]...)
	digest := tip5.HashVarlen(transcript)
	chal := curve.TruncGOrder(digestWords4(digest))

	nonce := pk.NonceFor(m)
	s := new(big.Int).Mul(chal, pk.Scalar)
	s.Add(s, nonce)
	s.Mod(s, curve.GOrder)
	return Signature{C: chal, S: s}, nil
}

// ToBeBytes renders the scalar as 32 big-endian bytes.
func (pk PrivateKey) ToBeBytes() [32]byte {
	var out [32]byte
	b := pk.Scalar.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// Add / Sub combine private key scalars mod curve.GOrder.
func (pk PrivateKey) Add(other PrivateKey) PrivateKey {
	s := new(big.Int).Add(pk.Scalar, other.Scalar)
	return PrivateKey{Scalar: s.Mod(s, curve.GOrder)}
}

func (pk PrivateKey) Sub(other PrivateKey) PrivateKey {
	s := new(big.Int).Sub(pk.Scalar, other.Scalar)
	return PrivateKey{Scalar: s.Mod(s, curve.GOrder)}
}

// Verify checks that sig is a valid signature by pk over digest m.
func Verify(pk PublicKey, m noun.Digest, sig Signature) bool {
	zero := big.NewInt(0)
	if sig.C.Cmp(zero) == 0 || sig.C.Cmp(curve.GOrder) >= 0 {
		return false
	}
	if sig.S.Cmp(zero) == 0 || sig.S.Cmp(curve.GOrder) >= 0 {
		return false
	}

	sg, ok := curve.ScalBig(sig.S, curve.Gen)
	if !ok {
		return false
	}
	cPk, ok := curve.ScalBig(sig.C, pk.Point)
	if !ok {
		return false
	}
	scalar, ok := curve.Add(sg, curve.Neg(cPk))
	if !ok {
		return false
	}

	transcript := make([]belt.Belt, 0, 6+6+6+6+5)
	transcript = append(transcript, scalar.X[:]...)
	transcript = append(transcript, scalar.Y[:]...)
	transcript = append(transcript, pk.Point.X[:]...)
	transcript = append(transcript, pk.Point.Y[:]...)
	transcript = append(transcript, m[:]...)
	digest := tip5.HashVarlen(transcript)
	chal := curve.TruncGOrder(digestWords4(digest))

	return chal.Cmp(sig.C) == 0
}
