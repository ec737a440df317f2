package cheetah

import (
	"math/big"

	"github.com/nockwallet/rose/belt"
	"github.com/nockwallet/rose/noun"
)

// scalarToNoun packs a scalar into a fixed 8-belt little-endian
// encoding (32 bytes, 4 bytes per belt), the shape Signature's c/s
// fields use on the wire.
func scalarToNoun(x *big.Int) *noun.Noun {
	b := make([]byte, 32)
	xb := x.Bytes()
	copy(b[32-len(xb):], xb)
	reverseBytes(b)
	belts := belt.FromBytes(b)
	return noun.EncodeFixedWith(belts, noun.EncodeBelt)
}

func scalarFromNoun(n *noun.Noun) (*big.Int, bool) {
	belts, ok := noun.DecodeFixedWith(n, 8, noun.DecodeBelt)
	if !ok {
		return nil, false
	}
	b := belt.ToBytes(belts)
	reverseBytes(b)
	return new(big.Int).SetBytes(b), true
}

// scalarLEBytesMinimal renders x as minimal-length little-endian
// bytes (no fixed width, matching UBig::to_le_bytes), used only for
// the nonce transcript's private-scalar tail.
func scalarLEBytesMinimal(x *big.Int) []byte {
	b := x.Bytes()
	reverseBytes(b)
	return b
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
