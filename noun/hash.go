package noun

import (
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/nockwallet/rose/belt"
	"github.com/nockwallet/rose/tip5"
)

// Digest is the five-Belt hash output used throughout this module to
// content-address Nouns, keys, and transactions.
type Digest = tip5.Digest

// Hashable is implemented by any value with a canonical digest.
type Hashable interface {
	Hash() Digest
}

// HashNoun is the primitive every other hash ultimately calls: it
// hashes a leaf count together with a flattened leaf sequence and the
// tree's Dyck-word shape (0 on descending into a left child, 1 before
// descending into a right child).
func HashNoun(leaves, dyck []belt.Belt) Digest {
	combined := make([]belt.Belt, 0, 1+len(leaves)+len(dyck))
	combined = append(combined, belt.Belt(uint64(len(leaves))))
	combined = append(combined, leaves...)
	combined = append(combined, dyck...)
	return tip5.HashVarlen(combined)
}

// Hash walks the tree, recording atoms as leaves and the left/right
// descent pattern as a Dyck word, then hashes the combination. Atoms
// must fit in a single field element; domain encoders are expected to
// chunk wider values across multiple atoms (see EncodeBytes) rather
// than relying on a single oversize atom here.
func (n *Noun) Hash() Digest {
	var leaves, dyck []belt.Belt
	var visit func(cur *Noun)
	visit = func(cur *Noun) {
		if cur.IsAtom() {
			if !cur.Atom.IsUint64() {
				panic("noun: atom too large to hash directly")
			}
			leaves = append(leaves, belt.Belt(cur.Atom.Uint64()))
			return
		}
		dyck = append(dyck, belt.Belt(0))
		visit(cur.Left)
		dyck = append(dyck, belt.Belt(1))
		visit(cur.Right)
	}
	visit(n)
	return HashNoun(leaves, dyck)
}

// HashBelt hashes a single field element as a one-leaf, empty-shape
// Noun.
func HashBelt(b belt.Belt) Digest { return HashNoun([]belt.Belt{b}, nil) }

// HashU64 hashes a uint64 the way HashBelt hashes a Belt.
func HashU64(v uint64) Digest { return HashBelt(belt.Belt(v)) }

// HashBool hashes a bool under the source's reversed convention (true
// hashes like 0, false like 1).
func HashBool(b bool) Digest {
	if b {
		return HashU64(0)
	}
	return HashU64(1)
}

func hashPair(a, b Digest) Digest {
	belts := make([]belt.Belt, 0, 10)
	belts = append(belts, a[:]...)
	belts = append(belts, b[:]...)
	return tip5.HashFixed(belts)
}

// HashString hashes a string via its canonical Noun encoding. The
// source instead packs up to 8 bytes into a single little-endian u64
// and hashes that, which only round-trips (and only avoids an
// out-of-range shift) for strings of 8 bytes or fewer; this
// generalizes to strings of any length the same way EncodeBytes does,
// see DESIGN.md.
func HashString(s string) Digest { return EncodeString(s).Hash() }

// HashTuple hashes a sequence of Hashable values the way the source's
// nested tuple impls do: right-associated pairwise folding through
// hash_fixed, terminating at the last element.
func HashTuple(items ...Hashable) Digest {
	switch len(items) {
	case 0:
		return HashU64(0)
	case 1:
		return items[0].Hash()
	default:
		first := items[0].Hash()
		rest := HashTuple(items[1:]...)
		return hashPair(first, rest)
	}
}

// HashSlice hashes a dynamic-length sequence the way Vec<T>'s impl
// does: empty hashes like 0, otherwise (first, hash(rest)).
func HashSlice[T Hashable](items []T) Digest {
	if len(items) == 0 {
		return HashU64(0)
	}
	first := items[0].Hash()
	rest := HashSlice(items[1:])
	return hashPair(first, rest)
}

// HashOption hashes an optional Hashable value: absent like 0, present
// as (0, value).
func HashOption[T Hashable](v *T) Digest {
	if v == nil {
		return HashU64(0)
	}
	return HashTuple(boolHashable(true), *v)
}

type boolHashable bool

func (b boolHashable) Hash() Digest { return HashBool(bool(b)) }

// BoolHashable adapts a bool to Hashable for use as a HashTuple
// element (e.g. a leading domain-separation tag).
type BoolHashable bool

func (b BoolHashable) Hash() Digest { return HashBool(bool(b)) }

// U64Hashable adapts a uint64 to Hashable for use as a HashTuple
// element.
type U64Hashable uint64

func (u U64Hashable) Hash() Digest { return HashU64(uint64(u)) }

// StringHashable adapts a string to Hashable for use as a HashTuple
// element, via HashString.
type StringHashable string

func (s StringHashable) Hash() Digest { return HashString(string(s)) }

// EncodeDigest packs a Digest as a fixed 5-belt sequence, the shape
// every wider fixed-width value (curve points, signature scalars)
// already uses for its own limbs.
func EncodeDigest(d Digest) *Noun { return EncodeFixedWith(d[:], EncodeBelt) }

// DecodeDigest is the inverse of EncodeDigest.
func DecodeDigest(n *Noun) (Digest, bool) {
	belts, ok := DecodeFixedWith(n, 5, DecodeBelt)
	if !ok {
		return Digest{}, false
	}
	var d Digest
	copy(d[:], belts)
	return d, true
}

// DigestKey adapts a bare Digest to the Keyable constraint ZSet/ZMap
// require, since Digest is a type alias for tip5.Digest and cannot
// carry methods of its own. A Digest hashes to itself, matching the
// source's Hashable impl for Digest.
type DigestKey Digest

func (d DigestKey) ToNoun() *Noun { return EncodeDigest(Digest(d)) }
func (d DigestKey) Hash() Digest  { return Digest(d) }

// ToBytes packs a Digest into 40 big-endian bytes using the same
// positional base-Prime weighting the source's Base58Belts<5> uses
// (belt[0] least significant).
func ToBytes(d Digest) [40]byte {
	p := new(big.Int).SetUint64(belt.Prime)
	result := big.NewInt(0)
	power := big.NewInt(1)
	for _, b := range d {
		term := new(big.Int).Mul(new(big.Int).SetUint64(uint64(b)), power)
		result.Add(result, term)
		power.Mul(power, p)
	}
	var out [40]byte
	rb := result.Bytes()
	copy(out[40-len(rb):], rb)
	return out
}

// FromBytes is the inverse of ToBytes.
func FromBytes(b []byte) Digest {
	p := new(big.Int).SetUint64(belt.Prime)
	num := new(big.Int).SetBytes(b)
	var d Digest
	rem := new(big.Int)
	quot := new(big.Int)
	cur := num
	for i := 0; i < 5; i++ {
		quot.DivMod(cur, p, rem)
		d[i] = belt.Belt(rem.Uint64())
		cur = new(big.Int).Set(quot)
	}
	return d
}

// DigestString renders a Digest as base58, matching the source's Display
// impl for Digest/Base58Belts<5>.
func DigestString(d Digest) string {
	b := ToBytes(d)
	return base58.Encode(b[:])
}

// ParseDigest decodes a base58 Digest string.
func ParseDigest(s string) (Digest, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Digest{}, err
	}
	return FromBytes(b), nil
}
