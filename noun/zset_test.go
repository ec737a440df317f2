package noun

import "testing"

// testKey is a minimal Keyable used only to exercise ZSet/ZMap without
// depending on any higher-level domain type.
type testKey uint64

func (k testKey) ToNoun() *Noun { return EncodeU64(uint64(k)) }
func (k testKey) Hash() Digest  { return HashU64(uint64(k)) }

func TestZSetInsertDedupAndHash(t *testing.T) {
	s := NewZSet[testKey]()
	if !s.Insert(testKey(1)) {
		t.Fatalf("first insert of 1 should report new")
	}
	if !s.Insert(testKey(2)) {
		t.Fatalf("first insert of 2 should report new")
	}
	if s.Insert(testKey(1)) {
		t.Fatalf("re-insert of 1 should report not new")
	}
	elems := s.PreorderSlice()
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elems))
	}
}

func TestZSetShapeIndependentOfInsertOrder(t *testing.T) {
	a := NewZSet[testKey]()
	b := NewZSet[testKey]()
	for _, v := range []testKey{5, 1, 9, 3, 7} {
		a.Insert(v)
	}
	for _, v := range []testKey{7, 3, 9, 1, 5} {
		b.Insert(v)
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("sets built from the same elements in different orders should hash equal")
	}
}

func TestZSetToNounRoundTrip(t *testing.T) {
	s := NewZSet[testKey]()
	for _, v := range []testKey{10, 20, 30, 40} {
		s.Insert(v)
	}
	n := s.ToNoun()
	decoded, ok := DecodeZSet(n, func(x *Noun) (testKey, bool) {
		v, ok := DecodeU64(x)
		return testKey(v), ok
	})
	if !ok {
		t.Fatalf("DecodeZSet failed")
	}
	if decoded.Hash() != s.Hash() {
		t.Fatalf("decoded set hash mismatch")
	}
	want := s.PreorderSlice()
	got := decoded.PreorderSlice()
	if len(want) != len(got) {
		t.Fatalf("length mismatch after round trip")
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("element %d mismatch after round trip", i)
		}
	}
}

func TestZSetEmptyHashMatchesAtomZero(t *testing.T) {
	s := NewZSet[testKey]()
	if s.Hash() != HashU64(0) {
		t.Fatalf("empty set should hash like atom 0")
	}
}
