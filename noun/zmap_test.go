package noun

import "testing"

func TestZMapInsertGetAndDedup(t *testing.T) {
	m := NewZMap[testKey, testKey]()
	if !m.Insert(testKey(1), testKey(100)) {
		t.Fatalf("first insert should report new")
	}
	if m.Insert(testKey(1), testKey(999)) {
		t.Fatalf("re-insert of existing key should report not new")
	}
	v, ok := m.Get(testKey(1))
	if !ok || v != testKey(100) {
		t.Fatalf("get returned wrong value: %v, %v", v, ok)
	}
	if _, ok := m.Get(testKey(2)); ok {
		t.Fatalf("get of missing key should fail")
	}
}

func TestZMapShapeIndependentOfInsertOrder(t *testing.T) {
	a := NewZMap[testKey, testKey]()
	b := NewZMap[testKey, testKey]()
	pairs := [][2]testKey{{1, 10}, {2, 20}, {3, 30}, {4, 40}}
	for _, p := range pairs {
		a.Insert(p[0], p[1])
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		b.Insert(pairs[i][0], pairs[i][1])
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("maps built from the same pairs in different orders should hash equal")
	}
}

func TestZMapToNounRoundTrip(t *testing.T) {
	m := NewZMap[testKey, testKey]()
	m.Insert(testKey(1), testKey(11))
	m.Insert(testKey(2), testKey(22))
	m.Insert(testKey(3), testKey(33))
	n := m.ToNoun()
	decU64 := func(x *Noun) (testKey, bool) {
		v, ok := DecodeU64(x)
		return testKey(v), ok
	}
	decoded, ok := DecodeZMap(n, decU64, decU64)
	if !ok {
		t.Fatalf("DecodeZMap failed")
	}
	if decoded.Hash() != m.Hash() {
		t.Fatalf("decoded map hash mismatch")
	}
	v, ok := decoded.Get(testKey(2))
	if !ok || v != testKey(22) {
		t.Fatalf("decoded map lookup failed: %v %v", v, ok)
	}
}

func TestZMapEmptyHashMatchesAtomZero(t *testing.T) {
	m := NewZMap[testKey, testKey]()
	if m.Hash() != HashU64(0) {
		t.Fatalf("empty map should hash like atom 0")
	}
}
