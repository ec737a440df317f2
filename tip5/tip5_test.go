package tip5

import (
	"testing"

	"github.com/nockwallet/rose/belt"
)

func TestHashVarlenDeterministic(t *testing.T) {
	in := []belt.Belt{belt.Belt(1), belt.Belt(2), belt.Belt(3)}
	a := HashVarlen(append([]belt.Belt(nil), in...))
	b := HashVarlen(append([]belt.Belt(nil), in...))
	if a != b {
		t.Fatalf("HashVarlen not deterministic: %v vs %v", a, b)
	}
}

func TestHashVarlenDoesNotMutateCaller(t *testing.T) {
	in := []belt.Belt{belt.Belt(1), belt.Belt(2), belt.Belt(3)}
	cp := append([]belt.Belt(nil), in...)
	HashVarlen(in)
	for i := range in {
		if in[i] != cp[i] {
			t.Fatalf("HashVarlen mutated caller's slice at %d", i)
		}
	}
}

func TestHashVarlenSensitiveToInput(t *testing.T) {
	a := HashVarlen([]belt.Belt{belt.Belt(1), belt.Belt(2)})
	b := HashVarlen([]belt.Belt{belt.Belt(1), belt.Belt(3)})
	if a == b {
		t.Fatalf("different inputs produced the same digest")
	}
}

func TestHashVarlenSensitiveToLength(t *testing.T) {
	a := HashVarlen([]belt.Belt{belt.Belt(1)})
	b := HashVarlen([]belt.Belt{belt.Belt(1), belt.Belt(0)})
	if a == b {
		t.Fatalf("padding rule failed to distinguish length-1 from length-2 zero-extended input")
	}
}

func TestHashFixedRequiresExactlyOneRate(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for wrong-length HashFixed input")
		}
	}()
	HashFixed([]belt.Belt{belt.Belt(1), belt.Belt(2)})
}

func TestHashFixedAndVarlenDiffer(t *testing.T) {
	in := make([]belt.Belt, rate)
	for i := range in {
		in[i] = belt.Belt(uint64(i + 1))
	}
	fixed := HashFixed(append([]belt.Belt(nil), in...))
	varlen := HashVarlen(append([]belt.Belt(nil), in...))
	if fixed == varlen {
		t.Fatalf("fixed and varlen hashing of the same rate-sized input should differ (distinct initial capacities)")
	}
}
