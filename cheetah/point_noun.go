package cheetah

import (
	"github.com/nockwallet/rose/curve"
	"github.com/nockwallet/rose/noun"
)

// pointToNoun encodes a curve point as (x, (y, inf)), matching the
// source's blanket tuple encoding of CheetahPoint's three fields.
func pointToNoun(p curve.Point) *noun.Noun {
	xNoun := noun.EncodeFixedWith(p.X[:], noun.EncodeBelt)
	yNoun := noun.EncodeFixedWith(p.Y[:], noun.EncodeBelt)
	infNoun := noun.EncodeBool(p.Inf)
	return noun.Cons(xNoun, noun.Cons(yNoun, infNoun))
}

func pointFromNoun(n *noun.Noun) (curve.Point, bool) {
	parts, ok := noun.DecodeFixed(n, 3)
	if !ok {
		return curve.Point{}, false
	}
	xs, ok := noun.DecodeFixedWith(parts[0], 6, noun.DecodeBelt)
	if !ok {
		return curve.Point{}, false
	}
	ys, ok := noun.DecodeFixedWith(parts[1], 6, noun.DecodeBelt)
	if !ok {
		return curve.Point{}, false
	}
	inf, ok := noun.DecodeBool(parts[2])
	if !ok {
		return curve.Point{}, false
	}
	var p curve.Point
	copy(p.X[:], xs)
	copy(p.Y[:], ys)
	p.Inf = inf
	return p, true
}
