package curve

import (
	"encoding/binary"
	"errors"

	"github.com/mr-tron/base58"
	"github.com/nockwallet/rose/belt"
)

var (
	ErrNotOnCurve      = errors.New("curve: point not on curve")
	ErrInvalidLength   = errors.New("curve: invalid wire length")
	ErrPointAtInfinity = errors.New("curve: point at infinity has no wire encoding")
)

// ToBeBytes lays out a finite point as 97 raw bytes: a leading 0x01
// tag, then the y coordinate's six belts reversed, then the x
// coordinate's six belts reversed, each belt as 8 big-endian bytes.
func ToBeBytes(p Point) ([97]byte, error) {
	var out [97]byte
	if p.Inf {
		return out, ErrPointAtInfinity
	}
	out[0] = 0x1
	offset := 1
	for i := 5; i >= 0; i-- {
		binary.BigEndian.PutUint64(out[offset:offset+8], uint64(p.Y[i]))
		offset += 8
	}
	for i := 5; i >= 0; i-- {
		binary.BigEndian.PutUint64(out[offset:offset+8], uint64(p.X[i]))
		offset += 8
	}
	return out, nil
}

// PointFromBeBytes is the inverse of ToBeBytes. It does not check
// curve membership; callers decoding untrusted input should follow up
// with InCurve.
func PointFromBeBytes(data []byte) (Point, error) {
	if len(data) != 97 {
		return Point{}, ErrInvalidLength
	}
	var x, y [6]belt.Belt
	for i := 0; i < 6; i++ {
		offset := 1 + i*8
		y[5-i] = belt.Belt(binary.BigEndian.Uint64(data[offset : offset+8]))
	}
	for i := 0; i < 6; i++ {
		offset := 49 + i*8
		x[5-i] = belt.Belt(binary.BigEndian.Uint64(data[offset : offset+8]))
	}
	return Point{X: x, Y: y, Inf: false}, nil
}

// ToBase58 base58-displays a finite point's ToBeBytes encoding.
func ToBase58(p Point) (string, error) {
	b, err := ToBeBytes(p)
	if err != nil {
		return "", err
	}
	return base58.Encode(b[:]), nil
}

// FromBase58 is the inverse of ToBase58, rejecting any decoded point
// that is not actually on the curve's prime-order subgroup.
func FromBase58(s string) (Point, error) {
	v, err := base58.Decode(s)
	if err != nil {
		return Point{}, err
	}
	pt, err := PointFromBeBytes(v)
	if err != nil {
		return Point{}, err
	}
	if !InCurve(pt) {
		return Point{}, ErrNotOnCurve
	}
	return pt, nil
}
