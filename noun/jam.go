package noun

import "math/big"

// Jam serializes a Noun into its canonical bit-packed byte form.
// Repeated substructure (by structural equality) is replaced with a
// backreference to its first occurrence, matching the source's
// encoding exactly: a Cell always backrefs a prior identical Cell; an
// Atom only backrefs a prior identical Atom when the backreference
// would take fewer bits than re-encoding the atom's value.
func Jam(n *Noun) []byte {
	type backref struct {
		noun   *Noun
		offset int
	}
	var backrefs []backref
	findBackref := func(target *Noun) (int, bool) {
		for _, br := range backrefs {
			if br.noun.Equal(target) {
				return br.offset, true
			}
		}
		return 0, false
	}

	var buf bitbuf

	matBackref := func(backref int) {
		if backref == 0 {
			buf.push(true)
			buf.push(true)
			buf.push(true)
			return
		}
		backrefSz := bigBitLen(uint64(backref))
		backrefSzSz := bigBitLen(uint64(backrefSz))
		buf.push(true)
		buf.push(true)
		buf.pushN(backrefSzSz, false)
		buf.push(true)
		buf.pushLowBits(uint64(backrefSz), backrefSzSz-1)
		buf.pushLowBits(uint64(backref), backrefSz)
	}

	matAtom := func(a *big.Int) {
		if a.Sign() == 0 {
			buf.push(false)
			buf.push(true)
			return
		}
		atomSz := a.BitLen()
		atomSzSz := bigBitLen(uint64(atomSz))
		buf.push(false)
		buf.pushN(atomSzSz, false)
		buf.push(true)
		buf.pushLowBits(uint64(atomSz), atomSzSz-1)
		buf.pushAtomBits(a, atomSz)
	}

	var stack []*Noun
	stack = append(stack, n)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if off, found := findBackref(cur); found {
			if cur.IsAtom() {
				if bigBitLen(uint64(off)) < cur.Atom.BitLen() {
					matBackref(off)
				} else {
					matAtom(cur.Atom)
				}
			} else {
				matBackref(off)
			}
			continue
		}

		offset := len(buf)
		backrefs = append(backrefs, backref{noun: cur, offset: offset})
		if cur.IsAtom() {
			matAtom(cur.Atom)
		} else {
			buf.push(true)
			buf.push(false)
			stack = append(stack, cur.Right)
			stack = append(stack, cur.Left)
		}
	}

	return buf.toBytes()
}

func bigBitLen(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
