package noun

import "math/big"

// Cue is the inverse of Jam: it decodes a canonical bit-packed byte
// string back into a Noun, resolving backreferences against the
// offsets where each already-decoded Atom/Cell began.
func Cue(data []byte) (*Noun, bool) {
	bits := bytesToBits(data)
	cursor := 0

	nextBit := func() bool {
		if cursor < len(bits) {
			b := bits[cursor]
			cursor++
			return b
		}
		return false
	}

	restBits := func() []bool {
		if cursor < len(bits) {
			return bits[cursor:]
		}
		return nil
	}

	nextUpToNBits := func(n int) []bool {
		rest := restBits()
		var out []bool
		if len(rest) >= n {
			out = rest[:n]
		} else {
			out = rest
		}
		cursor += n
		return out
	}

	getSize := func() (int, bool) {
		rest := restBits()
		bitsize := -1
		for i, b := range rest {
			if b {
				bitsize = i
				break
			}
		}
		if bitsize < 0 {
			return 0, false
		}
		if bitsize == 0 {
			cursor++
			return 0, true
		}
		cursor += bitsize + 1
		sizeBits := nextUpToNBits(bitsize - 1)
		size := int(bitsToU64(sizeBits)) + (1 << uint(bitsize-1))
		return size, true
	}

	rubBackref := func() (int, bool) {
		size, ok := getSize()
		if !ok {
			return 0, false
		}
		if size == 0 {
			return 0, true
		}
		if size > 64 {
			return 0, false
		}
		bref := nextUpToNBits(size)
		return int(bitsToU64(bref)), true
	}

	rubAtom := func() (*big.Int, bool) {
		size, ok := getSize()
		if !ok {
			return nil, false
		}
		bitsv := nextUpToNBits(size)
		if size == 0 {
			return big.NewInt(0), true
		}
		return bitsToBig(bitsv), true
	}

	type destKind int
	const (
		destPointer destKind = iota
		destBackref
	)
	type stackEntry struct {
		kind    destKind
		dest    **Noun
		backref int
	}

	backrefMap := make(map[int]*Noun)
	var result *Noun
	var stack []stackEntry
	stack = append(stack, stackEntry{kind: destPointer, dest: &result})

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch entry.kind {
		case destBackref:
			backrefMap[entry.backref] = *entry.dest
		case destPointer:
			if nextBit() {
				if nextBit() {
					// 11: backref
					bref, ok := rubBackref()
					if !ok {
						return nil, false
					}
					target, ok := backrefMap[bref]
					if !ok {
						return nil, false
					}
					*entry.dest = target
				} else {
					// 10: cell
					cellOffset := cursor - 2
					var cell Noun
					cell.Kind = KindCell
					*entry.dest = &cell
					backrefMap[cellOffset] = &cell
					stack = append(stack, stackEntry{kind: destBackref, backref: cellOffset, dest: entry.dest})
					stack = append(stack, stackEntry{kind: destPointer, dest: &cell.Right})
					stack = append(stack, stackEntry{kind: destPointer, dest: &cell.Left})
				}
			} else {
				// 0: atom
				atomOffset := cursor - 1
				a, ok := rubAtom()
				if !ok {
					return nil, false
				}
				var atomNoun Noun
				atomNoun.Kind = KindAtom
				atomNoun.Atom = a
				*entry.dest = &atomNoun
				backrefMap[atomOffset] = &atomNoun
			}
		}
	}

	if result == nil {
		return nil, false
	}
	return result, true
}
