// Package txengine implements the UTXO-style note/seed/spend data
// model and the fee-balancing transaction builder built on top of the
// noun and cheetah packages.
package txengine

import (
	"github.com/nockwallet/rose/noun"
)

// Nicks is the base asset unit notes and seeds carry.
type Nicks = uint64

// BlockHeight indexes a block in the chain.
type BlockHeight = uint64

// Version tags the wire format of a Spend or RawTx.
type Version uint32

const (
	VersionV0 Version = 0
	VersionV1 Version = 1
	VersionV2 Version = 2
)

func (v Version) ToNoun() *noun.Noun { return noun.EncodeU64(uint64(v)) }

func DecodeVersion(n *noun.Noun) (Version, bool) {
	v, ok := noun.DecodeU64(n)
	if !ok || v > 2 {
		return 0, false
	}
	return Version(v), true
}

func (v Version) Hash() noun.Digest { return noun.HashU64(uint64(v)) }

// Pkh is an m-of-n public-key-hash spend condition.
type Pkh struct {
	M      uint64
	Hashes []noun.Digest
}

func NewPkh(m uint64, hashes []noun.Digest) Pkh { return Pkh{M: m, Hashes: hashes} }

func SinglePkh(hash noun.Digest) Pkh { return Pkh{M: 1, Hashes: []noun.Digest{hash}} }

func (p Pkh) digestSet() *noun.ZSet[noun.DigestKey] {
	set := noun.NewZSet[noun.DigestKey]()
	for _, h := range p.Hashes {
		set.Insert(noun.DigestKey(h))
	}
	return set
}

func (p Pkh) Hash() noun.Digest {
	return noun.HashTuple(noun.U64Hashable(p.M), p.digestSet())
}

func (p Pkh) ToNoun() *noun.Noun {
	return noun.Cons(noun.EncodeU64(p.M), p.digestSet().ToNoun())
}

func DecodePkh(n *noun.Noun) (Pkh, bool) {
	if !n.IsCell() {
		return Pkh{}, false
	}
	m, ok := noun.DecodeU64(n.Left)
	if !ok {
		return Pkh{}, false
	}
	set, ok := noun.DecodeZSet[noun.DigestKey](n.Right, func(dn *noun.Noun) (noun.DigestKey, bool) {
		d, ok := noun.DecodeDigest(dn)
		return noun.DigestKey(d), ok
	})
	if !ok {
		return Pkh{}, false
	}
	hashes := make([]noun.Digest, 0)
	for _, k := range set.PreorderSlice() {
		hashes = append(hashes, noun.Digest(k))
	}
	return Pkh{M: m, Hashes: hashes}, true
}

// NoteDataEntry is a single (key, value) slot in a note's free-form
// metadata, keyed by a short string tag such as "lock" or "memo".
type NoteDataEntry struct {
	Key string
	Val *noun.Noun
}

func (e NoteDataEntry) ToNoun() *noun.Noun {
	return noun.Cons(noun.EncodeString(e.Key), e.Val)
}

func DecodeNoteDataEntry(n *noun.Noun) (NoteDataEntry, bool) {
	if !n.IsCell() {
		return NoteDataEntry{}, false
	}
	key, ok := noun.DecodeString(n.Left)
	if !ok {
		return NoteDataEntry{}, false
	}
	return NoteDataEntry{Key: key, Val: n.Right}, true
}

func (e NoteDataEntry) Hash() noun.Digest {
	return noun.HashTuple(noun.StringHashable(e.Key), e.Val)
}

// MemoKey is the NoteDataEntry key a memo note is stored under.
const MemoKey = "memo"

// LockKey is the NoteDataEntry key a lock/pkh note is stored under.
const LockKey = "lock"

// NoteData is a note's free-form metadata: an order-insensitive,
// content-addressed set of entries.
type NoteData struct {
	Entries []NoteDataEntry
}

func EmptyNoteData() NoteData { return NoteData{} }

func (d NoteData) entrySet() *noun.ZSet[NoteDataEntry] {
	set := noun.NewZSet[NoteDataEntry]()
	for _, e := range d.Entries {
		set.Insert(e)
	}
	return set
}

func (d *NoteData) PushPkh(pkh Pkh) {
	val := noun.EncodeFixed([]*noun.Noun{
		noun.EncodeU64(0),
		noun.Cons(noun.EncodeString("pkh"), pkh.ToNoun()),
		noun.EncodeU64(0),
	})
	d.Entries = append(d.Entries, NoteDataEntry{Key: LockKey, Val: val})
}

// PushLock stores a full spend condition (not just a single pkh) as
// the note's lock entry. Only single spend conditions are supported;
// 2/4/8/16-way spend conditions are not modeled (matching a TODO in
// the source).
func (d *NoteData) PushLock(cond SpendCondition) {
	val := noun.EncodeFixed([]*noun.Noun{noun.EncodeU64(0), cond.ToNoun()})
	d.Entries = append(d.Entries, NoteDataEntry{Key: LockKey, Val: val})
}

func NoteDataFromPkh(pkh Pkh) NoteData {
	d := EmptyNoteData()
	d.PushPkh(pkh)
	return d
}

func (d *NoteData) PushMemo(memo *noun.Noun) {
	d.Entries = append(d.Entries, NoteDataEntry{Key: MemoKey, Val: memo})
}

func (d NoteData) ToNoun() *noun.Noun { return d.entrySet().ToNoun() }

func DecodeNoteData(n *noun.Noun) (NoteData, bool) {
	set, ok := noun.DecodeZSet[NoteDataEntry](n, DecodeNoteDataEntry)
	if !ok {
		return NoteData{}, false
	}
	return NoteData{Entries: set.PreorderSlice()}, true
}

func (d NoteData) Hash() noun.Digest { return d.entrySet().Hash() }

// Source records where a note came from: either the coinbase or a
// prior, normalized set of seeds.
type Source struct {
	Hash       noun.Digest
	IsCoinbase bool
}

func (s Source) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{noun.EncodeDigest(s.Hash), noun.EncodeBool(s.IsCoinbase)})
}

func DecodeSource(n *noun.Noun) (Source, bool) {
	parts, ok := noun.DecodeFixed(n, 2)
	if !ok {
		return Source{}, false
	}
	h, ok := noun.DecodeDigest(parts[0])
	if !ok {
		return Source{}, false
	}
	coinbase, ok := noun.DecodeBool(parts[1])
	if !ok {
		return Source{}, false
	}
	return Source{Hash: h, IsCoinbase: coinbase}, true
}

// sourceHash computes Source's own digest (field named Hash already
// occupies the method-name slot, so this is a free function rather
// than a Hash() method).
func sourceHash(s Source) noun.Digest {
	return noun.HashTuple(noun.DigestKey(s.Hash), noun.BoolHashable(s.IsCoinbase))
}

// Name content-addresses a note by its lock root and its source.
type Name struct {
	First noun.Digest
	Last  noun.Digest
}

func NewName(first, last noun.Digest) Name { return Name{First: first, Last: last} }

// NewNameV1 derives a note's name from its lock root and provenance,
// the sole name-derivation scheme this repo implements.
func NewNameV1(lock noun.Digest, source Source) Name {
	first := noun.HashTuple(noun.BoolHashable(true), noun.DigestKey(lock))
	last := noun.HashTuple(noun.BoolHashable(true), noun.DigestKey(sourceHash(source)), noun.U64Hashable(0))
	return NewName(first, last)
}

func (n Name) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{noun.EncodeDigest(n.First), noun.EncodeDigest(n.Last), noun.EncodeU64(0)})
}

func DecodeName(n *noun.Noun) (Name, bool) {
	parts, ok := noun.DecodeFixed(n, 3)
	if !ok {
		return Name{}, false
	}
	first, ok := noun.DecodeDigest(parts[0])
	if !ok {
		return Name{}, false
	}
	last, ok := noun.DecodeDigest(parts[1])
	if !ok {
		return Name{}, false
	}
	return Name{First: first, Last: last}, true
}

func (n Name) Hash() noun.Digest {
	return noun.HashTuple(noun.DigestKey(n.First), noun.DigestKey(n.Last), noun.U64Hashable(0))
}

// Less gives Name the total order the source's derived Ord gives it:
// lexicographic by First's belt limbs, then Last's.
func (n Name) Less(o Name) bool {
	if c := compareDigest(n.First, o.First); c != 0 {
		return c < 0
	}
	return compareDigest(n.Last, o.Last) < 0
}

func compareDigest(a, b noun.Digest) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// TimelockRange constrains a lock's absolute or relative unlock
// window; a zero bound is treated as absent.
type TimelockRange struct {
	Min, Max     uint64
	HasMin       bool
	HasMax       bool
}

func NewTimelockRange(min, max uint64, hasMin, hasMax bool) TimelockRange {
	if min == 0 {
		hasMin = false
	}
	if max == 0 {
		hasMax = false
	}
	return TimelockRange{Min: min, Max: max, HasMin: hasMin, HasMax: hasMax}
}

func NoTimelock() TimelockRange { return TimelockRange{} }

func (t TimelockRange) ToNoun() *noun.Noun {
	return noun.Cons(
		noun.EncodeOption(t.HasMin, noun.EncodeU64(t.Min)),
		noun.EncodeOption(t.HasMax, noun.EncodeU64(t.Max)),
	)
}

func DecodeTimelockRange(n *noun.Noun) (TimelockRange, bool) {
	if !n.IsCell() {
		return TimelockRange{}, false
	}
	minNoun, hasMin, ok := noun.DecodeOption(n.Left)
	if !ok {
		return TimelockRange{}, false
	}
	maxNoun, hasMax, ok := noun.DecodeOption(n.Right)
	if !ok {
		return TimelockRange{}, false
	}
	var min, max uint64
	if hasMin {
		min, ok = noun.DecodeU64(minNoun)
		if !ok {
			return TimelockRange{}, false
		}
	}
	if hasMax {
		max, ok = noun.DecodeU64(maxNoun)
		if !ok {
			return TimelockRange{}, false
		}
	}
	return TimelockRange{Min: min, Max: max, HasMin: hasMin, HasMax: hasMax}, true
}

func optionU64Hash(v uint64, present bool) noun.Digest {
	if !present {
		return noun.HashU64(0)
	}
	return noun.HashTuple(noun.BoolHashable(true), noun.U64Hashable(v))
}

func (t TimelockRange) Hash() noun.Digest {
	return noun.HashTuple(
		noun.DigestKey(optionU64Hash(t.Min, t.HasMin)),
		noun.DigestKey(optionU64Hash(t.Max, t.HasMax)),
	)
}

// Note is a content-addressed, spendable unit of assets.
type Note struct {
	Version     Version
	OriginPage  BlockHeight
	Name        Name
	NoteData    NoteData
	Assets      Nicks
}

func NewNote(version Version, originPage BlockHeight, name Name, noteData NoteData, assets Nicks) Note {
	return Note{Version: version, OriginPage: originPage, Name: name, NoteData: noteData, Assets: assets}
}

func (n Note) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{
		n.Version.ToNoun(),
		noun.EncodeU64(n.OriginPage),
		n.Name.ToNoun(),
		n.NoteData.ToNoun(),
		noun.EncodeU64(n.Assets),
	})
}

func DecodeNote(nn *noun.Noun) (Note, bool) {
	parts, ok := noun.DecodeFixed(nn, 5)
	if !ok {
		return Note{}, false
	}
	version, ok := DecodeVersion(parts[0])
	if !ok {
		return Note{}, false
	}
	originPage, ok := noun.DecodeU64(parts[1])
	if !ok {
		return Note{}, false
	}
	name, ok := DecodeName(parts[2])
	if !ok {
		return Note{}, false
	}
	noteData, ok := DecodeNoteData(parts[3])
	if !ok {
		return Note{}, false
	}
	assets, ok := noun.DecodeU64(parts[4])
	if !ok {
		return Note{}, false
	}
	return Note{Version: version, OriginPage: originPage, Name: name, NoteData: noteData, Assets: assets}, true
}

func (n Note) Hash() noun.Digest {
	return noun.HashTuple(n.Version, noun.U64Hashable(n.OriginPage), n.Name, n.NoteData, noun.U64Hashable(n.Assets))
}

// Balance is a set of unspent notes keyed by name.
type Balance struct {
	Notes []NameNote
}

type NameNote struct {
	Name Name
	Note Note
}

// BalanceUpdate reports the notes gained or spent at a given block.
type BalanceUpdate struct {
	Height  BlockHeight
	BlockID noun.Digest
	Notes   Balance
}
