package txengine

import (
	"sort"

	"github.com/nockwallet/rose/cheetah"
	"github.com/nockwallet/rose/noun"
)

// TxId identifies a transaction by its content hash.
type TxId = noun.Digest

// LockRoot is either a bare digest (the common case once a spend
// condition has been flattened to its root) or, transiently while
// building, the full SpendCondition it was derived from. Encoding and
// hashing always collapse to the digest form.
type LockRoot struct {
	Digest noun.Digest
	Lock   *SpendCondition
}

func LockRootFromDigest(d noun.Digest) LockRoot { return LockRoot{Digest: d} }

func LockRootFromLock(cond SpendCondition) LockRoot { return LockRoot{Digest: cond.Hash(), Lock: &cond} }

func (l LockRoot) hash() noun.Digest {
	if l.Lock != nil {
		return l.Lock.Hash()
	}
	return l.Digest
}

func (l LockRoot) Hash() noun.Digest { return l.hash() }

func (l LockRoot) ToNoun() *noun.Noun { return noun.EncodeDigest(l.hash()) }

func DecodeLockRoot(n *noun.Noun) (LockRoot, bool) {
	d, ok := noun.DecodeDigest(n)
	if !ok {
		return LockRoot{}, false
	}
	return LockRootFromDigest(d), true
}

// Seed describes one output of a spend: where its assets go, under
// what lock, with what gift and attached note data.
type Seed struct {
	OutputSource *Source
	LockRoot     LockRoot
	NoteData     NoteData
	Gift         Nicks
	ParentHash   noun.Digest
}

func (s Seed) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{
		noun.EncodeOption(s.OutputSource != nil, optSourceNoun(s.OutputSource)),
		s.LockRoot.ToNoun(),
		s.NoteData.ToNoun(),
		noun.EncodeU64(s.Gift),
		noun.EncodeDigest(s.ParentHash),
	})
}

func optSourceNoun(s *Source) *noun.Noun {
	if s == nil {
		return noun.EncodeU64(0)
	}
	return s.ToNoun()
}

func DecodeSeed(n *noun.Noun) (Seed, bool) {
	parts, ok := noun.DecodeFixed(n, 5)
	if !ok {
		return Seed{}, false
	}
	srcNoun, present, ok := noun.DecodeOption(parts[0])
	if !ok {
		return Seed{}, false
	}
	var src *Source
	if present {
		s, ok := DecodeSource(srcNoun)
		if !ok {
			return Seed{}, false
		}
		src = &s
	}
	lockRoot, ok := DecodeLockRoot(parts[1])
	if !ok {
		return Seed{}, false
	}
	noteData, ok := DecodeNoteData(parts[2])
	if !ok {
		return Seed{}, false
	}
	gift, ok := noun.DecodeU64(parts[3])
	if !ok {
		return Seed{}, false
	}
	parentHash, ok := noun.DecodeDigest(parts[4])
	if !ok {
		return Seed{}, false
	}
	return Seed{OutputSource: src, LockRoot: lockRoot, NoteData: noteData, Gift: gift, ParentHash: parentHash}, true
}

// Hash omits OutputSource: it is provenance metadata, not part of the
// seed's content identity. SigHash below hashes all five fields.
func (s Seed) Hash() noun.Digest {
	return noun.HashTuple(s.LockRoot, s.NoteData, noun.U64Hashable(s.Gift), noun.DigestKey(s.ParentHash))
}

// SigHashSeed wraps a Seed so its hash includes OutputSource, the form
// a signature is computed over.
type SigHashSeed struct{ Seed Seed }

func (w SigHashSeed) Hash() noun.Digest {
	return noun.HashTuple(
		noun.DigestKey(optSourceHash(w.Seed.OutputSource)),
		w.Seed.LockRoot,
		w.Seed.NoteData,
		noun.U64Hashable(w.Seed.Gift),
		noun.DigestKey(w.Seed.ParentHash),
	)
}

func optSourceHash(s *Source) noun.Digest {
	if s == nil {
		return noun.HashU64(0)
	}
	return noun.HashTuple(noun.BoolHashable(true), hashableFn(sourceHash(*s)))
}

type hashableFn noun.Digest

func (h hashableFn) Hash() noun.Digest { return noun.Digest(h) }

// NewSingleRecipientSeed builds a seed locked to a single pkh, with an
// optional copy of the lock data and/or a memo attached.
func NewSingleRecipientSeed(pkh Pkh, gift Nicks, parentHash noun.Digest, includeLockData bool, memo *noun.Noun) Seed {
	cond := NewSpendConditionPkh(pkh)
	data := EmptyNoteData()
	if includeLockData {
		data.PushLock(cond)
	}
	if memo != nil {
		data.PushMemo(memo)
	}
	return Seed{LockRoot: LockRootFromLock(cond), NoteData: data, Gift: gift, ParentHash: parentHash}
}

// nounWords counts the atoms (words) a noun spans; noteDataWords
// applies it to a seed's note data, the unit the builder's fee
// heuristic charges against.
func nounWords(n *noun.Noun) uint64 {
	if n.IsAtom() {
		return 1
	}
	return nounWords(n.Left) + nounWords(n.Right)
}

func (s Seed) noteDataWords() uint64 { return nounWords(s.NoteData.ToNoun()) }

// Seeds is an ordered list of a spend's outputs.
type Seeds struct{ Items []Seed }

func (s Seeds) set() *noun.ZSet[seedKey] {
	set := noun.NewZSet[seedKey]()
	for _, seed := range s.Items {
		set.Insert(seedKey{seed})
	}
	return set
}

type seedKey struct{ Seed Seed }

func (k seedKey) Hash() noun.Digest  { return k.Seed.Hash() }
func (k seedKey) ToNoun() *noun.Noun { return k.Seed.ToNoun() }

func (s Seeds) ToNoun() *noun.Noun { return s.set().ToNoun() }

func DecodeSeeds(n *noun.Noun) (Seeds, bool) {
	set, ok := noun.DecodeZSet[seedKey](n, func(sn *noun.Noun) (seedKey, bool) {
		seed, ok := DecodeSeed(sn)
		return seedKey{seed}, ok
	})
	if !ok {
		return Seeds{}, false
	}
	items := make([]Seed, 0)
	for _, k := range set.PreorderSlice() {
		items = append(items, k.Seed)
	}
	return Seeds{Items: items}, true
}

func (s Seeds) Hash() noun.Digest { return s.set().Hash() }

// SigHash hashes the seeds in their sig-hash form (OutputSource
// included), the digest a spend's signature actually covers.
func (s Seeds) SigHash() noun.Digest {
	set := noun.NewZSet[sigHashSeedKey]()
	for _, seed := range s.Items {
		set.Insert(sigHashSeedKey{seed})
	}
	return set.Hash()
}

type sigHashSeedKey struct{ Seed Seed }

func (k sigHashSeedKey) Hash() noun.Digest  { return SigHashSeed{k.Seed}.Hash() }
func (k sigHashSeedKey) ToNoun() *noun.Noun { return k.Seed.ToNoun() }

// Hax is a set of hash-preimage lock primitives: the spend unlocks if
// a preimage is supplied for every digest listed.
type Hax struct{ Digests []noun.Digest }

func (h Hax) set() *noun.ZSet[noun.DigestKey] {
	set := noun.NewZSet[noun.DigestKey]()
	for _, d := range h.Digests {
		set.Insert(noun.DigestKey(d))
	}
	return set
}

func (h Hax) ToNoun() *noun.Noun  { return h.set().ToNoun() }
func (h Hax) Hash() noun.Digest   { return h.set().Hash() }

func DecodeHax(n *noun.Noun) (Hax, bool) {
	set, ok := noun.DecodeZSet[noun.DigestKey](n, func(dn *noun.Noun) (noun.DigestKey, bool) {
		d, ok := noun.DecodeDigest(dn)
		return noun.DigestKey(d), ok
	})
	if !ok {
		return Hax{}, false
	}
	digests := make([]noun.Digest, 0)
	for _, k := range set.PreorderSlice() {
		digests = append(digests, noun.Digest(k))
	}
	return Hax{Digests: digests}, true
}

// LockTim is a pair of relative/absolute timelock windows.
type LockTim struct{ Rel, Abs TimelockRange }

func CoinbaseLockTim() LockTim {
	return LockTim{Rel: NewTimelockRange(100, 0, true, false), Abs: NoTimelock()}
}

func (t LockTim) ToNoun() *noun.Noun  { return noun.Cons(t.Rel.ToNoun(), t.Abs.ToNoun()) }
func (t LockTim) Hash() noun.Digest   { return noun.HashTuple(t.Rel, t.Abs) }

func DecodeLockTim(n *noun.Noun) (LockTim, bool) {
	if !n.IsCell() {
		return LockTim{}, false
	}
	rel, ok := DecodeTimelockRange(n.Left)
	if !ok {
		return LockTim{}, false
	}
	abs, ok := DecodeTimelockRange(n.Right)
	if !ok {
		return LockTim{}, false
	}
	return LockTim{Rel: rel, Abs: abs}, true
}

// LockPrimitive is one clause of a spend condition.
type LockPrimitive struct {
	Kind string // "pkh", "tim", "hax", or "brn"
	Pkh  Pkh
	Tim  LockTim
	Hax  Hax
}

func PkhPrimitive(pkh Pkh) LockPrimitive { return LockPrimitive{Kind: "pkh", Pkh: pkh} }
func TimPrimitive(tim LockTim) LockPrimitive { return LockPrimitive{Kind: "tim", Tim: tim} }
func HaxPrimitive(hax Hax) LockPrimitive { return LockPrimitive{Kind: "hax", Hax: hax} }
func BrnPrimitive() LockPrimitive { return LockPrimitive{Kind: "brn"} }

func (p LockPrimitive) inner() noun.Hashable {
	switch p.Kind {
	case "pkh":
		return p.Pkh
	case "tim":
		return p.Tim
	case "hax":
		return p.Hax
	default:
		return noun.U64Hashable(0)
	}
}

func (p LockPrimitive) innerNoun() *noun.Noun {
	switch p.Kind {
	case "pkh":
		return p.Pkh.ToNoun()
	case "tim":
		return p.Tim.ToNoun()
	case "hax":
		return p.Hax.ToNoun()
	default:
		return noun.EncodeU64(0)
	}
}

func (p LockPrimitive) Hash() noun.Digest {
	return noun.HashTuple(noun.StringHashable(p.Kind), p.inner())
}

func (p LockPrimitive) ToNoun() *noun.Noun {
	return noun.Cons(noun.EncodeString(p.Kind), p.innerNoun())
}

func DecodeLockPrimitive(n *noun.Noun) (LockPrimitive, bool) {
	if !n.IsCell() {
		return LockPrimitive{}, false
	}
	kind, ok := noun.DecodeString(n.Left)
	if !ok {
		return LockPrimitive{}, false
	}
	switch kind {
	case "pkh":
		pkh, ok := DecodePkh(n.Right)
		if !ok {
			return LockPrimitive{}, false
		}
		return PkhPrimitive(pkh), true
	case "tim":
		tim, ok := DecodeLockTim(n.Right)
		if !ok {
			return LockPrimitive{}, false
		}
		return TimPrimitive(tim), true
	case "hax":
		hax, ok := DecodeHax(n.Right)
		if !ok {
			return LockPrimitive{}, false
		}
		return HaxPrimitive(hax), true
	case "brn":
		return BrnPrimitive(), true
	default:
		return LockPrimitive{}, false
	}
}

// SpendCondition is an unordered list of lock primitives, ALL of which
// must be satisfied to spend.
type SpendCondition struct{ Primitives []LockPrimitive }

func NewSpendConditionPkh(pkh Pkh) SpendCondition {
	return SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(pkh)}}
}

func (c SpendCondition) ToNoun() *noun.Noun {
	return noun.EncodeListWith(c.Primitives, func(p LockPrimitive) *noun.Noun { return p.ToNoun() })
}

func DecodeSpendCondition(n *noun.Noun) (SpendCondition, bool) {
	items, ok := noun.DecodeListWith(n, DecodeLockPrimitive)
	if !ok {
		return SpendCondition{}, false
	}
	return SpendCondition{Primitives: items}, true
}

func (c SpendCondition) Hash() noun.Digest {
	hs := make([]LockPrimitive, len(c.Primitives))
	copy(hs, c.Primitives)
	return noun.HashSlice(hs)
}

// FirstName derives the leading name component an unassigned spend
// condition's output would start from.
func (c SpendCondition) FirstName() noun.Digest {
	return noun.HashTuple(noun.BoolHashable(true), noun.DigestKey(c.Hash()))
}

func (c SpendCondition) filter(kind string) []LockPrimitive {
	out := make([]LockPrimitive, 0)
	for _, p := range c.Primitives {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func (c SpendCondition) PkhPrimitives() []Pkh {
	out := make([]Pkh, 0)
	for _, p := range c.filter("pkh") {
		out = append(out, p.Pkh)
	}
	return out
}

func (c SpendCondition) TimPrimitives() []LockTim {
	out := make([]LockTim, 0)
	for _, p := range c.filter("tim") {
		out = append(out, p.Tim)
	}
	return out
}

func (c SpendCondition) HaxPrimitives() []Hax {
	out := make([]Hax, 0)
	for _, p := range c.filter("hax") {
		out = append(out, p.Hax)
	}
	return out
}

func (c SpendCondition) HasBrn() bool {
	for _, p := range c.Primitives {
		if p.Kind == "brn" {
			return true
		}
	}
	return false
}

// MerkleProof is a path from a leaf digest to a root, used to prove a
// spend condition's membership in the lock it claims to satisfy.
type MerkleProof struct {
	Root noun.Digest
	Path []noun.Digest
}

func (m MerkleProof) ToNoun() *noun.Noun {
	return noun.Cons(
		noun.EncodeDigest(m.Root),
		noun.EncodeListWith(m.Path, noun.EncodeDigest),
	)
}

func DecodeMerkleProof(n *noun.Noun) (MerkleProof, bool) {
	if !n.IsCell() {
		return MerkleProof{}, false
	}
	root, ok := noun.DecodeDigest(n.Left)
	if !ok {
		return MerkleProof{}, false
	}
	path, ok := noun.DecodeListWith(n.Right, noun.DecodeDigest)
	if !ok {
		return MerkleProof{}, false
	}
	return MerkleProof{Root: root, Path: path}, true
}

func (m MerkleProof) Hash() noun.Digest {
	pathHashes := make([]noun.DigestKey, len(m.Path))
	for i, d := range m.Path {
		pathHashes[i] = noun.DigestKey(d)
	}
	return noun.HashTuple(noun.DigestKey(m.Root), noun.DigestKey(noun.HashSlice(pathHashes)))
}

// axisMoldHash is a fixed domain-separation constant mixed into every
// LockMerkleProof hash, inherited unchanged from the reference wallet.
var axisMoldHash = mustParseDigest("6mhCSwJQDvbkbiPAUNjetJtVoo1VLtEhmEYoU4hmdGd6ep1F6ayaV4A")

func mustParseDigest(s string) noun.Digest {
	d, err := noun.ParseDigest(s)
	if err != nil {
		panic("txengine: invalid axis mold hash constant: " + err.Error())
	}
	return d
}

// LockMerkleProof proves a spend condition sits at a given axis of the
// lock it's being checked against.
type LockMerkleProof struct {
	SpendCondition SpendCondition
	Axis           uint64
	Proof          MerkleProof
}

func NewLockMerkleProof(cond SpendCondition) LockMerkleProof {
	return LockMerkleProof{
		SpendCondition: cond,
		Axis:           1,
		Proof:          MerkleProof{Root: cond.Hash()},
	}
}

func (l LockMerkleProof) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{
		l.SpendCondition.ToNoun(),
		noun.EncodeU64(l.Axis),
		l.Proof.ToNoun(),
	})
}

func DecodeLockMerkleProof(n *noun.Noun) (LockMerkleProof, bool) {
	parts, ok := noun.DecodeFixed(n, 3)
	if !ok {
		return LockMerkleProof{}, false
	}
	cond, ok := DecodeSpendCondition(parts[0])
	if !ok {
		return LockMerkleProof{}, false
	}
	axis, ok := noun.DecodeU64(parts[1])
	if !ok {
		return LockMerkleProof{}, false
	}
	proof, ok := DecodeMerkleProof(parts[2])
	if !ok {
		return LockMerkleProof{}, false
	}
	return LockMerkleProof{SpendCondition: cond, Axis: axis, Proof: proof}, true
}

func (l LockMerkleProof) Hash() noun.Digest {
	return noun.HashTuple(noun.DigestKey(l.SpendCondition.Hash()), noun.DigestKey(axisMoldHash), l.Proof)
}

// PkhSignature accumulates (pubkey-hash, pubkey, signature) triples as
// a spend gathers the signatures it needs.
type PkhSignature struct {
	Entries []PkhSigEntry
}

type PkhSigEntry struct {
	KeyHash   noun.Digest
	PublicKey cheetah.PublicKey
	Signature cheetah.Signature
}

func (e PkhSigEntry) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{noun.EncodeDigest(e.KeyHash), e.PublicKey.ToNoun(), e.Signature.ToNoun()})
}

func (e PkhSigEntry) Hash() noun.Digest { return noun.DigestKey(e.KeyHash).Hash() }

func (s PkhSignature) set() *noun.ZMap[noun.DigestKey, pkhSigValue] {
	m := noun.NewZMap[noun.DigestKey, pkhSigValue]()
	for _, e := range s.Entries {
		m.Insert(noun.DigestKey(e.KeyHash), pkhSigValue(e))
	}
	return m
}

type pkhSigValue PkhSigEntry

func (v pkhSigValue) ToNoun() *noun.Noun { return noun.Cons(v.PublicKey.ToNoun(), v.Signature.ToNoun()) }
func (v pkhSigValue) Hash() noun.Digest  { return PkhSigEntry(v).Hash() }

func (s PkhSignature) ToNoun() *noun.Noun { return s.set().ToNoun() }
func (s PkhSignature) Hash() noun.Digest  { return s.set().Hash() }

// AddSignature records a signature against key's hash.
func (s *PkhSignature) AddSignature(key cheetah.PublicKey, keyHash noun.Digest, sig cheetah.Signature) {
	for _, e := range s.Entries {
		if e.KeyHash == keyHash {
			return
		}
	}
	s.Entries = append(s.Entries, PkhSigEntry{KeyHash: keyHash, PublicKey: key, Signature: sig})
}

// Witness carries everything a spend needs beyond its bare intent: the
// merkle proof its lock is well-formed, gathered signatures, and
// gathered hash preimages.
type Witness struct {
	LockMerkleProof LockMerkleProof
	PkhSignature    PkhSignature
	HaxMap          map[noun.Digest]*noun.Noun
}

func NewWitness(cond SpendCondition) Witness {
	return Witness{
		LockMerkleProof: NewLockMerkleProof(cond),
		HaxMap:          make(map[noun.Digest]*noun.Noun),
	}
}

func (w Witness) haxZMap() *noun.ZMap[noun.DigestKey, nounValue] {
	m := noun.NewZMap[noun.DigestKey, nounValue]()
	for k, v := range w.HaxMap {
		m.Insert(noun.DigestKey(k), nounValue{v})
	}
	return m
}

type nounValue struct{ N *noun.Noun }

func (v nounValue) ToNoun() *noun.Noun { return v.N }
func (v nounValue) Hash() noun.Digest  { return v.N.Hash() }

func (w Witness) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{
		w.LockMerkleProof.ToNoun(),
		w.PkhSignature.ToNoun(),
		w.haxZMap().ToNoun(),
		noun.EncodeU64(0),
	})
}

func (w Witness) Hash() noun.Digest {
	return noun.HashTuple(w.LockMerkleProof, w.PkhSignature, w.haxZMap(), noun.U64Hashable(0))
}

// TakeData empties the signature and preimage maps, returning their
// former contents, and leaves the merkle proof untouched.
func (w *Witness) TakeData() (PkhSignature, map[noun.Digest]*noun.Noun) {
	sig := w.PkhSignature
	hax := w.HaxMap
	w.PkhSignature = PkhSignature{}
	w.HaxMap = make(map[noun.Digest]*noun.Noun)
	return sig, hax
}

// Spend is one input consumed by a transaction together with its
// proposed outputs (seeds) and the fee it pays.
type Spend struct {
	Witness Witness
	Seeds   Seeds
	Fee     Nicks
}

// MinFee is the floor a transaction's summed fee is clamped to.
const MinFee Nicks = 256

func (s Spend) ToNoun() *noun.Noun {
	return noun.EncodeFixed([]*noun.Noun{VersionV1.ToNoun(), s.Witness.ToNoun(), s.Seeds.ToNoun(), noun.EncodeU64(s.Fee)})
}

func DecodeSpend(n *noun.Noun) (Spend, bool) {
	parts, ok := noun.DecodeFixed(n, 4)
	if !ok {
		return Spend{}, false
	}
	if _, ok := DecodeVersion(parts[0]); !ok {
		return Spend{}, false
	}
	w, ok := decodeWitness(parts[1])
	if !ok {
		return Spend{}, false
	}
	seeds, ok := DecodeSeeds(parts[2])
	if !ok {
		return Spend{}, false
	}
	fee, ok := noun.DecodeU64(parts[3])
	if !ok {
		return Spend{}, false
	}
	return Spend{Witness: w, Seeds: seeds, Fee: fee}, true
}

func decodeWitness(n *noun.Noun) (Witness, bool) {
	parts, ok := noun.DecodeFixed(n, 4)
	if !ok {
		return Witness{}, false
	}
	proof, ok := DecodeLockMerkleProof(parts[0])
	if !ok {
		return Witness{}, false
	}
	return Witness{LockMerkleProof: proof, HaxMap: make(map[noun.Digest]*noun.Noun)}, true
}

func (s Spend) Hash() noun.Digest {
	return noun.HashTuple(VersionV1, s.Witness, s.Seeds, noun.U64Hashable(s.Fee))
}

func (s Spend) calcWords() uint64 {
	total := uint64(0)
	for _, seed := range s.Seeds.Items {
		total += seed.noteDataWords()
	}
	total += nounWords(s.Witness.ToNoun())
	return total
}

// UnclampedFee is the raw word-rate fee this spend would owe, before
// the MinFee floor is applied.
func (s Spend) UnclampedFee(feePerWord Nicks) Nicks { return s.calcWords() * feePerWord }

// FeeForMany sums the unclamped fee of every spend, then applies the
// MinFee floor once to the total.
func FeeForMany(spends []Spend, feePerWord Nicks) Nicks {
	total := Nicks(0)
	for _, s := range spends {
		total += s.UnclampedFee(feePerWord)
	}
	if total < MinFee {
		return MinFee
	}
	return total
}

// SigHash is the digest a spend's signatures are computed over.
func (s Spend) SigHash() noun.Digest {
	return noun.HashTuple(noun.DigestKey(s.Seeds.SigHash()), noun.U64Hashable(s.Fee))
}

func (s *Spend) AddSignature(key cheetah.PublicKey, sig cheetah.Signature) {
	s.Witness.PkhSignature.AddSignature(key, key.Hash(), sig)
}

func (s *Spend) AddPreimage(preimage *noun.Noun) {
	s.Witness.HaxMap[preimage.Hash()] = preimage
}

// Spends is the ordered (Name, Spend) list a transaction consumes.
type Spends struct{ Items []NamedSpend }

type NamedSpend struct {
	Name  Name
	Spend Spend
}

func (s Spends) set() *noun.ZMap[noun.DigestKey, namedSpendValue] {
	m := noun.NewZMap[noun.DigestKey, namedSpendValue]()
	for _, ns := range s.Items {
		m.Insert(noun.DigestKey(nameKeyDigest(ns.Name)), namedSpendValue(ns))
	}
	return m
}

// nameKeyDigest folds a Name into a single digest to key the ZMap on,
// since ZMap keys must be Keyable and Name's natural hash already
// collapses First/Last/tag into one digest.
func nameKeyDigest(n Name) noun.Digest { return n.Hash() }

type namedSpendValue NamedSpend

func (v namedSpendValue) ToNoun() *noun.Noun {
	return noun.Cons(v.Name.ToNoun(), v.Spend.ToNoun())
}
func (v namedSpendValue) Hash() noun.Digest {
	return noun.HashTuple(v.Name, v.Spend)
}

func (s Spends) ToNoun() *noun.Noun { return s.set().ToNoun() }
func (s Spends) Hash() noun.Digest  { return s.set().Hash() }

func (s Spends) Fee(feePerWord Nicks) Nicks {
	spends := make([]Spend, len(s.Items))
	for i, ns := range s.Items {
		spends[i] = ns.Spend
	}
	return FeeForMany(spends, feePerWord)
}

// WitnessData maps a spend's name to the signature/preimage data that
// was stripped out of it by SplitWitness.
type WitnessData struct {
	Entries map[Name]witnessDataEntry
}

type witnessDataEntry struct {
	Sig PkhSignature
	Hax map[noun.Digest]*noun.Noun
}

// SplitWitness clones the spends, strips signature and preimage data
// out of each witness, and returns the stripped spends alongside the
// removed data keyed by name.
func (s Spends) SplitWitness() (Spends, WitnessData) {
	stripped := Spends{Items: make([]NamedSpend, len(s.Items))}
	data := WitnessData{Entries: make(map[Name]witnessDataEntry)}
	for i, ns := range s.Items {
		spend := ns.Spend
		sig, hax := spend.Witness.TakeData()
		stripped.Items[i] = NamedSpend{Name: ns.Name, Spend: spend}
		data.Entries[ns.Name] = witnessDataEntry{Sig: sig, Hax: hax}
	}
	return stripped, data
}

// ApplyWitness re-merges previously split-off signature/preimage data
// back into a stripped Spends by name.
func (s Spends) ApplyWitness(data WitnessData) Spends {
	out := Spends{Items: make([]NamedSpend, len(s.Items))}
	for i, ns := range s.Items {
		spend := ns.Spend
		if d, ok := data.Entries[ns.Name]; ok {
			spend.Witness.PkhSignature = d.Sig
			spend.Witness.HaxMap = d.Hax
		}
		out.Items[i] = NamedSpend{Name: ns.Name, Spend: spend}
	}
	return out
}

func calcTxId(spends Spends) noun.Digest {
	return noun.HashTuple(VersionV1, spends)
}

// RawTx is a fully-witnessed transaction ready to broadcast.
type RawTx struct {
	Version Version
	Id      TxId
	Spends  Spends
}

func NewRawTx(spends Spends) RawTx {
	return RawTx{Version: VersionV1, Id: calcTxId(spends), Spends: spends}
}

// Outputs computes the notes this transaction produces: every seed
// across every spend is grouped by its lock root, summed into a
// single output note per lock root that inherits the group's last
// seed's note data (by ZSet tap order) and a provenance hash over a
// normalized (output-source-stripped) copy of the same seed group.
func (tx RawTx) Outputs() []Note {
	type group struct {
		lockHash noun.Digest
		lockRoot LockRoot
		set      *noun.ZSet[seedKey]
		total    Nicks
		last     Seed
	}
	groups := make(map[noun.Digest]*group)
	order := make([]noun.Digest, 0)

	for _, ns := range tx.Spends.Items {
		for _, seed := range ns.Spend.Seeds.Items {
			lh := seed.LockRoot.Hash()
			g, ok := groups[lh]
			if !ok {
				g = &group{lockHash: lh, lockRoot: seed.LockRoot, set: noun.NewZSet[seedKey]()}
				groups[lh] = g
				order = append(order, lh)
			}
			g.set.Insert(seedKey{seed})
			g.total += seed.Gift
		}
	}

	sort.Slice(order, func(i, j int) bool { return compareDigest(order[i], order[j]) < 0 })

	outputs := make([]Note, 0, len(order))
	for _, lh := range order {
		g := groups[lh]
		items := g.set.PreorderSlice()
		if len(items) == 0 {
			continue
		}
		last := items[len(items)-1].Seed

		normalized := noun.NewZSet[seedKey]()
		for _, it := range items {
			s := it.Seed
			s.OutputSource = nil
			normalized.Insert(seedKey{s})
		}
		srcHash := normalized.Hash()
		src := Source{Hash: srcHash, IsCoinbase: false}
		name := NewNameV1(g.lockHash, src)
		outputs = append(outputs, NewNote(VersionV1, 0, name, last.NoteData, g.total))
	}
	return outputs
}

// ToNockchainTx splits off signature/preimage data and wraps the
// result into a display-ready, witness-data-separated transaction.
func (tx RawTx) ToNockchainTx() NockchainTx {
	spends, witnessData := tx.Spends.SplitWitness()
	inputs := make(map[Name]SpendCondition)
	outputs := make(map[noun.Digest]LockMetadata)
	for _, ns := range tx.Spends.Items {
		inputs[ns.Name] = ns.Spend.Witness.LockMerkleProof.SpendCondition
		for _, seed := range ns.Spend.Seeds.Items {
			if seed.LockRoot.Lock != nil {
				outputs[seed.LockRoot.Digest] = LockMetadata{Lock: *seed.LockRoot.Lock, IncludeData: false}
			}
		}
	}
	return NockchainTx{
		Version:     VersionV1,
		Id:          tx.Id,
		Spends:      spends,
		Display:     TransactionDisplay{Inputs: inputs, Outputs: outputs},
		WitnessData: witnessData,
	}
}

// LockMetadata pairs a spend condition with whether its lock data
// should be redisplayed inline.
type LockMetadata struct {
	Lock        SpendCondition
	IncludeData bool
}

// TransactionDisplay is the human-facing view of a transaction: which
// named inputs it consumes under which conditions, and which lock
// roots its outputs are destined for.
type TransactionDisplay struct {
	Inputs  map[Name]SpendCondition
	Outputs map[noun.Digest]LockMetadata
}

// NockchainTx is a transaction with its witness data separated out
// for independent transmission/storage, plus a display summary.
type NockchainTx struct {
	Version     Version
	Id          TxId
	Spends      Spends
	Display     TransactionDisplay
	WitnessData WitnessData
}

// ToRawTx re-merges witness data back into the spends.
func (tx NockchainTx) ToRawTx() RawTx {
	return RawTx{Version: tx.Version, Id: tx.Id, Spends: tx.Spends.ApplyWitness(tx.WitnessData)}
}

// Outputs delegates to the reconstituted RawTx.
func (tx NockchainTx) Outputs() []Note { return tx.ToRawTx().Outputs() }
