package txengine

import (
	"fmt"
	"sort"

	"github.com/nockwallet/rose/cheetah"
	"github.com/nockwallet/rose/noun"
)

// BuildError is returned by TxBuilder operations that can fail; each
// variant carries the context needed to explain the failure to a
// caller assembling a transaction.
type BuildError struct {
	Kind           string
	Name           Name
	Needed, Got    Nicks
	MissingUnlocks []MissingUnlocks
}

func (e *BuildError) Error() string {
	switch e.Kind {
	case "zero_gift":
		return "cannot build a spend with a zero gift"
	case "insufficient_funds":
		return "insufficient funds to cover the requested gift"
	case "accounting_mismatch":
		return "fee reduction could not be fully accounted for across spends"
	case "note_not_found":
		return fmt.Sprintf("no note/spend condition supplied for name %s", noun.DigestString(e.Name.First))
	case "invalid_fee":
		return fmt.Sprintf("fee too low: need at least %d, got %d", e.Needed, e.Got)
	case "invalid_version":
		return "transaction version is not supported"
	case "invalid_spend_condition":
		return "spend condition does not match the witness's merkle proof root"
	case "unbalanced_spends":
		return "one or more spends do not balance assets against gifts and fee"
	case "missing_unlocks":
		return fmt.Sprintf("transaction is missing %d unlock(s)", len(e.MissingUnlocks))
	default:
		return "build error"
	}
}

func errZeroGift() error                { return &BuildError{Kind: "zero_gift"} }
func errInsufficientFunds() error       { return &BuildError{Kind: "insufficient_funds"} }
func errAccountingMismatch() error      { return &BuildError{Kind: "accounting_mismatch"} }
func errNoteNotFound(n Name) error      { return &BuildError{Kind: "note_not_found", Name: n} }
func errInvalidFee(need, got Nicks) error {
	return &BuildError{Kind: "invalid_fee", Needed: need, Got: got}
}
func errInvalidSpendCondition() error { return &BuildError{Kind: "invalid_spend_condition"} }
func errUnbalancedSpends() error      { return &BuildError{Kind: "unbalanced_spends"} }
func errMissingUnlocks(m []MissingUnlocks) error {
	return &BuildError{Kind: "missing_unlocks", MissingUnlocks: m}
}

// MissingUnlocks reports one outstanding unlock requirement a spend
// has not yet satisfied.
type MissingUnlocks struct {
	Kind          string // "pkh", "hax", or "brn"
	NumSigs       uint64
	SigOf         []noun.Digest
	PreimagesFor  []noun.Digest
}

// SpendBuilder accumulates a single spend's seeds, signatures, and
// refund bookkeeping before being folded into a TxBuilder.
type SpendBuilder struct {
	Note           Note
	Spend          Spend
	SpendCondition SpendCondition
	RefundLock     *SpendCondition
}

// NewSpendBuilder starts an empty spend against note, authorized by
// spendCondition, with an optional refund destination.
func NewSpendBuilder(note Note, spendCondition SpendCondition, refundLock *SpendCondition) *SpendBuilder {
	return &SpendBuilder{
		Note:           note,
		Spend:          Spend{Witness: NewWitness(spendCondition)},
		SpendCondition: spendCondition,
		RefundLock:     refundLock,
	}
}

// SpendBuilderFromSpend resumes an in-flight spend, validating that
// its witness's merkle proof still matches spendCondition.
func SpendBuilderFromSpend(spend Spend, note Note, spendCondition SpendCondition, refundLock *SpendCondition) (*SpendBuilder, error) {
	if spend.Witness.LockMerkleProof.Proof.Root != spendCondition.Hash() {
		return nil, errInvalidSpendCondition()
	}
	return &SpendBuilder{Note: note, Spend: spend, SpendCondition: spendCondition, RefundLock: refundLock}, nil
}

// Fee sets the spend's fee, invalidating any gathered signatures if
// the value actually changes (a changed fee changes the sig hash).
func (b *SpendBuilder) Fee(fee Nicks) {
	if b.Spend.Fee != fee {
		b.invalidateSigs()
	}
	b.Spend.Fee = fee
}

func (b *SpendBuilder) invalidateSigs() {
	b.Spend.Witness.PkhSignature = PkhSignature{}
}

// CurRefund returns the seed currently paying to the refund lock, if
// any.
func (b *SpendBuilder) CurRefund() (Seed, int, bool) {
	if b.RefundLock == nil {
		return Seed{}, -1, false
	}
	target := b.RefundLock.Hash()
	for i, s := range b.Spend.Seeds.Items {
		if s.LockRoot.Hash() == target {
			return s, i, true
		}
	}
	return Seed{}, -1, false
}

func (b *SpendBuilder) buildSeed(lock SpendCondition, gift Nicks, includeLockData bool) Seed {
	data := EmptyNoteData()
	if includeLockData {
		data.PushLock(lock)
	}
	return Seed{
		OutputSource: nil,
		LockRoot:     LockRootFromLock(lock),
		NoteData:     data,
		Gift:         gift,
		ParentHash:   b.Note.Hash(),
	}
}

// Seed invalidates signatures, then appends seed to the spend.
func (b *SpendBuilder) Seed(seed Seed) {
	b.invalidateSigs()
	b.Spend.Seeds.Items = append(b.Spend.Seeds.Items, seed)
}

// IsBalanced reports whether the note's assets exactly cover every
// seed's gift plus the spend's fee.
func (b *SpendBuilder) IsBalanced() bool {
	total := b.Spend.Fee
	for _, s := range b.Spend.Seeds.Items {
		total += s.Gift
	}
	return b.Note.Assets == total
}

// ComputeRefund recomputes (or removes) the refund seed so that the
// note's assets exactly balance its outgoing gifts and fee. Any memo
// attached to the prior refund seed is preserved onto the new one.
func (b *SpendBuilder) ComputeRefund(includeLockData bool) {
	if b.RefundLock == nil {
		return
	}

	var preservedMemo *noun.Noun
	otherGifts := Nicks(0)
	newItems := make([]Seed, 0, len(b.Spend.Seeds.Items))
	refundHash := b.RefundLock.Hash()
	for _, s := range b.Spend.Seeds.Items {
		if s.LockRoot.Hash() == refundHash {
			for _, e := range s.NoteData.Entries {
				if e.Key == MemoKey {
					preservedMemo = e.Val
				}
			}
			continue
		}
		otherGifts += s.Gift
		newItems = append(newItems, s)
	}
	b.Spend.Seeds.Items = newItems

	if b.Note.Assets < b.Spend.Fee+otherGifts {
		return
	}
	refund := b.Note.Assets - b.Spend.Fee - otherGifts
	if refund == 0 {
		return
	}

	seed := b.buildSeed(*b.RefundLock, refund, includeLockData)
	if preservedMemo != nil {
		seed.NoteData.PushMemo(preservedMemo)
	}
	b.Spend.Seeds.Items = append([]Seed{seed}, b.Spend.Seeds.Items...)
}

func (b *SpendBuilder) calcWords() uint64 { return b.Spend.calcWords() }

// MissingUnlocksList reports which of the spend condition's
// primitives still lack the signatures/preimages they require.
func (b *SpendBuilder) MissingUnlocksList() []MissingUnlocks {
	var out []MissingUnlocks

	for _, pkh := range b.SpendCondition.PkhPrimitives() {
		checked := uint64(0)
		var uncheckedValid []noun.Digest
		for _, h := range pkh.Hashes {
			found := false
			for _, e := range b.Spend.Witness.PkhSignature.Entries {
				if e.KeyHash == h {
					found = true
					break
				}
			}
			if found {
				checked++
				if checked >= pkh.M {
					break
				}
			} else {
				uncheckedValid = append(uncheckedValid, h)
			}
		}
		if checked < pkh.M {
			out = append(out, MissingUnlocks{Kind: "pkh", NumSigs: pkh.M - checked, SigOf: uncheckedValid})
		}
	}

	for _, hax := range b.SpendCondition.HaxPrimitives() {
		var missing []noun.Digest
		for _, d := range hax.Digests {
			if _, ok := b.Spend.Witness.HaxMap[d]; !ok {
				missing = append(missing, d)
			}
		}
		if len(missing) > 0 {
			out = append(out, MissingUnlocks{Kind: "hax", PreimagesFor: missing})
		}
	}

	if b.SpendCondition.HasBrn() {
		out = append(out, MissingUnlocks{Kind: "brn"})
	}

	return out
}

// AddPreimage attaches preimage if it unlocks one of the spend
// condition's Hax primitives, returning the digest it satisfies.
func (b *SpendBuilder) AddPreimage(preimage *noun.Noun) (noun.Digest, bool) {
	h := preimage.Hash()
	for _, hax := range b.SpendCondition.HaxPrimitives() {
		for _, d := range hax.Digests {
			if d == h {
				b.Spend.Witness.HaxMap[h] = preimage
				return h, true
			}
		}
	}
	return noun.Digest{}, false
}

// Sign signs the spend with signingKey if its public key hash matches
// the first Pkh primitive that includes it, returning whether a
// signature was added.
func (b *SpendBuilder) Sign(signingKey *cheetah.PrivateKey) bool {
	pub := signingKey.PublicKey()
	keyHash := pub.Hash()
	for _, pkh := range b.SpendCondition.PkhPrimitives() {
		for _, h := range pkh.Hashes {
			if h == keyHash {
				sig, err := signingKey.Sign(b.Spend.SigHash())
				if err != nil {
					return false
				}
				b.Spend.AddSignature(pub, sig)
				return true
			}
		}
	}
	return false
}

// unclampedFeeWeight is the per-missing-signature word estimate the
// source charges before the real signature bytes exist. It is a
// heuristic, not derived from the witness encoding.
const unclampedFeeWeight = 35

// UnclampedFee estimates the fee this spend would owe at feePerWord,
// including a heuristic surcharge for signatures not yet attached.
func (b *SpendBuilder) UnclampedFee(feePerWord Nicks) Nicks {
	fee := b.Spend.UnclampedFee(feePerWord)
	for _, m := range b.MissingUnlocksList() {
		if m.Kind == "pkh" {
			fee += unclampedFeeWeight * m.NumSigs * feePerWord
		}
	}
	return fee
}

// TxBuilder assembles and fee-balances a set of spends into a
// transaction.
type TxBuilder struct {
	Spends     map[Name]*SpendBuilder
	FeePool    []*SpendBuilder
	FeePerWord Nicks
}

// NewTxBuilder starts an empty builder charging feePerWord per
// estimated transaction word.
func NewTxBuilder(feePerWord Nicks) *TxBuilder {
	return &TxBuilder{Spends: make(map[Name]*SpendBuilder), FeePerWord: feePerWord}
}

// TxBuilderFromTx resumes an existing (unsigned or partially signed)
// transaction, resolving each of its spends against the caller's
// note/spend-condition map.
func TxBuilderFromTx(tx NockchainTx, notes map[Name]NoteAndCondition) (*TxBuilder, error) {
	if tx.Version != VersionV1 {
		return nil, &BuildError{Kind: "invalid_version"}
	}
	b := NewTxBuilder(1 << 15)
	for _, ns := range tx.Spends.Items {
		nc, ok := notes[ns.Name]
		if !ok {
			return nil, errNoteNotFound(ns.Name)
		}
		sb, err := SpendBuilderFromSpend(ns.Spend, nc.Note, nc.SpendCondition, nc.RefundLock)
		if err != nil {
			return nil, err
		}
		b.Spends[ns.Name] = sb
	}
	return b, nil
}

// NoteAndCondition pairs a note with the spend condition that
// authorizes spending it, plus its optional refund lock.
type NoteAndCondition struct {
	Note           Note
	SpendCondition SpendCondition
	RefundLock     *SpendCondition
}

// orderedNames returns the builder's spend names in the same total
// order Name.Less defines, mirroring the source's BTreeMap<Name, _>
// iteration order.
func (b *TxBuilder) orderedNames() []Name {
	names := make([]Name, 0, len(b.Spends))
	for n := range b.Spends {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
	return names
}

// Spend inserts sb keyed by its note's name, returning any entry it
// displaced.
func (b *TxBuilder) Spend(sb *SpendBuilder) (*SpendBuilder, bool) {
	old, existed := b.Spends[sb.Note.Name]
	b.Spends[sb.Note.Name] = sb
	return old, existed
}

// SimpleSpendBase assembles a spend paying gift to a single pkh
// recipient, drawing from notes in order until the gift is covered,
// with any uncontributing notes routed into the fee pool.
func (b *TxBuilder) SimpleSpendBase(notes []NoteAndCondition, recipient noun.Digest, gift Nicks, refundPkh noun.Digest, includeLockData bool, memo *noun.Noun) error {
	if gift == 0 {
		return errZeroGift()
	}
	refundLock := NewSpendConditionPkh(SinglePkh(refundPkh))

	remaining := gift
	for _, nc := range notes {
		portion := remaining
		if nc.Note.Assets < portion {
			portion = nc.Note.Assets
		}

		sb := NewSpendBuilder(nc.Note, nc.SpendCondition, &refundLock)
		if portion > 0 {
			seed := NewSingleRecipientSeed(SinglePkh(recipient), portion, nc.Note.Hash(), includeLockData, nil)
			sb.Seed(seed)
			remaining -= portion
		}
		sb.ComputeRefund(includeLockData)
		if !sb.IsBalanced() {
			return errUnbalancedSpends()
		}

		if portion > 0 {
			b.Spends[sb.Note.Name] = sb
		} else {
			b.FeePool = append(b.FeePool, sb)
		}
	}

	if remaining > 0 {
		return errInsufficientFunds()
	}

	if memo != nil {
		b.applyMemoToLastSeedOfBestLock(memo)
	}
	return nil
}

// applyMemoToLastSeedOfBestLock finds the lock root receiving the
// largest total gift across all current spends, then attaches memo to
// whichever of that lock's seeds would end up last by ZSet tap order
// once the memo is applied — matching the wallet's convention of
// displaying the memo on the output note's final note-data entry.
func (b *TxBuilder) applyMemoToLastSeedOfBestLock(memo *noun.Noun) {
	totals := make(map[noun.Digest]Nicks)
	var order []noun.Digest
	for _, name := range b.orderedNames() {
		sb := b.Spends[name]
		for _, s := range sb.Spend.Seeds.Items {
			h := s.LockRoot.Hash()
			if _, ok := totals[h]; !ok {
				order = append(order, h)
			}
			totals[h] += s.Gift
		}
	}
	if len(order) == 0 {
		return
	}

	best := order[0]
	for _, h := range order[1:] {
		if totals[h] > totals[best] {
			best = h
		}
	}

	type loc struct {
		name Name
		idx  int
	}
	var candidates []loc
	for _, name := range b.orderedNames() {
		sb := b.Spends[name]
		for i, s := range sb.Spend.Seeds.Items {
			if s.LockRoot.Hash() == best {
				candidates = append(candidates, loc{name, i})
			}
		}
	}

	for _, c := range candidates {
		set := noun.NewZSet[seedKey]()
		var withMemo Seed
		for _, cc := range candidates {
			sb := b.Spends[cc.name]
			s := sb.Spend.Seeds.Items[cc.idx]
			if cc == c {
				s.NoteData.PushMemo(memo)
				withMemo = s
			}
			set.Insert(seedKey{s})
		}
		items := set.PreorderSlice()
		if len(items) > 0 && items[len(items)-1].Seed.Hash() == withMemo.Hash() {
			sb := b.Spends[c.name]
			sb.Spend.Seeds.Items[c.idx].NoteData.PushMemo(memo)
			return
		}
	}
}

// SimpleSpend is SimpleSpendBase followed by an immediate
// recalculation of the fee and refunds.
func (b *TxBuilder) SimpleSpend(notes []NoteAndCondition, recipient noun.Digest, gift Nicks, refundPkh noun.Digest, includeLockData bool, memo *noun.Noun) error {
	if err := b.SimpleSpendBase(notes, recipient, gift, refundPkh, includeLockData, memo); err != nil {
		return err
	}
	return b.RecalcAndSetFee(includeLockData)
}

// AddPreimage broadcasts preimage to every spend, returning the last
// digest it was found to satisfy, if any.
func (b *TxBuilder) AddPreimage(preimage *noun.Noun) (noun.Digest, bool) {
	var last noun.Digest
	found := false
	for _, name := range b.orderedNames() {
		if d, ok := b.Spends[name].AddPreimage(preimage); ok {
			last = d
			found = true
		}
	}
	return last, found
}

// Sign broadcasts signingKey to every spend.
func (b *TxBuilder) Sign(signingKey *cheetah.PrivateKey) *TxBuilder {
	for _, name := range b.orderedNames() {
		b.Spends[name].Sign(signingKey)
	}
	return b
}

// Validate checks that the builder's current fee covers the computed
// fee, every spend balances, and every spend's unlocks are satisfied.
func (b *TxBuilder) Validate() error {
	cur := b.CurFee()
	need := b.CalcFee()
	if cur < need {
		return errInvalidFee(need, cur)
	}
	for _, name := range b.orderedNames() {
		if !b.Spends[name].IsBalanced() {
			return errUnbalancedSpends()
		}
	}
	var missing []MissingUnlocks
	for _, name := range b.orderedNames() {
		missing = append(missing, b.Spends[name].MissingUnlocksList()...)
	}
	if len(missing) > 0 {
		return errMissingUnlocks(missing)
	}
	return nil
}

// Build assembles the final transaction display and witness-separated
// form from the builder's current spends.
func (b *TxBuilder) Build() NockchainTx {
	inputs := make(map[Name]SpendCondition)
	outputs := make(map[noun.Digest]LockMetadata)
	var namedSpends []NamedSpend
	for _, name := range b.orderedNames() {
		sb := b.Spends[name]
		inputs[name] = sb.SpendCondition
		for _, s := range sb.Spend.Seeds.Items {
			if s.LockRoot.Lock != nil {
				outputs[s.LockRoot.Digest] = LockMetadata{Lock: *s.LockRoot.Lock, IncludeData: false}
			}
		}
		namedSpends = append(namedSpends, NamedSpend{Name: name, Spend: sb.Spend})
	}
	spends := Spends{Items: namedSpends}
	id := calcTxId(spends)
	stripped, witnessData := spends.SplitWitness()
	return NockchainTx{
		Version:     VersionV1,
		Id:          id,
		Spends:      stripped,
		Display:     TransactionDisplay{Inputs: inputs, Outputs: outputs},
		WitnessData: witnessData,
	}
}

// AllNotes returns every note currently funding the builder's spends.
func (b *TxBuilder) AllNotes() []Note {
	var out []Note
	for _, name := range b.orderedNames() {
		out = append(out, b.Spends[name].Note)
	}
	return out
}

// AllSpends returns every spend builder currently held.
func (b *TxBuilder) AllSpends() []*SpendBuilder {
	var out []*SpendBuilder
	for _, name := range b.orderedNames() {
		out = append(out, b.Spends[name])
	}
	return out
}

// CurFee sums the fee already set on every spend.
func (b *TxBuilder) CurFee() Nicks {
	total := Nicks(0)
	for _, sb := range b.Spends {
		total += sb.Spend.Fee
	}
	return total
}

// CalcFee sums each spend's unclamped fee estimate, clamped to
// MinFee.
func (b *TxBuilder) CalcFee() Nicks {
	total := Nicks(0)
	for _, sb := range b.Spends {
		total += sb.UnclampedFee(b.FeePerWord)
	}
	if total < MinFee {
		return MinFee
	}
	return total
}

// RecalcAndSetFee recomputes the target fee and applies it via
// SetFeeAndBalanceRefund.
func (b *TxBuilder) RecalcAndSetFee(includeLockData bool) error {
	fee := b.CalcFee()
	return b.SetFeeAndBalanceRefund(fee, true, includeLockData)
}

func spendNonRefundAssets(sb *SpendBuilder) Nicks {
	if refund, _, ok := sb.CurRefund(); ok {
		if sb.Note.Assets >= refund.Gift {
			return sb.Note.Assets - refund.Gift
		}
		return 0
	}
	return sb.Note.Assets
}

// SetFeeAndBalanceRefund adjusts every spend's fee/refund so the
// transaction's total fee equals target, pulling additional fee from
// refunds and the fee pool when increasing, or pushing fee back into
// refunds (and retiring spends to the fee pool) when decreasing.
func (b *TxBuilder) SetFeeAndBalanceRefund(target Nicks, adjustFee, includeLockData bool) error {
	cur := b.CurFee()
	switch {
	case cur == target:
		return nil
	case cur < target:
		return b.increaseFee(target-cur, adjustFee, includeLockData)
	default:
		return b.decreaseFee(cur-target, includeLockData)
	}
}

func (b *TxBuilder) increaseFee(feeLeft Nicks, adjustFee, includeLockData bool) error {
	names := b.orderedNames()
	sort.SliceStable(names, func(i, j int) bool {
		a, c := b.Spends[names[i]], b.Spends[names[j]]
		na, nc := spendNonRefundAssets(a), spendNonRefundAssets(c)
		if na != nc {
			return na > nc
		}
		if a.Spend.Fee != c.Spend.Fee {
			return a.Spend.Fee > c.Spend.Fee
		}
		return names[j].Less(names[i])
	})

	for _, name := range names {
		if feeLeft == 0 {
			break
		}
		sb := b.Spends[name]
		refund, _, ok := sb.CurRefund()
		if !ok {
			continue
		}
		sub := refund.Gift
		if sub > feeLeft {
			sub = feeLeft
		}
		sb.Fee(sb.Spend.Fee + sub)
		feeLeft -= sub
		wordsBefore := sb.calcWords()
		sb.ComputeRefund(includeLockData)
		if adjustFee {
			if _, _, stillHas := sb.CurRefund(); !stillHas {
				wordsAfter := sb.calcWords()
				if wordsBefore > wordsAfter {
					reduction := (wordsBefore - wordsAfter) * b.FeePerWord
					if reduction > feeLeft {
						feeLeft = 0
					} else {
						feeLeft -= reduction
					}
				}
			}
		}
	}

	if feeLeft > 0 {
		sort.SliceStable(b.FeePool, func(i, j int) bool { return b.FeePool[i].Note.Assets < b.FeePool[j].Note.Assets })
		for feeLeft > 0 && len(b.FeePool) > 0 {
			last := len(b.FeePool) - 1
			sb := b.FeePool[last]
			b.FeePool = b.FeePool[:last]

			if adjustFee {
				feeLeft += sb.UnclampedFee(b.FeePerWord)
			}
			sub := sb.Note.Assets
			if sub > feeLeft {
				sub = feeLeft
			}
			sb.Fee(sub)
			feeLeft -= sub
			sb.ComputeRefund(includeLockData)
			b.Spends[sb.Note.Name] = sb
		}
		if feeLeft > 0 {
			return errInsufficientFunds()
		}
	}
	return nil
}

func (b *TxBuilder) decreaseFee(refundLeft Nicks, includeLockData bool) error {
	names := b.orderedNames()
	isRefundOnly := func(sb *SpendBuilder) bool {
		if len(sb.Spend.Seeds.Items) != 1 {
			return false
		}
		_, _, ok := sb.CurRefund()
		return ok
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, c := b.Spends[names[i]], b.Spends[names[j]]
		ra, rc := isRefundOnly(a), isRefundOnly(c)
		if ra != rc {
			return ra
		}
		if a.Spend.Fee != c.Spend.Fee {
			return a.Spend.Fee < c.Spend.Fee
		}
		na, nc := spendNonRefundAssets(a), spendNonRefundAssets(c)
		if na != nc {
			return na < nc
		}
		return names[j].Less(names[i])
	})

	var toDrop []Name
	for _, name := range names {
		if refundLeft == 0 {
			break
		}
		sb := b.Spends[name]
		if sb.RefundLock == nil {
			continue
		}
		add := sb.Spend.Fee
		if add > refundLeft {
			add = refundLeft
		}
		newFee := sb.Spend.Fee - add
		sb.Fee(newFee)
		refundLeft -= add
		sb.ComputeRefund(includeLockData)

		if newFee == 0 {
			toDrop = append(toDrop, name)
			reduction := sb.UnclampedFee(b.FeePerWord)
			if reduction > refundLeft {
				refundLeft = 0
			} else {
				refundLeft -= reduction
			}
		}
	}

	for _, name := range toDrop {
		b.FeePool = append(b.FeePool, b.Spends[name])
		delete(b.Spends, name)
	}

	if refundLeft > 0 {
		return errAccountingMismatch()
	}
	return nil
}
