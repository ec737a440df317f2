package txengine

import (
	"math/big"
	"testing"

	"github.com/nockwallet/rose/belt"
	"github.com/nockwallet/rose/cheetah"
	"github.com/nockwallet/rose/noun"
)

func testKey(t *testing.T, seed int64) *cheetah.PrivateKey {
	t.Helper()
	return &cheetah.PrivateKey{Scalar: big.NewInt(1000 + seed)}
}

func digestFrom(b uint64) noun.Digest {
	var d noun.Digest
	d[0] = belt.Belt(b)
	d[1] = belt.Belt(b + 1)
	return d
}

func testNote(name Name, assets Nicks) Note {
	return NewNote(VersionV1, 13, name, EmptyNoteData(), assets)
}

func TestSimpleSpendBalancesAndSigns(t *testing.T) {
	priv := testKey(t, 1)
	pub := priv.PublicKey()
	keyHash := pub.Hash()

	cond := SpendCondition{Primitives: []LockPrimitive{
		PkhPrimitive(SinglePkh(keyHash)),
		TimPrimitive(CoinbaseLockTim()),
	}}

	name := NewName(digestFrom(10), digestFrom(20))
	note := testNote(name, 1_000_000)

	recipient := digestFrom(30)
	refundPkh := digestFrom(40)

	b := NewTxBuilder(1 << 15)
	err := b.SimpleSpend([]NoteAndCondition{{Note: note, SpendCondition: cond}}, recipient, 250_000, refundPkh, true, nil)
	if err != nil {
		t.Fatalf("SimpleSpend: %v", err)
	}

	b.Sign(priv)

	if err := b.Validate(); err != nil {
		t.Fatalf("Validate after signing: %v", err)
	}

	sb := b.Spends[name]
	if !sb.IsBalanced() {
		t.Fatalf("spend should balance after SimpleSpend")
	}
	if len(sb.Spend.Seeds.Items) == 0 {
		t.Fatalf("expected at least a recipient seed")
	}
}

func TestValidateFailsWithoutSignature(t *testing.T) {
	priv := testKey(t, 2)
	pub := priv.PublicKey()
	keyHash := pub.Hash()

	cond := SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(SinglePkh(keyHash))}}
	name := NewName(digestFrom(11), digestFrom(21))
	note := testNote(name, 500_000)

	b := NewTxBuilder(1 << 15)
	if err := b.SimpleSpend([]NoteAndCondition{{Note: note, SpendCondition: cond}}, digestFrom(31), 100_000, digestFrom(41), false, nil); err != nil {
		t.Fatalf("SimpleSpend: %v", err)
	}

	if err := b.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without a signature")
	}
}

func TestSetFeeAndBalanceRefundIncreasesAndDecreases(t *testing.T) {
	priv := testKey(t, 3)
	keyHash := priv.PublicKey().Hash()
	cond := SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(SinglePkh(keyHash))}}

	name := NewName(digestFrom(12), digestFrom(22))
	note := testNote(name, 10_000)

	b := NewTxBuilder(8)
	if err := b.SimpleSpendBase([]NoteAndCondition{{Note: note, SpendCondition: cond}}, digestFrom(32), 2_000, digestFrom(42), false, nil); err != nil {
		t.Fatalf("SimpleSpendBase: %v", err)
	}

	baseFee := b.CalcFee()
	if err := b.SetFeeAndBalanceRefund(baseFee+1000, true, false); err != nil {
		t.Fatalf("increase fee: %v", err)
	}
	if b.CurFee() != baseFee+1000 {
		t.Fatalf("fee after increase = %d, want %d", b.CurFee(), baseFee+1000)
	}

	if err := b.SetFeeAndBalanceRefund(baseFee, true, false); err != nil {
		t.Fatalf("decrease fee: %v", err)
	}
	if b.CurFee() != baseFee {
		t.Fatalf("fee after decrease = %d, want %d", b.CurFee(), baseFee)
	}
}

func TestSimpleSpendBaseZeroGift(t *testing.T) {
	priv := testKey(t, 4)
	keyHash := priv.PublicKey().Hash()
	cond := SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(SinglePkh(keyHash))}}
	name := NewName(digestFrom(13), digestFrom(23))
	note := testNote(name, 1000)

	b := NewTxBuilder(1)
	err := b.SimpleSpendBase([]NoteAndCondition{{Note: note, SpendCondition: cond}}, digestFrom(33), 0, digestFrom(43), false, nil)
	if err == nil {
		t.Fatalf("expected ZeroGift error")
	}
}

func TestSimpleSpendBaseInsufficientFunds(t *testing.T) {
	priv := testKey(t, 5)
	keyHash := priv.PublicKey().Hash()
	cond := SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(SinglePkh(keyHash))}}
	name := NewName(digestFrom(14), digestFrom(24))
	note := testNote(name, 100)

	b := NewTxBuilder(1)
	err := b.SimpleSpendBase([]NoteAndCondition{{Note: note, SpendCondition: cond}}, digestFrom(34), 1000, digestFrom(44), false, nil)
	if err == nil {
		t.Fatalf("expected InsufficientFunds error")
	}
}

func TestRawTxOutputsMergesByLockRoot(t *testing.T) {
	priv := testKey(t, 6)
	keyHash := priv.PublicKey().Hash()
	cond := SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(SinglePkh(keyHash))}}

	name1 := NewName(digestFrom(15), digestFrom(25))
	name2 := NewName(digestFrom(16), digestFrom(26))
	note1 := testNote(name1, 5000)
	note2 := testNote(name2, 5000)

	recipient := digestFrom(35)
	refundPkh := digestFrom(45)

	b := NewTxBuilder(1)
	if err := b.SimpleSpend([]NoteAndCondition{{Note: note1, SpendCondition: cond}}, recipient, 1000, refundPkh, false, nil); err != nil {
		t.Fatalf("spend 1: %v", err)
	}
	if err := b.SimpleSpend([]NoteAndCondition{{Note: note2, SpendCondition: cond}}, recipient, 1000, refundPkh, false, nil); err != nil {
		t.Fatalf("spend 2: %v", err)
	}
	b.Sign(priv)

	tx := b.Build()
	outputs := tx.Outputs()
	if len(outputs) != 2 {
		t.Fatalf("expected recipient and refund seeds merged into 2 outputs, got %d", len(outputs))
	}

	var recipientTotal Nicks
	for _, o := range outputs {
		recipientTotal += o.Assets
	}
	if recipientTotal == 0 {
		t.Fatalf("expected nonzero total output assets")
	}
}

func TestMissingUnlocksDetectsUnsignedPkh(t *testing.T) {
	priv := testKey(t, 7)
	keyHash := priv.PublicKey().Hash()
	cond := SpendCondition{Primitives: []LockPrimitive{PkhPrimitive(NewPkh(2, []noun.Digest{keyHash, digestFrom(99)}))}}

	sb := NewSpendBuilder(testNote(NewName(digestFrom(17), digestFrom(27)), 1000), cond, nil)
	missing := sb.MissingUnlocksList()
	if len(missing) != 1 || missing[0].Kind != "pkh" || missing[0].NumSigs != 2 {
		t.Fatalf("expected one missing 2-of-2 pkh unlock, got %+v", missing)
	}

	sb.Sign(priv)
	missing = sb.MissingUnlocksList()
	if len(missing) != 1 || missing[0].NumSigs != 1 {
		t.Fatalf("expected one remaining signature after partial sign, got %+v", missing)
	}
}
