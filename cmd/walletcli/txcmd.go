package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	bip39 "github.com/tyler-smith/go-bip39"
	"github.com/spf13/cobra"

	"github.com/nockwallet/rose/cheetah"
	"github.com/nockwallet/rose/keystore"
	"github.com/nockwallet/rose/noun"
	"github.com/nockwallet/rose/txengine"
)

// txFlags holds the flag set shared by spend/sign/validate/build: a
// single input note, a single recipient, and the fee/memo knobs
// SimpleSpend takes directly. Since this library carries no persistent
// wallet state (see Non-goals), every subcommand rebuilds the spend
// from scratch off these flags rather than resuming a prior one.
type txFlags struct {
	mnemonic        string
	passphrase      string
	path            string
	noteFirst       string
	noteLast        string
	noteOriginPage  uint64
	noteAssets      uint64
	lockM           uint64
	lockHashes      string
	recipientPkh    string
	refundPkh       string
	gift            uint64
	feePerWord      uint64
	memo            string
	includeLockData bool
}

func registerTxFlags(cmd *cobra.Command, f *txFlags) {
	cmd.Flags().StringVar(&f.mnemonic, "mnemonic", "", "BIP-39 mnemonic for the signing key")
	cmd.Flags().StringVar(&f.passphrase, "passphrase", "", "optional BIP-39 passphrase")
	cmd.Flags().StringVar(&f.path, "path", "", `signing key derivation path, e.g. "0h/0"`)
	cmd.Flags().StringVar(&f.noteFirst, "note-first", "", "input note's Name.First digest (base58)")
	cmd.Flags().StringVar(&f.noteLast, "note-last", "", "input note's Name.Last digest (base58)")
	cmd.Flags().Uint64Var(&f.noteOriginPage, "note-origin-page", 0, "input note's origin block height")
	cmd.Flags().Uint64Var(&f.noteAssets, "note-assets", 0, "input note's asset amount")
	cmd.Flags().Uint64Var(&f.lockM, "lock-m", 1, "number of signatures the input note's lock requires")
	cmd.Flags().StringVar(&f.lockHashes, "lock-hashes", "", "comma-separated pubkey-hash digests the input note's lock lists (defaults to the signing key's own hash)")
	cmd.Flags().StringVar(&f.recipientPkh, "recipient-pkh", "", "recipient pubkey-hash digest (base58)")
	cmd.Flags().StringVar(&f.refundPkh, "refund-pkh", "", "refund pubkey-hash digest (base58)")
	cmd.Flags().Uint64Var(&f.gift, "gift", 0, "amount to pay the recipient")
	cmd.Flags().Uint64Var(&f.feePerWord, "fee-per-word", 0, "fee per encoded word (defaults to the config file's fees.per_word)")
	cmd.Flags().StringVar(&f.memo, "memo", "", "optional memo text attached to the best-funded output")
	cmd.Flags().BoolVar(&f.includeLockData, "include-lock-data", false, "embed each seed's full lock in its note data")
}

// signerKey derives the private key that will sign the spend, from the
// flags' mnemonic and path.
func (f *txFlags) signerKey() (*cheetah.PrivateKey, error) {
	if f.mnemonic == "" {
		return nil, nil
	}
	if !bip39.IsMnemonicValid(f.mnemonic) {
		return nil, fmt.Errorf("walletcli: invalid mnemonic checksum")
	}
	seed := bip39.NewSeed(f.mnemonic, f.passphrase)
	path, err := parseDerivationPath(f.path)
	if err != nil {
		return nil, err
	}
	key := keystore.DeriveMasterKey(seed)
	for _, idx := range path {
		key, err = key.DeriveChild(idx)
		if err != nil {
			return nil, fmt.Errorf("walletcli: derive signing key: %w", err)
		}
	}
	if key.PrivateKey == nil {
		return nil, fmt.Errorf("walletcli: derived key has no private half (public-only derivation)")
	}
	return key.PrivateKey, nil
}

// buildSpend assembles a single-note TxBuilder from the flags: derives
// the signing key, reconstructs the input note and its spend
// condition, and runs SimpleSpend against a single recipient.
func (f *txFlags) buildSpend() (*txengine.TxBuilder, *cheetah.PrivateKey, error) {
	signer, err := f.signerKey()
	if err != nil {
		return nil, nil, err
	}

	lockHashes, err := parseDigestList(f.lockHashes)
	if err != nil {
		return nil, nil, err
	}
	if len(lockHashes) == 0 {
		if signer == nil {
			return nil, nil, fmt.Errorf("walletcli: --lock-hashes or --mnemonic must be given")
		}
		lockHashes = []noun.Digest{signer.PublicKey().Hash()}
	}
	cond := txengine.NewSpendConditionPkh(txengine.NewPkh(f.lockM, lockHashes))

	first, err := noun.ParseDigest(f.noteFirst)
	if err != nil {
		return nil, nil, fmt.Errorf("walletcli: --note-first: %w", err)
	}
	last, err := noun.ParseDigest(f.noteLast)
	if err != nil {
		return nil, nil, fmt.Errorf("walletcli: --note-last: %w", err)
	}
	name := txengine.NewName(first, last)
	note := txengine.NewNote(txengine.VersionV1, f.noteOriginPage, name, txengine.EmptyNoteData(), f.noteAssets)

	recipient, err := noun.ParseDigest(f.recipientPkh)
	if err != nil {
		return nil, nil, fmt.Errorf("walletcli: --recipient-pkh: %w", err)
	}
	refund, err := noun.ParseDigest(f.refundPkh)
	if err != nil {
		return nil, nil, fmt.Errorf("walletcli: --refund-pkh: %w", err)
	}

	var memo *noun.Noun
	if f.memo != "" {
		memo = noun.EncodeString(f.memo)
	}

	feePerWord := f.feePerWord
	if feePerWord == 0 {
		feePerWord = cfg.Fees.PerWord
	}

	b := txengine.NewTxBuilder(feePerWord)
	notes := []txengine.NoteAndCondition{{Note: note, SpendCondition: cond}}
	if err := b.SimpleSpend(notes, recipient, f.gift, refund, f.includeLockData, memo); err != nil {
		return nil, nil, err
	}
	logger.WithFields(log.Fields{
		"note":         noun.DigestString(name.Hash()),
		"gift":         f.gift,
		"fee_per_word": feePerWord,
	}).Debug("walletcli: built spend")
	return b, signer, nil
}

func printSpendSummary(cmd *cobra.Command, b *txengine.TxBuilder) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fee:       %d (need %d)\n", b.CurFee(), b.CalcFee())
	for _, sb := range b.AllSpends() {
		fmt.Fprintf(out, "spend %s: %d seed(s), %d signature(s)\n",
			noun.DigestString(sb.Note.Name.Hash()), len(sb.Spend.Seeds.Items), len(sb.Spend.Witness.PkhSignature.Entries))
	}
}

var spendFlags txFlags

func spendRun(cmd *cobra.Command, _ []string) error {
	b, _, err := spendFlags.buildSpend()
	if err != nil {
		return err
	}
	printSpendSummary(cmd, b)
	return nil
}

var SpendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Fee-balance an unsigned spend from a single input note to a single recipient",
	Args:  cobra.NoArgs,
	RunE:  spendRun,
}

var signFlags txFlags

func signRun(cmd *cobra.Command, _ []string) error {
	b, signer, err := signFlags.buildSpend()
	if err != nil {
		return err
	}
	if signer == nil {
		return fmt.Errorf("walletcli: --mnemonic is required to sign")
	}
	b.Sign(signer)
	printSpendSummary(cmd, b)
	return nil
}

var SignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Build a spend and sign it with the derived signing key",
	Args:  cobra.NoArgs,
	RunE:  signRun,
}

var validateFlags txFlags

func validateRun(cmd *cobra.Command, _ []string) error {
	b, signer, err := validateFlags.buildSpend()
	if err != nil {
		return err
	}
	if signer != nil {
		b.Sign(signer)
	}
	if err := b.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build, sign, and validate a spend, reporting any missing unlocks",
	Args:  cobra.NoArgs,
	RunE:  validateRun,
}

var buildFlags txFlags

func buildRun(cmd *cobra.Command, _ []string) error {
	b, signer, err := buildFlags.buildSpend()
	if err != nil {
		return err
	}
	if signer != nil {
		b.Sign(signer)
	}
	if err := b.Validate(); err != nil {
		return err
	}
	tx := b.Build()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tx id: %s\n", noun.DigestString(tx.Id))
	for _, o := range tx.Outputs() {
		fmt.Fprintf(out, "output %s: %d nicks\n", noun.DigestString(o.Name.Hash()), o.Assets)
	}
	return nil
}

var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build, sign, validate, and emit the final transaction",
	Args:  cobra.NoArgs,
	RunE:  buildRun,
}

func init() {
	registerTxFlags(SpendCmd, &spendFlags)
	registerTxFlags(SignCmd, &signFlags)
	registerTxFlags(ValidateCmd, &validateFlags)
	registerTxFlags(BuildCmd, &buildFlags)
}
