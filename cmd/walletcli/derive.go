package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	bip39 "github.com/tyler-smith/go-bip39"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nockwallet/rose/keystore"
	"github.com/nockwallet/rose/noun"
)

var (
	derivePathMnemonic  string
	derivePathPassword  string
	derivePathSpec      string
)

// parseDerivationPath splits a "/"-separated path like "0h/1/2h" into
// SLIP-10 child indices, where a trailing "h" or "'" marks a hardened
// step.
func parseDerivationPath(spec string) ([]uint32, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, "/")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		hardened := false
		if strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H") || strings.HasSuffix(p, "'") {
			hardened = true
			p = p[:len(p)-1]
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("walletcli: invalid derivation path segment %q: %w", p, err)
		}
		idx := uint32(n)
		if hardened {
			idx |= 1 << 31
		}
		out = append(out, idx)
	}
	return out, nil
}

func deriveRun(cmd *cobra.Command, _ []string) error {
	if !bip39.IsMnemonicValid(derivePathMnemonic) {
		return fmt.Errorf("walletcli: invalid mnemonic checksum")
	}
	seed := bip39.NewSeed(derivePathMnemonic, derivePathPassword)

	path, err := parseDerivationPath(derivePathSpec)
	if err != nil {
		return err
	}

	key := keystore.DeriveMasterKey(seed)
	for _, idx := range path {
		key, err = key.DeriveChild(idx)
		if err != nil {
			return fmt.Errorf("walletcli: derive child: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:       %s\n", derivePathSpec)
	if key.PrivateKey != nil {
		priv := key.PrivateKey.ToBeBytes()
		fmt.Fprintf(out, "priv:       %s\n", hex.EncodeToString(priv[:]))
	}
	pub, err := key.PublicKey.ToBase58()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "pub:        %s\n", pub)
	fmt.Fprintf(out, "pubkeyHash: %s\n", noun.DigestString(key.PublicKey.Hash()))
	fmt.Fprintf(out, "chainCode:  %s\n", hex.EncodeToString(key.ChainCode[:]))
	logger.WithFields(log.Fields{"path": derivePathSpec, "steps": len(path)}).Debug("walletcli: derived child key")
	return nil
}

var DeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive a child keypair from a BIP-39 mnemonic along a SLIP-10 path",
	Args:  cobra.NoArgs,
	RunE:  deriveRun,
}

func init() {
	DeriveCmd.Flags().StringVar(&derivePathMnemonic, "mnemonic", "", "BIP-39 mnemonic phrase")
	DeriveCmd.Flags().StringVar(&derivePathPassword, "passphrase", "", "optional BIP-39 passphrase")
	DeriveCmd.Flags().StringVar(&derivePathSpec, "path", "", `derivation path, e.g. "0h/1/2h" ("h" or "'" marks a hardened step)`)
	_ = DeriveCmd.MarkFlagRequired("mnemonic")
}
