package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nockwallet/rose/keystore"
)

var (
	keygenPassword string
	keygenSalt     string
)

func keygenRun(cmd *cobra.Command, _ []string) error {
	mnemonic, seed, err := keystore.GenMasterKey([]byte(keygenPassword), []byte(keygenSalt))
	if err != nil {
		return err
	}

	master := keystore.DeriveMasterKey(seed[:])
	pub, err := master.PublicKey.ToBase58()
	if err != nil {
		return err
	}
	priv := master.PrivateKey.ToBeBytes()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mnemonic:    %s\n", mnemonic)
	fmt.Fprintf(out, "seed:        %s\n", hex.EncodeToString(seed[:]))
	fmt.Fprintf(out, "master priv: %s\n", hex.EncodeToString(priv[:]))
	fmt.Fprintf(out, "master pub:  %s\n", pub)
	fmt.Fprintf(out, "chain code:  %s\n", hex.EncodeToString(master.ChainCode[:]))
	logger.WithField("account", cfg.Derivation.DefaultAccountIndex).Debug("walletcli: generated master key")
	return nil
}

var KeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Stretch a password/salt into a new BIP-39 mnemonic and master key",
	Args:  cobra.NoArgs,
	RunE:  keygenRun,
}

func init() {
	KeygenCmd.Flags().StringVar(&keygenPassword, "password", "", "password entropy to stretch via Argon2id")
	KeygenCmd.Flags().StringVar(&keygenSalt, "salt", "", "Argon2id salt")
}
