package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nockwallet/rose/noun"
	"github.com/nockwallet/rose/txengine"
)

var (
	namesM      uint64
	namesHashes string
)

func parseDigestList(s string) ([]noun.Digest, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]noun.Digest, 0, len(parts))
	for _, p := range parts {
		d, err := noun.ParseDigest(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("walletcli: invalid digest %q: %w", p, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func namesRun(cmd *cobra.Command, _ []string) error {
	hashes, err := parseDigestList(namesHashes)
	if err != nil {
		return err
	}
	cond := txengine.NewSpendConditionPkh(txengine.NewPkh(namesM, hashes))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lock root:  %s\n", noun.DigestString(cond.Hash()))
	fmt.Fprintf(out, "first name: %s\n", noun.DigestString(cond.FirstName()))
	return nil
}

// NamesCmd prints the deterministic "first name" a prospective lock's
// output would carry before any seed paying into it exists, letting a
// wallet UI show a receive address for a lock that has not been funded
// yet.
var NamesCmd = &cobra.Command{
	Use:   "names",
	Short: "Show the lock root and first-name digest for an M-of-N pubkey-hash lock",
	Args:  cobra.NoArgs,
	RunE:  namesRun,
}

func init() {
	NamesCmd.Flags().Uint64Var(&namesM, "m", 1, "number of signatures required")
	NamesCmd.Flags().StringVar(&namesHashes, "hashes", "", "comma-separated base58 pubkey-hash digests")
	_ = NamesCmd.MarkFlagRequired("hashes")
}
