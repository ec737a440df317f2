// Command walletcli is a thin cobra front-end over this module's
// libraries: keygen/derive/names/spend/sign/validate/build, one
// subcommand per core operation. It does not persist state across
// invocations; each command takes everything it needs as flags.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nockwallet/rose/internal/walletconfig"
)

var (
	cfgPath string
	cfg     walletconfig.Config
	logger  = log.New()
)

func rootPersistentPreRun(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = walletconfig.Load(cfgPath)
	if err != nil {
		return err
	}
	lvl, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("walletcli: parse log level: %w", err)
	}
	logger.SetLevel(lvl)
	return nil
}

func main() {
	root := &cobra.Command{
		Use:               "walletcli",
		Short:             "Offline wallet for content-addressed UTXO transactions",
		PersistentPreRunE: rootPersistentPreRun,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file (defaults to built-in fee/derivation/logging settings)")

	root.AddCommand(KeygenCmd, DeriveCmd, NamesCmd, SpendCmd, SignCmd, ValidateCmd, BuildCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
