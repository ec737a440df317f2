package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRootForTest mirrors main()'s root command wiring, minus os.Exit on
// failure, so RunE errors surface to the caller as plain Go errors.
func newRootForTest() *cobra.Command {
	root := &cobra.Command{
		Use:               "walletcli",
		PersistentPreRunE: rootPersistentPreRun,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	root.AddCommand(KeygenCmd, DeriveCmd, NamesCmd, SpendCmd, SignCmd, ValidateCmd, BuildCmd)
	return root
}

// run executes root against args, capturing combined stdout/stderr. Each
// call resets cfgPath so one test's --config flag can't leak into the
// next, since the commands under test share package state with main.go.
func run(t *testing.T, args ...string) string {
	t.Helper()
	cfgPath = ""

	root := newRootForTest()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	require.NoError(t, err)
	return out.String()
}

func TestKeygenDeterministic(t *testing.T) {
	out1 := run(t, "keygen", "--password", "hunter2", "--salt", "fixed-salt-for-test")
	out2 := run(t, "keygen", "--password", "hunter2", "--salt", "fixed-salt-for-test")
	assert.Equal(t, out1, out2)
	assert.Contains(t, out1, "mnemonic:")
	assert.Contains(t, out1, "master pub:")
}

func TestDeriveRejectsBadMnemonic(t *testing.T) {
	cfgPath = ""
	root := newRootForTest()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"derive", "--mnemonic", "not a real mnemonic at all", "--path", "0h"})
	err := root.Execute()
	require.Error(t, err)
}

func TestNamesPrintsFirstNameForPkhLock(t *testing.T) {
	out := run(t, "keygen", "--password", "pw", "--salt", "derive-names-salt")
	mnemonic := extractField(t, out, "mnemonic:")

	derived := run(t, "derive", "--mnemonic", mnemonic, "--path", "0h")
	hash := extractField(t, derived, "pubkeyHash:")

	names := run(t, "names", "--m", "1", "--hashes", hash)
	assert.Contains(t, names, "lock root:")
	assert.Contains(t, names, "first name:")
}

func TestBuildEndToEndSingleSigner(t *testing.T) {
	out := run(t, "keygen", "--password", "pw", "--salt", "tx-e2e-salt")
	mnemonic := extractField(t, out, "mnemonic:")

	derived := run(t, "derive", "--mnemonic", mnemonic, "--path", "0h")
	pkh := extractField(t, derived, "pubkeyHash:")

	built := run(t, "build",
		"--mnemonic", mnemonic,
		"--path", "0h",
		"--note-first", pkh,
		"--note-last", pkh,
		"--note-assets", "1000000",
		"--recipient-pkh", pkh,
		"--refund-pkh", pkh,
		"--gift", "100",
		"--fee-per-word", "10",
	)
	assert.Contains(t, built, "tx id:")
	assert.Contains(t, built, "output")
}

// extractField pulls the value after "<label> " on the first matching
// line of a command's output.
func extractField(t *testing.T, out, label string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	t.Fatalf("field %q not found in output:\n%s", label, out)
	return ""
}
