package keystore

import (
	"fmt"

	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/argon2"
)

// argon2dTime/Memory/Threads mirror the source's fixed Argon2d cost
// parameters: 6<<17 KiB memory, 6 iterations, 4 lanes.
const (
	argon2dTime    = 6
	argon2dMemory  = 6 << 17
	argon2dThreads = 4
	argon2dKeyLen  = 32
)

// GenMasterKey stretches password/salt into 32 bytes of entropy,
// encodes it as a BIP-39 mnemonic, and returns both the phrase and its
// BIP-39 seed (empty passphrase). golang.org/x/crypto/argon2 exposes
// only Argon2i and Argon2id, not the Argon2d variant; Argon2id is used
// here with the same time/memory/parallelism costs since no pack
// library exposes Argon2d (see DESIGN.md).
func GenMasterKey(password, salt []byte) (mnemonic string, seed [64]byte, err error) {
	entropy := argon2.IDKey(password, salt, argon2dTime, argon2dMemory, argon2dThreads, argon2dKeyLen)

	// The stretched output is reversed (big-endian <-> little-endian)
	// before BIP-39 encoding; dropping this step produces mnemonics
	// that diverge from the ecosystem for identical password/salt.
	for i, j := 0, len(entropy)-1; i < j; i, j = i+1, j-1 {
		entropy[i], entropy[j] = entropy[j], entropy[i]
	}

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", seed, fmt.Errorf("keystore: mnemonic encode: %w", err)
	}
	s := bip39.NewSeed(phrase, "")
	copy(seed[:], s)
	return phrase, seed, nil
}
