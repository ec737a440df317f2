// Package keystore derives and manages cheetah keypairs: SLIP-10 style
// hierarchical derivation over the curve group, and mnemonic-based
// master key generation via Argon2id stretching and BIP-39 encoding.
// Argon2d is not implemented.
package keystore

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/nockwallet/rose/cheetah"
	"github.com/nockwallet/rose/curve"
)

var globalLogger = log.New()

// SetLogger overrides the package-level logger used for derivation
// tracing.
func SetLogger(l *log.Logger) { globalLogger = l }

const masterDomainSeparator = "Nockchain seed"

const hardenedOffset uint32 = 1 << 31

var ErrHardenedNeedsPrivateKey = errors.New("keystore: cannot derive a hardened child without a private key")

func hmacSHA512(key, data []byte) [64]byte {
	h := hmac.New(sha512.New, key)
	h.Write(data)
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ExtendedKey is a node in the SLIP-10 derivation tree: a public key
// plus chain code, and a private key when the node is not
// watch-only.
type ExtendedKey struct {
	PrivateKey *cheetah.PrivateKey
	PublicKey  cheetah.PublicKey
	ChainCode  [32]byte
}

// DeriveMasterKey stretches a BIP-39 seed into the root ExtendedKey of
// a derivation tree, rejecting-and-rehashing until the left half of
// the HMAC output lands in [1, GOrder).
func DeriveMasterKey(seed []byte) ExtendedKey {
	result := hmacSHA512([]byte(masterDomainSeparator), seed)
	for {
		s := new(big.Int).SetBytes(result[:32])
		var chainCode [32]byte
		copy(chainCode[:], result[32:])

		if s.Sign() != 0 && s.Cmp(curve.GOrder) < 0 {
			priv := &cheetah.PrivateKey{Scalar: s}
			pub := priv.PublicKey()
			globalLogger.Debug("keystore: derived master key")
			return ExtendedKey{PrivateKey: priv, PublicKey: pub, ChainCode: chainCode}
		}
		result = hmacSHA512([]byte(masterDomainSeparator), result[:])
	}
}

// DeriveChild derives the child at index using SLIP-10: indices at or
// above 1<<31 are hardened and require a private key; others derive
// from the public key alone.
func (k ExtendedKey) DeriveChild(index uint32) (ExtendedKey, error) {
	hardened := index >= hardenedOffset

	var data []byte
	if hardened {
		if k.PrivateKey == nil {
			return ExtendedKey{}, ErrHardenedNeedsPrivateKey
		}
		privBytes := k.PrivateKey.ToBeBytes()
		data = make([]byte, 0, 1+32+4)
		data = append(data, 0x00)
		data = append(data, privBytes[:]...)
	} else {
		pubBytes, err := k.PublicKey.ToSlip10Bytes()
		if err != nil {
			return ExtendedKey{}, fmt.Errorf("keystore: public key encode: %w", err)
		}
		data = make([]byte, 0, 1+len(pubBytes)+4)
		data = append(data, 0x01)
		data = append(data, pubBytes...)
	}
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)
	data = append(data, idxBytes[:]...)

	result := hmacSHA512(k.ChainCode[:], data)
	for {
		left := new(big.Int).SetBytes(result[:32])
		var chainCode [32]byte
		copy(chainCode[:], result[32:])

		if left.Cmp(curve.GOrder) < 0 {
			if k.PrivateKey != nil {
				s := new(big.Int).Add(left, k.PrivateKey.Scalar)
				s.Mod(s, curve.GOrder)
				if s.Sign() != 0 {
					priv := &cheetah.PrivateKey{Scalar: s}
					pub := priv.PublicKey()
					return ExtendedKey{PrivateKey: priv, PublicKey: pub, ChainCode: chainCode}, nil
				}
			} else {
				scaled, ok := curve.ScalBig(left, curve.Gen)
				if !ok {
					return ExtendedKey{}, fmt.Errorf("keystore: child point scaling failed")
				}
				point, ok := curve.Add(scaled, k.PublicKey.Point)
				if !ok {
					return ExtendedKey{}, fmt.Errorf("keystore: child point addition failed")
				}
				if !point.Inf {
					return ExtendedKey{PublicKey: cheetah.PublicKey{Point: point}, ChainCode: chainCode}, nil
				}
			}
		}

		retryData := make([]byte, 0, 1+32+4)
		retryData = append(retryData, 0x01)
		retryData = append(retryData, chainCode[:]...)
		retryData = append(retryData, idxBytes[:]...)
		result = hmacSHA512(k.ChainCode[:], retryData)
	}
}
