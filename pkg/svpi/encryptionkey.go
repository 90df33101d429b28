// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"crypto/rand"
	"crypto/sha256"

	borsh "github.com/near/borsh-go"
)

// NewEncryptionKey derives the raw key material for name under the master
// password and packs it into a fresh record with a random salt, per
// SPEC_FULL.md §4.3: raw_key = Argon2id(master, SHA-256(name)[:16],
// Hardened ⊗ dump_protection).
func NewEncryptionKey(masterPassword []byte, name string, level, dumpProtection EncryptionLevel) (*EncryptionKey, error) {
	nameHash := sha256.Sum256([]byte(name))
	var rawKeySalt [16]byte
	copy(rawKeySalt[:], nameHash[:16])
	rawKey := DeriveEncryptionKey(masterPassword, rawKeySalt[:], dumpProtection)

	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, &CryptoError{Op: "new_encryption_key", Err: err}
	}

	key := make([]byte, len(rawKey))
	copy(key, rawKey[:])

	return &EncryptionKey{Key: key, Salt: salt, Level: level}, nil
}

// Encrypt seals the key's raw material under password at
// max(key.Level, dumpProtection), mutating Key in place to hold the AEAD
// blob instead of the raw key (SPEC_FULL.md §4.3).
func (k *EncryptionKey) Encrypt(password []byte, dumpProtection EncryptionLevel) error {
	level := effectiveLevel(k.Level, dumpProtection)
	params := ParamsFor(level)
	blob, err := Encrypt(k.Key, password, params)
	if err != nil {
		return err
	}
	k.Key = blob
	return nil
}

// Decrypt returns the raw key material sealed by Encrypt. It does not
// mutate the receiver.
func (k *EncryptionKey) Decrypt(password []byte, dumpProtection EncryptionLevel) ([]byte, error) {
	level := effectiveLevel(k.Level, dumpProtection)
	params := ParamsFor(level)
	return Decrypt(k.Key, password, params)
}

// PasswordFingerprint computes Argon2id(password, key.Salt,
// max(key.Level, dumpProtection))[:4], the link stored on every segment
// this key can decrypt (SPEC_FULL.md §4.3).
func (k *EncryptionKey) PasswordFingerprint(password []byte, dumpProtection EncryptionLevel) [FingerprintSize]byte {
	level := effectiveLevel(k.Level, dumpProtection)
	params := ParamsFor(level)
	h := PasswordHash(password, k.Salt[:], params)
	var fp [FingerprintSize]byte
	copy(fp[:], h[:FingerprintSize])
	return fp
}

func effectiveLevel(a, b EncryptionLevel) EncryptionLevel {
	if a > b {
		return a
	}
	return b
}

// PackEncryptionKey Borsh-serialises an EncryptionKey record for storage as
// a segment payload.
func PackEncryptionKey(k *EncryptionKey) ([]byte, error) {
	b, err := borsh.Serialize(*k)
	if err != nil {
		return nil, &VaultError{Op: "pack_encryption_key", Err: err}
	}
	return b, nil
}

// UnpackEncryptionKey is the inverse of PackEncryptionKey.
func UnpackEncryptionKey(b []byte) (*EncryptionKey, error) {
	var k EncryptionKey
	if err := borsh.Deserialize(&k, b); err != nil {
		return nil, &VaultError{Op: "unpack_encryption_key", Err: err}
	}
	return &k, nil
}
