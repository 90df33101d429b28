// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"bytes"
	"strings"

	borsh "github.com/near/borsh-go"
)

// dumpMagic tags an encrypted dump envelope (SPEC_FULL.md §4.6/§6.4). A
// raw dump has no magic prefix — by construction it starts with
// StartMarker.
const dumpMagic = "SDP"

// dumpEnvelope is the Borsh-packed body of an encrypted dump.
type dumpEnvelope struct {
	Protection uint8
	Payload    []byte
}

// protectionCode and codeToLevel implement the §6.4 mapping: 1=Low,
// 2=Medium, 3=Strong, 4=Hardened.
func protectionCode(level EncryptionLevel) uint8 {
	switch level {
	case EncryptionLevelLow:
		return 1
	case EncryptionLevelMedium:
		return 2
	case EncryptionLevelStrong:
		return 3
	case EncryptionLevelHardened:
		return 4
	default:
		return 0
	}
}

func codeToLevel(code uint8) (EncryptionLevel, error) {
	switch code {
	case 1:
		return EncryptionLevelLow, nil
	case 2:
		return EncryptionLevelMedium, nil
	case 3:
		return EncryptionLevelStrong, nil
	case 4:
		return EncryptionLevelHardened, nil
	default:
		return 0, &VaultError{Op: "code_to_level", Err: ErrInvalidArgument}
	}
}

// IsEncryptedDump reports whether data is an encrypted dump envelope
// rather than a raw vault image.
func IsEncryptedDump(data []byte) bool {
	return strings.HasPrefix(string(data), dumpMagic)
}

// EncryptDump seals data (typically a raw vault image from GetDump) under
// password at the given protection level, producing "SDP" ||
// Borsh{protection, payload}.
func EncryptDump(data, password []byte, level EncryptionLevel) ([]byte, error) {
	params := ParamsFor(level)
	ciphertext, err := Encrypt(data, password, params)
	if err != nil {
		return nil, err
	}
	body, err := borsh.Serialize(dumpEnvelope{Protection: protectionCode(level), Payload: ciphertext})
	if err != nil {
		return nil, &VaultError{Op: "encrypt_dump", Err: err}
	}
	out := make([]byte, 0, len(dumpMagic)+len(body))
	out = append(out, []byte(dumpMagic)...)
	out = append(out, body...)
	return out, nil
}

// DecryptDump is the inverse of EncryptDump, dispatching by the stored
// protection code back to a KDF level. It fails with ErrPasswordError on
// the wrong password, matching Decrypt's AEAD-tag guarantee.
func DecryptDump(data, password []byte) ([]byte, EncryptionLevel, error) {
	if !IsEncryptedDump(data) {
		return nil, 0, &VaultError{Op: "decrypt_dump", Err: ErrInvalidArgument}
	}
	var env dumpEnvelope
	if err := borsh.Deserialize(&env, data[len(dumpMagic):]); err != nil {
		return nil, 0, &VaultError{Op: "decrypt_dump", Err: ErrInvalidArgument}
	}
	level, err := codeToLevel(env.Protection)
	if err != nil {
		return nil, 0, err
	}
	params := ParamsFor(level)
	plain, err := Decrypt(env.Payload, password, params)
	if err != nil {
		return nil, 0, err
	}
	return plain, level, nil
}

// GetDump returns the full raw vault image for a file/memory-backed
// device.
func GetDump(d rawDumpDevice) ([]byte, error) {
	length, err := d.Len()
	if err != nil {
		return nil, &DeviceError{Op: "get_dump", Err: err}
	}
	b, err := d.ReadData(0, length)
	if err != nil {
		return nil, &DeviceError{Op: "get_dump", Err: err}
	}
	return b, nil
}

// SetDump overwrites the entire device with a previously captured raw
// image. The device is grown or shrunk to exactly len(data) first.
func SetDump(d rawDumpDevice, data []byte) error {
	if err := d.Grow(uint32(len(data))); err != nil {
		return &DeviceError{Op: "set_dump", Err: err}
	}
	if err := d.WriteData(0, data); err != nil {
		return &DeviceError{Op: "set_dump", Err: err}
	}
	return nil
}

// rawDumpDevice is the subset of device.Device GetDump/SetDump need; kept
// narrow so tests can pass a bare in-memory stub without importing the
// device package's concrete types.
type rawDumpDevice interface {
	Len() (uint32, error)
	ReadData(addr uint32, length uint32) ([]byte, error)
	WriteData(addr uint32, data []byte) error
	Grow(newLen uint32) error
}

// dumpStartsWithVaultMarker is a small helper used by tests to assert S5's
// "get_dump starts with the start marker" property without duplicating the
// marker bytes.
func dumpStartsWithVaultMarker(data []byte) bool {
	return bytes.HasPrefix(data, []byte(StartMarker))
}
