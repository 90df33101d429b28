// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Data is the tagged variant over a byte payload described in SPEC_FULL.md
// §3/§4.2. String forms are encodings of the same bytes; Bytes() on any
// variant yields the canonical payload.
type Data struct {
	Type    DataType
	Payload []byte
}

// Bytes returns the canonical byte payload. It is the identity for Binary
// and EncryptionKey, and a decode for the string variants.
func (d Data) Bytes() []byte {
	return d.Payload
}

// String renders the payload in the encoding implied by d.Type.
func (d Data) String() (string, error) {
	switch d.Type {
	case DataTypePlain:
		return string(d.Payload), nil
	case DataTypeHex:
		return hex.EncodeToString(d.Payload), nil
	case DataTypeBase58:
		return base58.Encode(d.Payload), nil
	case DataTypeBase64:
		return encodeBase64Std(d.Payload), nil
	case DataTypeBinary, DataTypeEncryptionKey:
		return "", &VaultError{Op: "data_string", Err: ErrInvalidArgument}
	default:
		return "", &VaultError{Op: "data_string", Err: ErrInvalidArgument}
	}
}

// NewData decodes s as the given DataType, producing the canonical byte
// payload. It is the typed inverse of DataFromStrInfer.
func NewData(s string, t DataType) (Data, error) {
	switch t {
	case DataTypePlain:
		return Data{Type: t, Payload: []byte(s)}, nil
	case DataTypeHex:
		b, err := hex.DecodeString(s)
		if err != nil {
			return Data{}, &VaultError{Op: "data_from_hex", Err: ErrInvalidArgument}
		}
		return Data{Type: t, Payload: b}, nil
	case DataTypeBase58:
		b, err := base58.Decode(s)
		if err != nil {
			return Data{}, &VaultError{Op: "data_from_base58", Err: ErrInvalidArgument}
		}
		return Data{Type: t, Payload: b}, nil
	case DataTypeBase64:
		b, err := decodeBase64Std(s)
		if err != nil {
			return Data{}, &VaultError{Op: "data_from_base64", Err: ErrInvalidArgument}
		}
		return Data{Type: t, Payload: b}, nil
	case DataTypeBinary:
		return Data{Type: t, Payload: []byte(s)}, nil
	default:
		return Data{}, &VaultError{Op: "new_data", Err: ErrInvalidArgument}
	}
}

// DataFromStrInfer tries Hex, then Base58, then Base64, then falls back to
// Plain — a fixed, testable precedence cascade (SPEC_FULL.md §4.2).
func DataFromStrInfer(s string) Data {
	if b, err := hex.DecodeString(s); err == nil && len(s)%2 == 0 && len(s) > 0 {
		return Data{Type: DataTypeHex, Payload: b}
	}
	if b, err := base58.Decode(s); err == nil && len(s) > 0 {
		return Data{Type: DataTypeBase58, Payload: b}
	}
	if b, err := decodeBase64Std(s); err == nil && len(s) > 0 {
		return Data{Type: DataTypeBase64, Payload: b}
	}
	return Data{Type: DataTypePlain, Payload: []byte(s)}
}

// FindUniqueFingerprint computes SHA-256(payload)[:4] and increments the
// probe byte until (bytes, probe) does not collide with any entry in
// existing. It fails if the probe space (0..255) is exhausted.
func FindUniqueFingerprint(payload []byte, existing []SegmentInfo) (Fingerprint, error) {
	sum := sha256.Sum256(payload)
	var fp Fingerprint
	copy(fp.Bytes[:], sum[:FingerprintSize])

	for probe := 0; probe < 255; probe++ {
		fp.Probe = uint8(probe)
		if !fingerprintCollides(fp, existing) {
			return fp, nil
		}
	}
	return Fingerprint{}, &VaultError{Op: "find_unique_fingerprint", Err: ErrNotEnoughMemory}
}

func fingerprintCollides(fp Fingerprint, existing []SegmentInfo) bool {
	for _, s := range existing {
		if !s.IsActive() {
			continue
		}
		if s.Fingerprint.Bytes == fp.Bytes && s.Fingerprint.Probe == fp.Probe {
			return true
		}
	}
	return false
}

// FormatDataLine renders a segment as a "name:type:value" text line, the
// human-readable export format supplemented from the original
// implementation's FormattedData (seg_mgr/data.rs), used by the CLI's
// list/export verb. EncryptionKey segments are never rendered this way —
// callers must filter them out first (SPEC_FULL.md §4.7).
func FormatDataLine(name string, t DataType, payload []byte) (string, error) {
	if t == DataTypeEncryptionKey {
		return "", &VaultError{Op: "format_data_line", Err: ErrForbidden}
	}
	d := Data{Type: t, Payload: payload}
	var value string
	var err error
	if t == DataTypeBinary {
		value = hex.EncodeToString(payload)
	} else {
		value, err = d.String()
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s:%s:%s", name, t.String(), value), nil
}

// ParseDataLine is the inverse of FormatDataLine.
func ParseDataLine(line string) (name string, t DataType, payload []byte, err error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return "", 0, nil, &VaultError{Op: "parse_data_line", Err: ErrInvalidArgument}
	}
	t, err = DataTypeFromString(parts[1])
	if err != nil {
		return "", 0, nil, err
	}
	if t == DataTypeBinary {
		payload, err = hex.DecodeString(parts[2])
		if err != nil {
			return "", 0, nil, &VaultError{Op: "parse_data_line", Err: ErrInvalidArgument}
		}
		return parts[0], t, payload, nil
	}
	d, err := NewData(parts[2], t)
	if err != nil {
		return "", 0, nil, err
	}
	return parts[0], t, d.Payload, nil
}
