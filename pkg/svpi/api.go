// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"encoding/hex"
	"strings"

	"github.com/binqbit/svpi-go/pkg/device"
)

// StatusReport answers the "status" facade call (SPEC_FULL.md §4.7).
type StatusReport struct {
	Initialized         bool
	ArchitectureVersion uint32
	ArchitectureMatches bool
	MemorySize          uint32
	SegmentCount        int
	InstanceID          string
}

// Status opens d, loading as little as possible to answer whether a vault
// is present and whether its on-device version matches what this build
// understands. An uninitialized or unrecognised device is reported, not
// returned as an error. cfg is optional (nil is fine) and, when supplied,
// contributes the caller-side InstanceID — the on-device format itself
// carries no such field.
func Status(d device.Device, cfg *Config) (StatusReport, error) {
	var instanceID string
	if cfg != nil {
		instanceID = cfg.InstanceID
	}
	m, err := TryLoad(d)
	if err != nil {
		if ErrCode(err) == "device_not_initialized" || ErrCode(err) == "architecture_mismatch" {
			return StatusReport{
				Initialized:         false,
				ArchitectureMatches: ErrCode(err) != "architecture_mismatch",
				InstanceID:          instanceID,
			}, nil
		}
		return StatusReport{}, err
	}
	return StatusReport{
		Initialized:         true,
		ArchitectureVersion: m.Metadata.Version,
		ArchitectureMatches: m.Metadata.Version == ArchitectureVersion,
		MemorySize:          m.Metadata.MemorySize,
		SegmentCount:        m.activeCount(),
		InstanceID:          instanceID,
	}, nil
}

// SegmentSummary is one entry of a List call's result.
type SegmentSummary struct {
	Name                string
	Type                DataType
	Size                uint32
	Fingerprint         string
	PasswordFingerprint string
}

// List loads the vault on d and returns a summary of every active segment
// except EncryptionKey segments, which are never exposed by the facade
// (SPEC_FULL.md §4.7).
func List(d device.Device) ([]SegmentSummary, error) {
	m, err := TryLoad(d)
	if err != nil {
		return nil, err
	}
	out := make([]SegmentSummary, 0, len(m.Segments))
	for _, s := range m.Segments {
		if !s.IsActive() || s.Type == DataTypeEncryptionKey {
			continue
		}
		sum := SegmentSummary{
			Name:        s.NameString(),
			Type:        s.Type,
			Size:        s.Size,
			Fingerprint: hex.EncodeToString(s.Fingerprint.Bytes[:]),
		}
		if s.HasPasswordFP {
			sum.PasswordFingerprint = hex.EncodeToString(s.PasswordFingerprint[:])
		}
		out = append(out, sum)
	}
	return out, nil
}

// GetResult is the decoded value returned by Get.
type GetResult struct {
	Value     string
	Type      DataType
	Encrypted bool
}

// Get loads the vault on d, refuses EncryptionKey segments with
// ErrForbidden, and otherwise returns the decoded plaintext. If the
// segment is encrypted and password is empty, it fails with
// ErrPasswordRequired rather than prompting (SPEC_FULL.md §4.7) — the
// facade is stateless and never blocks on input.
func Get(d device.Device, name string, password []byte) (GetResult, error) {
	m, err := TryLoad(d)
	if err != nil {
		return GetResult{}, err
	}
	idx := m.FindSegmentByName(name)
	if idx < 0 {
		return GetResult{}, &VaultError{Op: "get", Err: ErrDataNotFound}
	}
	s := &m.Segments[idx]
	if s.Type == DataTypeEncryptionKey {
		return GetResult{}, &VaultError{Op: "get", Err: ErrForbidden}
	}

	pm := NewPasswordManager(m)
	value, err := pm.ReadPassword(name, func() []byte { return password })
	if err != nil {
		return GetResult{}, err
	}
	return GetResult{Value: value, Type: s.Type, Encrypted: s.HasPasswordFP}, nil
}

// Export loads the vault on d and renders every active, non-EncryptionKey
// segment as a "name:type:value" line via FormatDataLine, one per
// returned string. Segment payloads are exported as stored on the
// device — encrypted segments round-trip through Import as the same
// ciphertext blob, not as their decoded plaintext (SPEC_FULL.md §4.10).
func Export(d device.Device) ([]string, error) {
	m, err := TryLoad(d)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(m.Segments))
	for i, s := range m.Segments {
		if !s.IsActive() || s.Type == DataTypeEncryptionKey {
			continue
		}
		payload, err := m.ReadPayload(i)
		if err != nil {
			return nil, err
		}
		line, err := FormatDataLine(s.NameString(), s.Type, payload)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Import loads the vault on d and stores each "name:type:value" line
// (as produced by Export or hand-written) as a segment, the inverse of
// Export. It is the CLI's bulk-load counterpart to the single-value Save.
func Import(d device.Device, lines []string) error {
	m, err := TryLoad(d)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, t, payload, err := ParseDataLine(line)
		if err != nil {
			return err
		}
		if err := m.SetSegment(name, payload, t, nil); err != nil {
			return err
		}
	}
	return nil
}
