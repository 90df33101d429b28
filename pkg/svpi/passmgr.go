// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi


// PasswordManager wraps a SegmentManager with master-password lifecycle,
// encryption-key records, and save/read/link/sync of user secrets
// (SPEC_FULL.md §4.5).
type PasswordManager struct {
	*SegmentManager
}

// NewPasswordManager adapts an already-loaded SegmentManager.
func NewPasswordManager(m *SegmentManager) *PasswordManager {
	return &PasswordManager{SegmentManager: m}
}

// SetMasterPassword derives and persists the master-password check hash.
func (p *PasswordManager) SetMasterPassword(password []byte) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	p.Metadata.MasterPasswordHash = MasterPasswordCheck(password, p.Metadata.DumpProtection)
	meta := p.Metadata
	return writeMetadata(p.Device, &meta)
}

// ResetMasterPassword zeroes the stored hash.
func (p *PasswordManager) ResetMasterPassword() error {
	p.Metadata.MasterPasswordHash = [32]byte{}
	meta := p.Metadata
	return writeMetadata(p.Device, &meta)
}

// IsMasterPasswordSet reports whether a master-password hash has been
// set.
func (p *PasswordManager) IsMasterPasswordSet() bool {
	return p.Metadata.HasMasterPassword()
}

// CheckMasterPassword recomputes the check hash and compares byte-for-byte
// against the stored one.
func (p *PasswordManager) CheckMasterPassword(password []byte) bool {
	got := MasterPasswordCheck(password, p.Metadata.DumpProtection)
	return ConstantTimeEqual(got[:], p.Metadata.MasterPasswordHash[:])
}

// AddEncryptionKey builds an EncryptionKey for name under master, seals it
// under password, and stores it as an EncryptionKey segment. Callers must
// have already verified master via CheckMasterPassword.
func (p *PasswordManager) AddEncryptionKey(master []byte, name string, password []byte, level EncryptionLevel) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	key, err := NewEncryptionKey(master, name, level, p.Metadata.DumpProtection)
	if err != nil {
		return err
	}
	if err := key.Encrypt(password, p.Metadata.DumpProtection); err != nil {
		return err
	}
	packed, err := PackEncryptionKey(key)
	if err != nil {
		return err
	}
	fp := key.PasswordFingerprint(password, p.Metadata.DumpProtection)
	return p.SetSegment(name, packed, DataTypeEncryptionKey, &fp)
}

// GetEncryptionKey resolves a raw key from password. If desiredFP is
// non-nil, it looks up the EncryptionKey segment whose fingerprint
// matches and attempts to decrypt only that one; otherwise it scans every
// EncryptionKey segment and returns the first that decrypts. On total
// failure, it returns the backward-compatible fallback: the password
// itself becomes the key, fingerprinted against a fixed default salt
// (SPEC_FULL.md §4.5, §9 open question — retained intentionally).
func (p *PasswordManager) GetEncryptionKey(password []byte, desiredFP *Fingerprint) (Fingerprint, []byte, error) {
	for i := range p.Segments {
		s := &p.Segments[i]
		if !s.IsActive() || s.Type != DataTypeEncryptionKey {
			continue
		}
		if desiredFP != nil && s.Fingerprint != *desiredFP {
			continue
		}
		payload, err := p.ReadPayload(i)
		if err != nil {
			return Fingerprint{}, nil, err
		}
		key, err := UnpackEncryptionKey(payload)
		if err != nil {
			return Fingerprint{}, nil, err
		}
		raw, err := key.Decrypt(password, p.Metadata.DumpProtection)
		if err == nil {
			return s.Fingerprint, raw, nil
		}
	}

	fallbackFP := FingerprintForPassword(password, p.Metadata.DumpProtection)
	var fp Fingerprint
	copy(fp.Bytes[:], fallbackFP[:])
	return fp, append([]byte(nil), password...), nil
}

// SavePassword infers the Data type of value, optionally encrypts it under
// the key resolved from keyHint, and stores it.
func (p *PasswordManager) SavePassword(name string, value string, keyHint []byte) error {
	data := DataFromStrInfer(value)

	if keyHint == nil {
		return p.SetSegment(name, data.Payload, data.Type, nil)
	}

	fp, key, err := p.GetEncryptionKey(keyHint, nil)
	if err != nil {
		return err
	}
	blob, err := Encrypt(data.Payload, key, ParamsFor(p.Metadata.DumpProtection))
	if err != nil {
		return err
	}
	return p.SetSegment(name, blob, data.Type, &fp)
}

// ReadPassword decodes the named segment. If it carries a password
// fingerprint, lazyKeyProvider is invoked to obtain a password, which is
// resolved to a raw key and used to decrypt; the provider is never
// invoked for unencrypted segments.
func (p *PasswordManager) ReadPassword(name string, lazyKeyProvider func() []byte) (string, error) {
	idx := p.FindSegmentByName(name)
	if idx < 0 {
		return "", &VaultError{Op: "read_password", Err: ErrDataNotFound}
	}
	s := &p.Segments[idx]
	if s.Type == DataTypeEncryptionKey {
		return "", &VaultError{Op: "read_password", Err: ErrForbidden}
	}
	payload, err := p.ReadPayload(idx)
	if err != nil {
		return "", err
	}

	if !s.HasPasswordFP {
		d := Data{Type: s.Type, Payload: payload}
		return decodeForRead(d)
	}

	password := lazyKeyProvider()
	if len(password) == 0 {
		return "", &VaultError{Op: "read_password", Err: ErrPasswordRequired}
	}
	_, key, err := p.GetEncryptionKey(password, nil)
	if err != nil {
		return "", err
	}
	plain, err := Decrypt(payload, key, ParamsFor(p.Metadata.DumpProtection))
	if err != nil {
		return "", err
	}
	d := Data{Type: s.Type, Payload: plain}
	return decodeForRead(d)
}

func decodeForRead(d Data) (string, error) {
	if d.Type == DataTypeBinary {
		return string(d.Payload), nil
	}
	return d.String()
}

// LinkKey resolves (fp, key) from password, attempts to decrypt the named
// segment's current payload with key, and on success sets the segment's
// password fingerprint to fp, persisting its meta row.
func (p *PasswordManager) LinkKey(name string, password []byte) error {
	idx := p.FindSegmentByName(name)
	if idx < 0 {
		return &VaultError{Op: "link_key", Err: ErrDataNotFound}
	}
	s := &p.Segments[idx]
	payload, err := p.ReadPayload(idx)
	if err != nil {
		return err
	}
	fp, key, err := p.GetEncryptionKey(password, nil)
	if err != nil {
		return err
	}
	if _, err := Decrypt(payload, key, ParamsFor(p.Metadata.DumpProtection)); err != nil {
		return &VaultError{Op: "link_key", Err: ErrPasswordError}
	}
	s.HasPasswordFP = true
	s.PasswordFingerprint = fp.Bytes
	metaAddr := segmentMetaAddress(p.Metadata.MemorySize, uint32(idx))
	return writeSegmentInfo(p.Device, metaAddr, s)
}

// SyncEncryptionKeys re-derives every EncryptionKey segment's raw key from
// master, then for every non-key active segment attempts decryption with
// each candidate, linking the first that succeeds. Used after restoring
// from a dump.
func (p *PasswordManager) SyncEncryptionKeys(master []byte) error {
	type candidate struct {
		fp  Fingerprint
		key []byte
	}
	var candidates []candidate

	for i := range p.Segments {
		s := &p.Segments[i]
		if !s.IsActive() || s.Type != DataTypeEncryptionKey {
			continue
		}
		payload, err := p.ReadPayload(i)
		if err != nil {
			return err
		}
		stored, err := UnpackEncryptionKey(payload)
		if err != nil {
			return err
		}
		name := s.NameString()
		derived, err := NewEncryptionKey(master, name, stored.Level, p.Metadata.DumpProtection)
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate{fp: s.Fingerprint, key: derived.Key})
	}

	for i := range p.Segments {
		s := &p.Segments[i]
		if !s.IsActive() || s.Type == DataTypeEncryptionKey {
			continue
		}
		payload, err := p.ReadPayload(i)
		if err != nil {
			return err
		}
		for _, c := range candidates {
			if _, err := Decrypt(payload, c.key, ParamsFor(p.Metadata.DumpProtection)); err == nil {
				s.HasPasswordFP = true
				s.PasswordFingerprint = c.fp.Bytes
				metaAddr := segmentMetaAddress(p.Metadata.MemorySize, uint32(i))
				if err := writeSegmentInfo(p.Device, metaAddr, s); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
