// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

// Package svpi implements the vault core: the on-device binary format, the
// segment manager, and the password manager built on it (SPEC_FULL.md §3,
// §4.4, §4.5). Concurrency model: single-threaded cooperative, every
// mutating operation owns the Device exclusively for its duration
// (SPEC_FULL.md §5). A future HTTP wrapper would serialise with one
// process-wide sync.Mutex around every *SegmentManager method; that wrapper
// is out of scope here.
package svpi

import (
	"github.com/binqbit/svpi-go/pkg/device"
)

// SegmentManager owns a Device and the cached in-memory segment list
// (SPEC_FULL.md §4.4). Every operation re-derives addresses from
// Metadata.MemorySize and len(Segments); nothing but the count and the
// table itself is persisted.
type SegmentManager struct {
	Device   device.Device
	Metadata Metadata
	Segments []SegmentInfo
}

// InitDevice formats a fresh vault: sets MemorySize, zeroes the region,
// writes the start/end markers, persists Metadata, and writes a segment
// count of zero (SPEC_FULL.md §4.4).
func InitDevice(d device.Device, memorySize uint32, dumpProtection EncryptionLevel) (*SegmentManager, error) {
	if memorySize < startDataAddress()+CountFieldSize {
		return nil, &VaultError{Op: "init_device", Err: ErrNotEnoughMemory}
	}
	if err := d.Grow(memorySize); err != nil {
		return nil, &DeviceError{Op: "grow", Addr: memorySize, Err: err}
	}
	if err := device.WriteZeroes(d, 0, memorySize); err != nil {
		return nil, &DeviceError{Op: "zero_init", Addr: 0, Err: err}
	}
	if err := d.WriteData(startInitDataAddress(), []byte(StartMarker)); err != nil {
		return nil, &DeviceError{Op: "write_start_marker", Addr: startInitDataAddress(), Err: err}
	}
	if err := d.WriteData(endInitDataAddress(), []byte(EndMarker)); err != nil {
		return nil, &DeviceError{Op: "write_end_marker", Addr: endInitDataAddress(), Err: err}
	}

	meta := Metadata{
		Version:        ArchitectureVersion,
		MemorySize:     memorySize,
		DumpProtection: dumpProtection,
	}
	if err := writeMetadata(d, &meta); err != nil {
		return nil, err
	}
	if err := writeCount(d, memorySize, 0); err != nil {
		return nil, err
	}

	return &SegmentManager{Device: d, Metadata: meta, Segments: nil}, nil
}

// TryLoad verifies markers and version, unpacks Metadata, and loads the
// segment-info table (SPEC_FULL.md §4.4). Meta addresses are computed, not
// stored.
func TryLoad(d device.Device) (*SegmentManager, error) {
	length, err := d.Len()
	if err != nil {
		return nil, &DeviceError{Op: "len", Err: err}
	}
	if length < uint32(len(StartMarker)+len(EndMarker))+MetadataSize+CountFieldSize {
		return nil, &VaultError{Op: "try_load", Err: ErrDeviceNotInitialized}
	}

	startMarker, err := d.ReadData(startInitDataAddress(), uint32(len(StartMarker)))
	if err != nil {
		return nil, &DeviceError{Op: "read_start_marker", Err: err}
	}
	if string(startMarker) != StartMarker {
		return nil, &VaultError{Op: "try_load", Err: ErrDeviceNotInitialized}
	}
	endMarker, err := d.ReadData(endInitDataAddress(), uint32(len(EndMarker)))
	if err != nil {
		return nil, &DeviceError{Op: "read_end_marker", Err: err}
	}
	if string(endMarker) != EndMarker {
		return nil, &VaultError{Op: "try_load", Err: ErrDeviceNotInitialized}
	}

	meta, err := readMetadata(d)
	if err != nil {
		return nil, err
	}
	if meta.Version != ArchitectureVersion {
		return nil, &VaultError{Op: "try_load", Err: ErrArchitectureMismatch}
	}
	if meta.MemorySize != length {
		return nil, &VaultError{Op: "try_load", Err: ErrArchitectureMismatch}
	}

	count, err := readCount(d, meta.MemorySize)
	if err != nil {
		return nil, err
	}
	// count comes straight off the device; a corrupt or hostile image could
	// set it near uint32 max, and segmentMetaAddress multiplies it by
	// SegmentInfoSize before using the result as an offset.
	if err := CheckMulOverflowU32(count, SegmentInfoSize); err != nil {
		return nil, &VaultError{Op: "try_load", Err: ErrInvalidArgument}
	}

	segments := make([]SegmentInfo, 0, SafeUint32ToInt(count))
	for i := uint32(0); i < count; i++ {
		addr := segmentMetaAddress(meta.MemorySize, i)
		s, err := readSegmentInfo(d, addr)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *s)
	}

	return &SegmentManager{Device: d, Metadata: *meta, Segments: segments}, nil
}

// FindSegmentByName performs a linear, case-sensitive scan over active
// entries (SPEC_FULL.md §4.4). It returns the index into m.Segments, or -1.
func (m *SegmentManager) FindSegmentByName(name string) int {
	for i := range m.Segments {
		if m.Segments[i].IsActive() && m.Segments[i].NameString() == name {
			return i
		}
	}
	return -1
}

// activeCount returns the number of active (non-deleted) entries.
func (m *SegmentManager) activeCount() int {
	n := 0
	for i := range m.Segments {
		if m.Segments[i].IsActive() {
			n++
		}
	}
	return n
}

// SetSegment allocates a new segment at the tail of the data region
// (first-fit-at-tail only, SPEC_FULL.md §4.4): it computes a unique
// fingerprint, removes any prior segment with the same name, writes the
// payload and meta row, and bumps the count.
func (m *SegmentManager) SetSegment(name string, payload []byte, t DataType, passwordFP *[FingerprintSize]byte) error {
	if err := ValidateSegmentName(name); err != nil {
		return err
	}

	addr := nextDataAddress(m.Segments)
	metaAddr := segmentMetaAddress(m.Metadata.MemorySize, uint32(len(m.Segments)))
	if uint64(addr)+uint64(len(payload)) > uint64(metaAddr) {
		return &VaultError{Op: "set_segment", Err: ErrNotEnoughMemory}
	}

	fp, err := FindUniqueFingerprint(payload, m.Segments)
	if err != nil {
		return err
	}

	if idx := m.FindSegmentByName(name); idx >= 0 {
		if err := m.removeAt(idx); err != nil {
			return err
		}
		// removeAt zeroes the slot but does not shrink the table; recompute
		// addr/metaAddr/fp against the now-zeroed segment list so the
		// freed slot is reused in place of a fresh append where possible.
		addr = nextDataAddress(m.Segments)
		metaAddr = segmentMetaAddress(m.Metadata.MemorySize, uint32(len(m.Segments)))
		if uint64(addr)+uint64(len(payload)) > uint64(metaAddr) {
			return &VaultError{Op: "set_segment", Err: ErrNotEnoughMemory}
		}
		fp, err = FindUniqueFingerprint(payload, m.Segments)
		if err != nil {
			return err
		}
	}

	info := SegmentInfo{
		Address: addr,
		Size:    uint32(len(payload)),
		Type:    t,
	}
	if err := setName(&info.Name, name); err != nil {
		return err
	}
	info.Fingerprint = fp
	if passwordFP != nil {
		info.HasPasswordFP = true
		info.PasswordFingerprint = *passwordFP
	}

	if err := m.Device.WriteData(addr, payload); err != nil {
		return &DeviceError{Op: "write_segment_payload", Addr: addr, Err: err}
	}
	if err := writeSegmentInfo(m.Device, metaAddr, &info); err != nil {
		return err
	}
	newCount := uint32(len(m.Segments)) + 1
	if err := writeCount(m.Device, m.Metadata.MemorySize, newCount); err != nil {
		return err
	}

	m.Segments = append(m.Segments, info)
	return nil
}

// Rename updates a segment's name and persists its meta row. Names longer
// than SegmentNameSize are an invalid_argument error.
func (m *SegmentManager) Rename(oldName, newName string) error {
	idx := m.FindSegmentByName(oldName)
	if idx < 0 {
		return &VaultError{Op: "rename", Err: ErrDataNotFound}
	}
	if err := setName(&m.Segments[idx].Name, newName); err != nil {
		return err
	}
	metaAddr := segmentMetaAddress(m.Metadata.MemorySize, uint32(idx))
	return writeSegmentInfo(m.Device, metaAddr, &m.Segments[idx])
}

// SetType updates a segment's data type without touching its payload
// bytes, then persists its meta row.
func (m *SegmentManager) SetType(name string, t DataType) error {
	idx := m.FindSegmentByName(name)
	if idx < 0 {
		return &VaultError{Op: "set_type", Err: ErrDataNotFound}
	}
	m.Segments[idx].Type = t
	metaAddr := segmentMetaAddress(m.Metadata.MemorySize, uint32(idx))
	return writeSegmentInfo(m.Device, metaAddr, &m.Segments[idx])
}

// ReadPayload reads the raw bytes of an active segment.
func (m *SegmentManager) ReadPayload(idx int) ([]byte, error) {
	s := &m.Segments[idx]
	b, err := m.Device.ReadData(s.Address, s.Size)
	if err != nil {
		return nil, &DeviceError{Op: "read_segment_payload", Addr: s.Address, Err: err}
	}
	return b, nil
}
