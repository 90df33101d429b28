// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"encoding/binary"

	"github.com/binqbit/svpi-go/pkg/device"
)

// packMetadata serialises m into exactly MetadataSize bytes, little-endian,
// field by field. SPEC_FULL.md §9 mandates this explicit layout in place
// of the original's unaligned pointer reads.
func packMetadata(m *Metadata) []byte {
	b := make([]byte, MetadataSize)
	binary.LittleEndian.PutUint32(b[0:4], m.Version)
	binary.LittleEndian.PutUint32(b[4:8], m.MemorySize)
	b[8] = byte(m.DumpProtection)
	copy(b[9:41], m.MasterPasswordHash[:])
	return b
}

func unpackMetadata(b []byte) (*Metadata, error) {
	if len(b) != MetadataSize {
		return nil, &VaultError{Op: "unpack_metadata", Err: ErrInvalidArgument}
	}
	m := &Metadata{
		Version:        binary.LittleEndian.Uint32(b[0:4]),
		MemorySize:     binary.LittleEndian.Uint32(b[4:8]),
		DumpProtection: EncryptionLevel(b[8]),
	}
	copy(m.MasterPasswordHash[:], b[9:41])
	return m, nil
}

// packSegmentInfo serialises s into exactly SegmentInfoSize bytes.
func packSegmentInfo(s *SegmentInfo) []byte {
	b := make([]byte, SegmentInfoSize)
	off := 0
	copy(b[off:off+SegmentNameSize], s.Name[:])
	off += SegmentNameSize
	binary.LittleEndian.PutUint32(b[off:off+4], s.Address)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], s.Size)
	off += 4
	b[off] = byte(s.Type)
	off++
	if s.HasPasswordFP {
		b[off] = 1
	}
	off++
	copy(b[off:off+FingerprintSize], s.PasswordFingerprint[:])
	off += FingerprintSize
	copy(b[off:off+FingerprintSize], s.Fingerprint.Bytes[:])
	off += FingerprintSize
	b[off] = s.Fingerprint.Probe
	off++
	return b
}

func unpackSegmentInfo(b []byte) (*SegmentInfo, error) {
	if len(b) != SegmentInfoSize {
		return nil, &VaultError{Op: "unpack_segment_info", Err: ErrInvalidArgument}
	}
	s := &SegmentInfo{}
	off := 0
	copy(s.Name[:], b[off:off+SegmentNameSize])
	off += SegmentNameSize
	s.Address = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	s.Size = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	s.Type = DataType(b[off])
	off++
	s.HasPasswordFP = b[off] != 0
	off++
	copy(s.PasswordFingerprint[:], b[off:off+FingerprintSize])
	off += FingerprintSize
	copy(s.Fingerprint.Bytes[:], b[off:off+FingerprintSize])
	off += FingerprintSize
	s.Fingerprint.Probe = b[off]
	off++
	return s, nil
}

// readMetadata and writeMetadata are the Typed I/O entry points
// (SPEC_FULL.md §4.1) for the fixed-size Metadata header.
func readMetadata(d device.Device) (*Metadata, error) {
	b, err := d.ReadData(metadataAddress(), MetadataSize)
	if err != nil {
		return nil, &DeviceError{Op: "read_metadata", Addr: metadataAddress(), Err: err}
	}
	return unpackMetadata(b)
}

func writeMetadata(d device.Device, m *Metadata) error {
	if err := d.WriteData(metadataAddress(), packMetadata(m)); err != nil {
		return &DeviceError{Op: "write_metadata", Addr: metadataAddress(), Err: err}
	}
	return nil
}

func readSegmentInfo(d device.Device, addr uint32) (*SegmentInfo, error) {
	b, err := d.ReadData(addr, SegmentInfoSize)
	if err != nil {
		return nil, &DeviceError{Op: "read_segment_info", Addr: addr, Err: err}
	}
	return unpackSegmentInfo(b)
}

func writeSegmentInfo(d device.Device, addr uint32, s *SegmentInfo) error {
	if err := d.WriteData(addr, packSegmentInfo(s)); err != nil {
		return &DeviceError{Op: "write_segment_info", Addr: addr, Err: err}
	}
	return nil
}

func readCount(d device.Device, memorySize uint32) (uint32, error) {
	addr := countAddress(memorySize)
	b, err := d.ReadData(addr, CountFieldSize)
	if err != nil {
		return 0, &DeviceError{Op: "read_count", Addr: addr, Err: err}
	}
	return binary.LittleEndian.Uint32(b), nil
}

func writeCount(d device.Device, memorySize uint32, count uint32) error {
	addr := countAddress(memorySize)
	b := make([]byte, CountFieldSize)
	binary.LittleEndian.PutUint32(b, count)
	if err := d.WriteData(addr, b); err != nil {
		return &DeviceError{Op: "write_count", Addr: addr, Err: err}
	}
	return nil
}
