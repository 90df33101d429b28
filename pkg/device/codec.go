// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package device

import "encoding/binary"

// ReadUint32 and WriteUint32 are the little-endian, unaligned-safe
// replacements for the original implementation's unsafe pointer casts
// (SPEC_FULL.md §9). Every fixed-size field of Metadata and SegmentInfo is
// decoded through helpers like these rather than through a generic
// reflection-based reader.
func ReadUint32(d Device, addr uint32) (uint32, error) {
	b, err := d.ReadData(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func WriteUint32(d Device, addr uint32, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return d.WriteData(addr, b[:])
}

func ReadByte(d Device, addr uint32) (byte, error) {
	b, err := d.ReadData(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func WriteByte(d Device, addr uint32, v byte) error {
	return d.WriteData(addr, []byte{v})
}
