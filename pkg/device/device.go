// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

// Package device implements the byte-addressable storage abstraction the
// vault core is built on (SPEC_FULL.md §6.1). A Device is a flat,
// zero-indexed array of bounded length: reads of un-initialised bytes
// return zero, writes past the end either grow the backing storage or
// fail, depending on the implementation.
package device

import "errors"

// ErrReadOutOfRange is returned when a read extends past the current
// device length. Writes past the end are not an error for growable
// devices (Memory, File); they extend the backing storage instead.
var ErrReadOutOfRange = errors.New("read past end of device")

// Device is the storage contract every layer above it depends on. The
// segment manager and password manager never assume anything about the
// transport beyond this interface.
type Device interface {
	// Len reports the current addressable length in bytes.
	Len() (uint32, error)

	// ReadData reads exactly length bytes starting at addr. It fails with
	// ErrReadOutOfRange if addr+length exceeds the device length.
	ReadData(addr uint32, length uint32) ([]byte, error)

	// WriteData writes data starting at addr, growing the backing storage
	// first if addr+len(data) exceeds the current length and the
	// implementation supports growth.
	WriteData(addr uint32, data []byte) error

	// Grow extends (or truncates) the device to exactly newLen bytes,
	// zero-filling any newly added range. Fixed-size transports return an
	// error.
	Grow(newLen uint32) error

	// Close releases any resources held by the device (open file
	// descriptors, locks). Memory devices no-op.
	Close() error
}

// WriteZeroes overwrites length bytes at addr with zero. It is the
// mechanism Remove and OptimizeSegments use to guarantee invariant 5
// (SPEC_FULL.md §8): no plaintext survives a delete.
func WriteZeroes(d Device, addr uint32, length uint32) error {
	if length == 0 {
		return nil
	}
	zeroes := make([]byte, length)
	return d.WriteData(addr, zeroes)
}
