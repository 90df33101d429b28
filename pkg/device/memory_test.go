// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"bytes"
	"testing"
)

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	m := NewMemory(16)
	if err := m.WriteData(4, []byte("abcd")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	got, err := m.ReadData(4, 4)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if !bytes.Equal(got, []byte("abcd")) {
		t.Fatalf("ReadData = %q, want %q", got, "abcd")
	}
}

func TestMemoryReadPastEndFails(t *testing.T) {
	m := NewMemory(8)
	if _, err := m.ReadData(4, 8); err != ErrReadOutOfRange {
		t.Fatalf("ReadData past end = %v, want ErrReadOutOfRange", err)
	}
}

func TestMemoryWriteGrowsBackingStore(t *testing.T) {
	m := NewMemory(4)
	if err := m.WriteData(8, []byte("xy")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	length, err := m.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if length != 10 {
		t.Fatalf("Len = %d, want 10", length)
	}
}

func TestMemoryGrowShrink(t *testing.T) {
	m := NewMemory(4)
	if err := m.Grow(8); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	length, err := m.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if length != 8 {
		t.Fatalf("Len = %d, want 8", length)
	}
	if err := m.Grow(2); err != nil {
		t.Fatalf("Grow(shrink): %v", err)
	}
	length, err = m.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if length != 2 {
		t.Fatalf("Len = %d, want 2", length)
	}
}

func TestMemorySnapshotRestore(t *testing.T) {
	m := NewMemory(4)
	if err := m.WriteData(0, []byte("data")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	snap := m.Snapshot()

	other := NewMemory(0)
	other.Restore(snap)
	got, err := other.ReadData(0, 4)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if !bytes.Equal(got, []byte("data")) {
		t.Fatalf("Restore mismatch: got %q", got)
	}
}

func TestWriteZeroesOverwritesRange(t *testing.T) {
	m := NewMemory(8)
	if err := m.WriteData(0, []byte("abcdefgh")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if err := WriteZeroes(m, 2, 4); err != nil {
		t.Fatalf("WriteZeroes: %v", err)
	}
	got, err := m.ReadData(0, 8)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	want := []byte{'a', 'b', 0, 0, 0, 0, 'g', 'h'}
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteZeroes result = %x, want %x", got, want)
	}
}
