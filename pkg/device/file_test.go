// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFileOpenExistingFailsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.svpi")
	if _, err := OpenExistingFile(path); err != ErrDeviceNotFoundFile {
		t.Fatalf("OpenExistingFile = %v, want ErrDeviceNotFoundFile", err)
	}
}

func TestFileWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.svpi")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer func() { _ = f.Close() }()

	if err := f.WriteData(0, []byte("hello file")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	got, err := f.ReadData(0, 10)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if !bytes.Equal(got, []byte("hello file")) {
		t.Fatalf("ReadData = %q, want %q", got, "hello file")
	}
}

func TestFileReadPastEndFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.svpi")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer func() { _ = f.Close() }()

	if err := f.Grow(4); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if _, err := f.ReadData(0, 8); err != ErrReadOutOfRange {
		t.Fatalf("ReadData past end = %v, want ErrReadOutOfRange", err)
	}
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.svpi")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := f.WriteData(0, []byte("persisted")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenExistingFile(path)
	if err != nil {
		t.Fatalf("OpenExistingFile: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.ReadData(0, 9)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if !bytes.Equal(got, []byte("persisted")) {
		t.Fatalf("ReadData after reopen = %q, want %q", got, "persisted")
	}
}
