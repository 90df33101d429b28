// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"bytes"
	"testing"

	"github.com/binqbit/svpi-go/pkg/device"
)

func TestRemoveZeroesPayloadAndMeta(t *testing.T) {
	d := device.NewMemory(0)
	m, err := InitDevice(d, 4096, EncryptionLevelLow)
	if err != nil {
		t.Fatalf("InitDevice: %v", err)
	}
	if err := m.SetSegment("secret", []byte("top-secret-value"), DataTypePlain, nil); err != nil {
		t.Fatalf("SetSegment: %v", err)
	}
	idx := m.FindSegmentByName("secret")
	addr, size := m.Segments[idx].Address, m.Segments[idx].Size
	metaAddr := segmentMetaAddress(m.Metadata.MemorySize, uint32(idx))

	if err := m.Remove("secret"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	payload, err := d.ReadData(addr, size)
	if err != nil {
		t.Fatalf("ReadData(payload): %v", err)
	}
	if !allZero(payload) {
		t.Fatalf("payload not zeroed after Remove: %x", payload)
	}
	metaBytes, err := d.ReadData(metaAddr, SegmentInfoSize)
	if err != nil {
		t.Fatalf("ReadData(meta): %v", err)
	}
	if !allZero(metaBytes) {
		t.Fatalf("meta row not zeroed after Remove: %x", metaBytes)
	}
	if m.FindSegmentByName("secret") >= 0 {
		t.Fatalf("removed segment still resolves by name")
	}
}

func TestRemoveUnknownNameFails(t *testing.T) {
	d := device.NewMemory(0)
	m, err := InitDevice(d, 4096, EncryptionLevelLow)
	if err != nil {
		t.Fatalf("InitDevice: %v", err)
	}
	if err := m.Remove("nope"); ErrCode(err) != "data_not_found" {
		t.Fatalf("ErrCode = %q, want data_not_found", ErrCode(err))
	}
}

func TestOptimizeSegmentsCompactsAfterRemoval(t *testing.T) {
	d := device.NewMemory(0)
	m, err := InitDevice(d, 8192, EncryptionLevelLow)
	if err != nil {
		t.Fatalf("InitDevice: %v", err)
	}
	values := map[string][]byte{
		"a": []byte("aaaa"),
		"b": []byte("bbbbbbbb"),
		"c": []byte("cc"),
		"d": []byte("dddddddddd"),
	}
	for _, name := range []string{"a", "b", "c", "d"} {
		if err := m.SetSegment(name, values[name], DataTypePlain, nil); err != nil {
			t.Fatalf("SetSegment(%s): %v", name, err)
		}
	}
	if err := m.Remove("b"); err != nil {
		t.Fatalf("Remove(b): %v", err)
	}

	reclaimed, err := m.OptimizeSegments()
	if err != nil {
		t.Fatalf("OptimizeSegments: %v", err)
	}
	// Removed segment b's payload, plus the one meta row the table no
	// longer needs now that the active count dropped from 4 to 3.
	wantReclaimed := uint32(len(values["b"])) + SegmentInfoSize
	if reclaimed != wantReclaimed {
		t.Fatalf("reclaimed = %d, want %d", reclaimed, wantReclaimed)
	}

	if len(m.Segments) != 3 {
		t.Fatalf("got %d segments after optimize, want 3", len(m.Segments))
	}

	cursor := startDataAddress()
	for _, s := range m.Segments {
		if !s.IsActive() {
			t.Fatalf("optimize left an inactive slot: %+v", s)
		}
		if s.Address != cursor {
			t.Fatalf("segment %s at %d, want contiguous %d", s.NameString(), s.Address, cursor)
		}
		payload, err := m.Device.ReadData(s.Address, s.Size)
		if err != nil {
			t.Fatalf("ReadData: %v", err)
		}
		if !bytes.Equal(payload, values[s.NameString()]) {
			t.Fatalf("payload for %s corrupted by optimize: got %q, want %q", s.NameString(), payload, values[s.NameString()])
		}
		cursor += s.Size
	}

	metaStart := segmentsInfoAddress(m.Metadata.MemorySize, uint32(len(m.Segments)))
	if cursor > metaStart {
		t.Fatalf("data region (%d) overlaps meta table (%d) after optimize", cursor, metaStart)
	}
	gap, err := d.ReadData(cursor, metaStart-cursor)
	if err != nil {
		t.Fatalf("ReadData(gap): %v", err)
	}
	if !allZero(gap) {
		t.Fatalf("gap between data and meta table not zeroed: %x", gap)
	}
}

func TestResizeMemoryRejectsBelowMinimum(t *testing.T) {
	d := device.NewMemory(0)
	m, err := InitDevice(d, 8192, EncryptionLevelLow)
	if err != nil {
		t.Fatalf("InitDevice: %v", err)
	}
	if err := m.SetSegment("a", []byte("0123456789"), DataTypePlain, nil); err != nil {
		t.Fatalf("SetSegment: %v", err)
	}
	tooSmall := startDataAddress()
	before := m.Metadata.MemorySize
	if err := m.ResizeMemory(&tooSmall); ErrCode(err) != "not_enough_memory" {
		t.Fatalf("ErrCode = %q, want not_enough_memory", ErrCode(err))
	}
	if m.Metadata.MemorySize != before {
		t.Fatalf("MemorySize changed after rejected resize: got %d, want %d", m.Metadata.MemorySize, before)
	}
}

func TestResizeMemoryGrowThenShrink(t *testing.T) {
	d := device.NewMemory(0)
	m, err := InitDevice(d, 8192, EncryptionLevelLow)
	if err != nil {
		t.Fatalf("InitDevice: %v", err)
	}
	if err := m.SetSegment("a", []byte("0123456789"), DataTypePlain, nil); err != nil {
		t.Fatalf("SetSegment: %v", err)
	}

	grown := uint32(16384)
	if err := m.ResizeMemory(&grown); err != nil {
		t.Fatalf("ResizeMemory(grow): %v", err)
	}
	if m.Metadata.MemorySize != grown {
		t.Fatalf("MemorySize = %d, want %d", m.Metadata.MemorySize, grown)
	}
	reloaded, err := TryLoad(d)
	if err != nil {
		t.Fatalf("TryLoad after grow: %v", err)
	}
	if len(reloaded.Segments) != 1 {
		t.Fatalf("got %d segments after grow, want 1", len(reloaded.Segments))
	}

	if err := m.ResizeMemory(nil); err != nil {
		t.Fatalf("ResizeMemory(shrink to minimum): %v", err)
	}
	if m.Metadata.MemorySize >= grown {
		t.Fatalf("MemorySize = %d, did not shrink below %d", m.Metadata.MemorySize, grown)
	}
	if _, err := TryLoad(d); err != nil {
		t.Fatalf("TryLoad after shrink: %v", err)
	}
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
