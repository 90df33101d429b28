// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package device

import "sync"

// Memory is an in-memory Device backed by a growable byte slice. It is
// grounded on the original implementation's MemoryDataManager
// (data_mgr/memory.rs), but unlike that implementation it follows
// SPEC_FULL.md §4.1 literally: reads past the end fail with
// ErrReadOutOfRange rather than silently returning a short read.
type Memory struct {
	mu  sync.Mutex
	buf []byte
}

// NewMemory creates an in-memory device pre-sized to length bytes, all
// zero.
func NewMemory(length uint32) *Memory {
	return &Memory{buf: make([]byte, length)}
}

func (m *Memory) Len() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(len(m.buf)), nil
}

func (m *Memory) ReadData(addr uint32, length uint32) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := uint64(addr) + uint64(length)
	if end > uint64(len(m.buf)) {
		return nil, ErrReadOutOfRange
	}
	out := make([]byte, length)
	copy(out, m.buf[addr:end])
	return out, nil
}

func (m *Memory) WriteData(addr uint32, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := uint64(addr) + uint64(len(data))
	if end > uint64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[addr:end], data)
	return nil
}

func (m *Memory) Grow(newLen uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(newLen) <= len(m.buf) {
		m.buf = m.buf[:newLen]
		return nil
	}
	grown := make([]byte, newLen)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func (m *Memory) Close() error { return nil }

// Snapshot returns a copy of the entire backing buffer, used by the dump
// envelope (SPEC_FULL.md §4.6) to produce a raw vault image.
func (m *Memory) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out
}

// Restore replaces the entire backing buffer, used by set_dump.
func (m *Memory) Restore(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf = make([]byte, len(data))
	copy(m.buf, data)
}
