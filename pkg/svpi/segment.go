// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import "sort"

// Remove overwrites a segment's payload with zeroes, then clears and
// zeroes its SegmentInfo row (SPEC_FULL.md §5 ordering guarantee: payload
// zero happens before meta-row zero so a crash between the two leaves the
// segment decoding as garbage rather than resurrecting stale plaintext
// under a valid-looking name). The slot remains present, inactive, until
// OptimizeSegments or ResizeMemory reclaims it.
func (m *SegmentManager) Remove(name string) error {
	idx := m.FindSegmentByName(name)
	if idx < 0 {
		return &VaultError{Op: "remove", Err: ErrDataNotFound}
	}
	return m.removeAt(idx)
}

func (m *SegmentManager) removeAt(idx int) error {
	s := &m.Segments[idx]
	if err := zeroRange(m, s.Address, s.Size); err != nil {
		return err
	}
	metaAddr := segmentMetaAddress(m.Metadata.MemorySize, uint32(idx))
	zeroInfo := SegmentInfo{}
	if err := writeSegmentInfo(m.Device, metaAddr, &zeroInfo); err != nil {
		return err
	}
	m.Segments[idx] = zeroInfo
	return nil
}



// OptimizeSegments reclaims space left by deleted slots (SPEC_FULL.md
// §4.4):
//  1. snapshot active segments, sorted descending by address;
//  2. reassign each active segment's meta slot to the compact, ascending
//     range starting at segmentsInfoAddress for the final active count;
//  3. walk segments address-ascending, moving payloads so a source is
//     never overwritten before it is copied, persisting each meta row;
//  4. zero the gap between the new data-region end and the new meta-table
//     start;
//  5. write the new count.
//
// It returns the number of bytes reclaimed.
func (m *SegmentManager) OptimizeSegments() (uint32, error) {
	active := make([]SegmentInfo, 0, len(m.Segments))
	for _, s := range m.Segments {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Address > active[j].Address })

	oldNextData := nextDataAddress(m.Segments)
	oldMetaStart := segmentsInfoAddress(m.Metadata.MemorySize, uint32(len(m.Segments)))

	// Ascend from the lowest address so a destination slot is always at or
	// below the address currently being read.
	ascending := make([]SegmentInfo, len(active))
	for i, s := range active {
		ascending[len(active)-1-i] = s
	}

	cursor := startDataAddress()
	for i := range ascending {
		s := &ascending[i]
		if s.Address != cursor {
			payload, err := m.Device.ReadData(s.Address, s.Size)
			if err != nil {
				return 0, &DeviceError{Op: "optimize_read", Addr: s.Address, Err: err}
			}
			if err := m.Device.WriteData(cursor, payload); err != nil {
				return 0, &DeviceError{Op: "optimize_write", Addr: cursor, Err: err}
			}
			s.Address = cursor
		}
		cursor += s.Size
	}

	newCount := uint32(len(ascending))
	newMetaStart := segmentsInfoAddress(m.Metadata.MemorySize, newCount)

	for i, s := range ascending {
		metaAddr := segmentMetaAddress(m.Metadata.MemorySize, uint32(i))
		if err := writeSegmentInfo(m.Device, metaAddr, &s); err != nil {
			return 0, err
		}
	}

	if newMetaStart > cursor {
		if err := zeroRange(m, cursor, newMetaStart-cursor); err != nil {
			return 0, err
		}
	}

	if err := writeCount(m.Device, m.Metadata.MemorySize, newCount); err != nil {
		return 0, err
	}

	m.Segments = ascending
	reclaimed := (newMetaStart - cursor) - (oldMetaStart - oldNextData)
	return reclaimed, nil
}

func zeroRange(m *SegmentManager, addr, length uint32) error {
	b := make([]byte, length)
	if err := m.Device.WriteData(addr, b); err != nil {
		return &DeviceError{Op: "zero_range", Addr: addr, Err: err}
	}
	return nil
}

// ResizeMemory always optimizes first, then grows or shrinks the device to
// newSize (or to the computed minimum if newSize is nil). It rejects sizes
// below the minimum without mutating the device further than the
// OptimizeSegments call already performed.
func (m *SegmentManager) ResizeMemory(newSize *uint32) error {
	if _, err := m.OptimizeSegments(); err != nil {
		return err
	}

	var totalPayload uint32
	for _, s := range m.Segments {
		if s.IsActive() {
			totalPayload += s.Size
		}
	}
	count := uint32(len(m.Segments))
	minRequired := startDataAddress() + totalPayload + count*SegmentInfoSize + CountFieldSize

	target := minRequired
	if newSize != nil {
		target = *newSize
	}
	if target < minRequired {
		return &VaultError{Op: "resize_memory", Err: ErrNotEnoughMemory}
	}

	oldMemorySize := m.Metadata.MemorySize
	oldMetaStart := segmentsInfoAddress(oldMemorySize, count)

	if target > oldMemorySize {
		if err := m.Device.Grow(target); err != nil {
			return &DeviceError{Op: "resize_grow", Addr: target, Err: err}
		}
		if err := m.rewriteMetaTable(target); err != nil {
			return err
		}
		// The device observes the new count last (SPEC_FULL.md §5).
		if err := writeCount(m.Device, target, count); err != nil {
			return err
		}
		if err := zeroRange(m, oldMetaStart, oldMemorySize-oldMetaStart); err != nil {
			return err
		}
	} else if target < oldMemorySize {
		if err := m.rewriteMetaTable(target); err != nil {
			return err
		}
		if err := writeCount(m.Device, target, count); err != nil {
			return err
		}
		if err := m.Device.Grow(target); err != nil {
			return &DeviceError{Op: "resize_shrink", Addr: target, Err: err}
		}
	}

	m.Metadata.MemorySize = target
	meta := m.Metadata
	if err := writeMetadata(m.Device, &meta); err != nil {
		return err
	}
	return nil
}

// rewriteMetaTable persists every cached segment's meta row at the table
// addresses implied by newMemorySize.
func (m *SegmentManager) rewriteMetaTable(newMemorySize uint32) error {
	for i := range m.Segments {
		metaAddr := segmentMetaAddress(newMemorySize, uint32(i))
		if err := writeSegmentInfo(m.Device, metaAddr, &m.Segments[i]); err != nil {
			return err
		}
	}
	return nil
}
