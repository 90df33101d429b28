// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

// Address arithmetic for the vault image layout (SPEC_FULL.md §3).
// Grounded on the original implementation's seg_mgr/addresses.rs: every
// offset is derived, never stored, from MemorySize and the active segment
// count.

// startInitDataAddress is always 0: the start marker is the first thing on
// the device.
func startInitDataAddress() uint32 { return 0 }

func metadataAddress() uint32 {
	return startInitDataAddress() + uint32(len(StartMarker))
}

func versionAddress() uint32 {
	return metadataAddress()
}

func endInitDataAddress() uint32 {
	return metadataAddress() + MetadataSize
}

// startDataAddress is where the data region begins, immediately after the
// end marker.
func startDataAddress() uint32 {
	return endInitDataAddress() + uint32(len(EndMarker))
}

// segmentsInfoAddress is the address immediately after the last valid
// segment-info table entry, i.e. the low boundary of the table region.
func segmentsInfoAddress(memorySize uint32, count uint32) uint32 {
	return memorySize - CountFieldSize - count*SegmentInfoSize
}

// segmentMetaAddress returns the address of the i-th segment-info entry
// (0-indexed from the most recently appended), counting backward from the
// count field.
func segmentMetaAddress(memorySize uint32, i uint32) uint32 {
	return memorySize - CountFieldSize - (i+1)*SegmentInfoSize
}

// countAddress is where the u32 segment count is stored.
func countAddress(memorySize uint32) uint32 {
	return memorySize - CountFieldSize
}

// nextDataAddress is the first free byte of the data region, i.e. one past
// the end of the highest-ending active segment (or startDataAddress if the
// vault is empty). Allocation is first-fit-at-tail only (SPEC_FULL.md
// §4.4): this is the only address SetSegment ever allocates at.
func nextDataAddress(segments []SegmentInfo) uint32 {
	max := startDataAddress()
	for _, s := range segments {
		if !s.IsActive() {
			continue
		}
		end := s.Address + s.Size
		if end > max {
			max = end
		}
	}
	return max
}
