// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsDistinct(t *testing.T) {
	sentinels := []error{
		ErrDeviceNotFound, ErrDeviceNotInitialized, ErrArchitectureMismatch,
		ErrDeviceIO, ErrDataNotFound, ErrPasswordRequired, ErrPasswordError,
		ErrMasterPasswordInvalid, ErrNotEnoughMemory, ErrForbidden,
		ErrInvalidArgument, ErrMissingArgument,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Fatalf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestErrCodeStableStrings(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrDeviceNotFound, "device_not_found"},
		{ErrDeviceNotInitialized, "device_not_initialized"},
		{ErrArchitectureMismatch, "architecture_mismatch"},
		{ErrDataNotFound, "data_not_found"},
		{ErrPasswordRequired, "password_required"},
		{ErrPasswordError, "password_error"},
		{ErrMasterPasswordInvalid, "master_password_invalid"},
		{ErrNotEnoughMemory, "not_enough_memory"},
		{ErrForbidden, "forbidden"},
		{ErrInvalidArgument, "invalid_argument"},
		{ErrMissingArgument, "missing_argument"},
		{errors.New("boom"), "device_error"},
	}
	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			wrapped := fmt.Errorf("wrap: %w", c.err)
			if got := ErrCode(wrapped); got != c.code {
				t.Fatalf("ErrCode(%v) = %q, want %q", c.err, got, c.code)
			}
		})
	}
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	de := &DeviceError{Op: "read", Addr: 10, Err: ErrDeviceIO}
	if !errors.Is(de, ErrDeviceIO) {
		t.Fatalf("DeviceError does not unwrap to ErrDeviceIO")
	}
	// A DeviceError wrapping some unrelated os-level failure still
	// classifies as ErrDeviceIO, independent of the specific cause.
	osErr := &DeviceError{Op: "read", Addr: 10, Err: errors.New("short read")}
	if !errors.Is(osErr, ErrDeviceIO) {
		t.Fatalf("DeviceError wrapping an unrelated error does not match ErrDeviceIO")
	}
	if ErrCode(osErr) != "device_error" {
		t.Fatalf("ErrCode(osErr) = %q, want device_error", ErrCode(osErr))
	}
	ve := &VaultError{Op: "set_segment", Err: ErrNotEnoughMemory}
	if !errors.Is(ve, ErrNotEnoughMemory) {
		t.Fatalf("VaultError does not unwrap to ErrNotEnoughMemory")
	}
	ce := &CryptoError{Op: "decrypt", Err: ErrPasswordError}
	if !errors.Is(ce, ErrPasswordError) {
		t.Fatalf("CryptoError does not unwrap to ErrPasswordError")
	}
}
