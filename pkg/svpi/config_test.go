// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromYAMLRejectsEmpty(t *testing.T) {
	if _, err := FromYAML("   "); err == nil {
		t.Fatal("expected error for empty YAML")
	}
}

func TestFromYAMLRequiresDevicePath(t *testing.T) {
	if _, err := FromYAML("memory_size: 4096\n"); err == nil {
		t.Fatal("expected error for missing device_path")
	}
}

func TestFromYAMLAppliesDefaults(t *testing.T) {
	cfg, err := FromYAML("device_path: vault.svpi\n")
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if cfg.MemorySize != DefaultMemorySize {
		t.Fatalf("MemorySize = %d, want default %d", cfg.MemorySize, DefaultMemorySize)
	}
	if cfg.DefaultLevel != EncryptionLevelMedium {
		t.Fatalf("DefaultLevel = %v, want medium", cfg.DefaultLevel)
	}
	if cfg.DumpProtection != EncryptionLevelMedium {
		t.Fatalf("DumpProtection = %v, want medium", cfg.DumpProtection)
	}
	if cfg.InstanceID == "" {
		t.Fatal("expected InstanceID to be assigned")
	}
}

func TestFromYAMLPreservesExplicitInstanceID(t *testing.T) {
	cfg, err := FromYAML("device_path: vault.svpi\ninstance_id: fixed-id\n")
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if cfg.InstanceID != "fixed-id" {
		t.Fatalf("InstanceID = %q, want fixed-id", cfg.InstanceID)
	}
}

func TestFromYAMLAssignsDistinctInstanceIDs(t *testing.T) {
	a, err := FromYAML("device_path: vault.svpi\n")
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	b, err := FromYAML("device_path: vault.svpi\n")
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if a.InstanceID == b.InstanceID {
		t.Fatal("expected distinct auto-assigned InstanceIDs")
	}
}

func TestLoadConfigFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.svpi.yaml")
	body := "device_path: vault.svpi\nmemory_size: 65536\ndefault_level: 3\ndump_protection: 2\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.DevicePath != "vault.svpi" || cfg.MemorySize != 65536 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DefaultLevel != EncryptionLevelStrong {
		t.Fatalf("DefaultLevel = %v, want strong", cfg.DefaultLevel)
	}
}

func TestLoadConfigFileMissingFails(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
