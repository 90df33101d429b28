// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package svpi

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the `.svpi` vault defaults file: device path, the initial size
// to format with, the KDF preset new encryption keys are created at, and
// the dump-protection level InitDevice should use. The on-device format
// itself carries no configuration — this is CLI/caller-side convenience,
// the way the teacher's FormatOptions defaults are populated from a policy
// document rather than hard-coded (SPEC_FULL.md §4.8).
//
// InstanceID identifies this vault's config across copies of the same
// on-device image (e.g. after a dump/restore); it is never written to the
// device itself, only to the config file, and is assigned on first load if
// absent.
type Config struct {
	DevicePath     string          `yaml:"device_path"`
	MemorySize     uint32          `yaml:"memory_size"`
	DefaultLevel   EncryptionLevel `yaml:"default_level"`
	DumpProtection EncryptionLevel `yaml:"dump_protection"`
	InstanceID     string          `yaml:"instance_id"`
}

// DefaultMemorySize is used when a config omits memory_size.
const DefaultMemorySize = 1 << 20

// FromYAML parses a raw YAML config document.
func FromYAML(data string) (*Config, error) {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return nil, errors.New("svpi config YAML is empty")
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(trimmed), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse svpi config: %w", err)
	}
	if cfg.DevicePath == "" {
		return nil, errors.New("svpi config missing required field 'device_path'")
	}
	if cfg.MemorySize == 0 {
		cfg.MemorySize = DefaultMemorySize
	}
	if cfg.DefaultLevel == 0 {
		cfg.DefaultLevel = EncryptionLevelMedium
	}
	if cfg.DumpProtection == 0 {
		cfg.DumpProtection = EncryptionLevelMedium
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	return &cfg, nil
}

// LoadConfigFile loads a Config from a YAML file path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read svpi config %s: %w", path, err)
	}
	return FromYAML(string(data))
}
