// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/binqbit/svpi-go/pkg/device"
	"github.com/binqbit/svpi-go/pkg/svpi"
)

// Operations defines the vault operations the CLI dispatches to. Each
// method opens its own device by path and closes it before returning,
// matching the stateless-per-call contract of SPEC_FULL.md §4.7.
type Operations interface {
	Init(path string, memorySize uint32, dumpProtection svpi.EncryptionLevel) error
	Status(path string) (svpi.StatusReport, error)
	List(path string) ([]svpi.SegmentSummary, error)
	Get(path, name string, password []byte) (svpi.GetResult, error)
	Save(path, name, value string, keyHint []byte) error
	Remove(path, name string) error
	Rename(path, oldName, newName string) error
	SetType(path, name string, t svpi.DataType) error
	Optimize(path string) (uint32, error)
	Resize(path string, newSize *uint32) error
	SetMasterPassword(path string, password []byte) error
	CheckMasterPassword(path string, password []byte) (bool, error)
	AddEncryptionKey(path, name string, password []byte, level svpi.EncryptionLevel) error
	LinkKey(path, name string, password []byte) error
	SyncEncryptionKeys(path string, master []byte) error
	GetDump(path string) ([]byte, error)
	SetDump(path string, data []byte) error
	Export(path string) ([]string, error)
	Import(path string, lines []string) error
}

// Terminal defines the interface for terminal operations.
type Terminal interface {
	ReadPassword(fd int) ([]byte, error)
}

// FileSystem defines the interface for file system operations the CLI
// needs beyond the vault device itself (dump/restore targets).
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// CLI represents the command-line interface application.
type CLI struct {
	Args       []string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Vault      Operations
	Terminal   Terminal
	FS         FileSystem
	ExitFunc   func(code int)
	stdinFd    int
	getStdinFd func() int
}

// DefaultOperations implements Operations against a real file-backed
// device, mirroring the teacher's DefaultLuksOperations shape.
type DefaultOperations struct{}

func openDevice(path string) (*device.File, error) {
	return device.OpenFile(path)
}

func (o *DefaultOperations) Init(path string, memorySize uint32, dumpProtection svpi.EncryptionLevel) error {
	d, err := openDevice(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	_, err = svpi.InitDevice(d, memorySize, dumpProtection)
	return err
}

func (o *DefaultOperations) Status(path string) (svpi.StatusReport, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		if err == device.ErrDeviceNotFoundFile {
			return svpi.StatusReport{}, nil
		}
		return svpi.StatusReport{}, err
	}
	defer func() { _ = d.Close() }()

	// The config file is an optional, caller-side sidecar (SPEC_FULL.md
	// §4.8/§4.9): its absence is not an error, it just means Status
	// reports no InstanceID.
	cfg, _ := svpi.LoadConfigFile(path + ".yaml")
	return svpi.Status(d, cfg)
}

func (o *DefaultOperations) List(path string) ([]svpi.SegmentSummary, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()
	return svpi.List(d)
}

func (o *DefaultOperations) Get(path, name string, password []byte) (svpi.GetResult, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return svpi.GetResult{}, err
	}
	defer func() { _ = d.Close() }()
	return svpi.Get(d, name, password)
}

func (o *DefaultOperations) Save(path, name, value string, keyHint []byte) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return svpi.NewPasswordManager(m).SavePassword(name, value, keyHint)
}

func (o *DefaultOperations) Remove(path, name string) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return m.Remove(name)
}

func (o *DefaultOperations) Rename(path, oldName, newName string) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return m.Rename(oldName, newName)
}

func (o *DefaultOperations) SetType(path, name string, t svpi.DataType) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return m.SetType(name, t)
}

func (o *DefaultOperations) Optimize(path string) (uint32, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return 0, err
	}
	return m.OptimizeSegments()
}

func (o *DefaultOperations) Resize(path string, newSize *uint32) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return m.ResizeMemory(newSize)
}

func (o *DefaultOperations) SetMasterPassword(path string, password []byte) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return svpi.NewPasswordManager(m).SetMasterPassword(password)
}

func (o *DefaultOperations) CheckMasterPassword(path string, password []byte) (bool, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return false, err
	}
	return svpi.NewPasswordManager(m).CheckMasterPassword(password), nil
}

func (o *DefaultOperations) AddEncryptionKey(path, name string, password []byte, level svpi.EncryptionLevel) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	pm := svpi.NewPasswordManager(m)
	if !pm.CheckMasterPassword(password) {
		return &svpi.VaultError{Op: "add_key", Err: svpi.ErrMasterPasswordInvalid}
	}
	return pm.AddEncryptionKey(password, name, password, level)
}

func (o *DefaultOperations) LinkKey(path, name string, password []byte) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return svpi.NewPasswordManager(m).LinkKey(name, password)
}

func (o *DefaultOperations) SyncEncryptionKeys(path string, master []byte) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	m, err := svpi.TryLoad(d)
	if err != nil {
		return err
	}
	return svpi.NewPasswordManager(m).SyncEncryptionKeys(master)
}

func (o *DefaultOperations) GetDump(path string) ([]byte, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()
	return svpi.GetDump(d)
}

func (o *DefaultOperations) SetDump(path string, data []byte) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return svpi.SetDump(d, data)
}

func (o *DefaultOperations) Export(path string) ([]string, error) {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()
	return svpi.Export(d)
}

func (o *DefaultOperations) Import(path string, lines []string) error {
	d, err := device.OpenExistingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return svpi.Import(d, lines)
}

// DefaultFileSystem implements FileSystem using the actual os package.
type DefaultFileSystem struct{}

func (d *DefaultFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) // #nosec G304 -- CLI tool intentionally reads user-specified paths
}

func (d *DefaultFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm) // #nosec G304 -- CLI tool intentionally writes user-specified paths
}

// NewCLI creates a new CLI instance with default dependencies.
func NewCLI() *CLI {
	return &CLI{
		Args:       os.Args,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Vault:      &DefaultOperations{},
		Terminal:   &DefaultTerminal{},
		FS:         &DefaultFileSystem{},
		ExitFunc:   os.Exit,
		getStdinFd: func() int { return int(os.Stdin.Fd()) },
	}
}

// Run executes the CLI with the given arguments.
func (c *CLI) Run() int {
	if len(c.Args) < 2 {
		c.showBanner()
		_, _ = fmt.Fprint(c.Stdout, usage)
		return 1
	}

	command := c.Args[1]

	switch command {
	case "init":
		return c.cmdInit()
	case "status":
		return c.cmdStatus()
	case "list":
		return c.cmdList()
	case "get":
		return c.cmdGet()
	case "save":
		return c.cmdSave()
	case "remove":
		return c.cmdRemove()
	case "rename":
		return c.cmdRename()
	case "set-type":
		return c.cmdSetType()
	case "optimize":
		return c.cmdOptimize()
	case "resize":
		return c.cmdResize()
	case "set-master-password":
		return c.cmdSetMasterPassword()
	case "check-master-password":
		return c.cmdCheckMasterPassword()
	case "add-key":
		return c.cmdAddKey()
	case "link-key":
		return c.cmdLinkKey()
	case "sync-keys":
		return c.cmdSyncKeys()
	case "dump":
		return c.cmdDump()
	case "restore":
		return c.cmdRestore()
	case "export":
		return c.cmdExport()
	case "import":
		return c.cmdImport()
	case "help", "--help", "-h":
		c.showBanner()
		_, _ = fmt.Fprint(c.Stdout, usage)
		return 0
	case "version", "--version", "-v":
		_, _ = fmt.Fprintf(c.Stdout, "svpi version %s\n", Version)
		return 0
	default:
		_, _ = fmt.Fprintf(c.Stderr, "Unknown command: %s\n\n", command)
		_, _ = fmt.Fprint(c.Stdout, usage)
		return 1
	}
}

func (c *CLI) showBanner() {
	_, _ = fmt.Fprint(c.Stdout, banner)
}

func (c *CLI) cmdInit() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi init <path> [size]")
		return 1
	}
	path := c.Args[2]
	size := int64(svpi.DefaultMemorySize)
	if len(c.Args) > 3 {
		s, err := ParseSize(c.Args[3])
		if err != nil {
			_, _ = fmt.Fprintf(c.Stderr, "Invalid size: %v\n", err)
			return 1
		}
		size = s
	}
	if err := c.Vault.Init(path, uint32(size), svpi.EncryptionLevelMedium); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to init vault: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Vault initialized at %s (%d bytes)\n", path, size)
	return 0
}

func (c *CLI) cmdStatus() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi status <path>")
		return 1
	}
	st, err := c.Vault.Status(c.Args[2])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to read status: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "initialized:          %v\n", st.Initialized)
	_, _ = fmt.Fprintf(c.Stdout, "architecture_version: %d\n", st.ArchitectureVersion)
	_, _ = fmt.Fprintf(c.Stdout, "architecture_matches: %v\n", st.ArchitectureMatches)
	_, _ = fmt.Fprintf(c.Stdout, "memory_size:          %d\n", st.MemorySize)
	_, _ = fmt.Fprintf(c.Stdout, "segment_count:        %d\n", st.SegmentCount)
	if st.InstanceID != "" {
		_, _ = fmt.Fprintf(c.Stdout, "instance_id:          %s\n", st.InstanceID)
	}
	return 0
}

func (c *CLI) cmdList() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi list <path>")
		return 1
	}
	segs, err := c.Vault.List(c.Args[2])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to list segments: %v\n", err)
		return 1
	}
	for _, s := range segs {
		enc := ""
		if s.PasswordFingerprint != "" {
			enc = " (encrypted)"
		}
		_, _ = fmt.Fprintf(c.Stdout, "%s\t%s\t%d bytes\t%s%s\n", s.Name, s.Type, s.Size, s.Fingerprint, enc)
	}
	return 0
}

func (c *CLI) cmdGet() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi get <path> <name>")
		return 1
	}
	path, name := c.Args[2], c.Args[3]
	res, err := c.Vault.Get(path, name, nil)
	if err != nil && svpi.ErrCode(err) == "password_required" {
		pw, perr := c.promptPassword("Enter key password: ", false)
		if perr != nil {
			_, _ = fmt.Fprintf(c.Stderr, "Error: %v\n", perr)
			return 1
		}
		defer ClearBytes(pw)
		res, err = c.Vault.Get(path, name, pw)
	}
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to read %s: %v\n", name, err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, res.Value)
	return 0
}

func (c *CLI) cmdSave() int {
	if len(c.Args) < 5 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi save <path> <name> <value>")
		return 1
	}
	path, name, value := c.Args[2], c.Args[3], c.Args[4]
	if err := c.Vault.Save(path, name, value, nil); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to save %s: %v\n", name, err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Saved %s\n", name)
	return 0
}

func (c *CLI) cmdRemove() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi remove <path> <name>")
		return 1
	}
	if err := c.Vault.Remove(c.Args[2], c.Args[3]); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to remove %s: %v\n", c.Args[3], err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Removed %s\n", c.Args[3])
	return 0
}

func (c *CLI) cmdRename() int {
	if len(c.Args) < 5 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi rename <path> <old> <new>")
		return 1
	}
	if err := c.Vault.Rename(c.Args[2], c.Args[3], c.Args[4]); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to rename: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Renamed")
	return 0
}

func (c *CLI) cmdSetType() int {
	if len(c.Args) < 5 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi set-type <path> <name> <type>")
		return 1
	}
	t, err := svpi.DataTypeFromString(c.Args[4])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Invalid type: %s\n", c.Args[4])
		return 1
	}
	if err := c.Vault.SetType(c.Args[2], c.Args[3], t); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to set type: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Type updated")
	return 0
}

func (c *CLI) cmdOptimize() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi optimize <path>")
		return 1
	}
	reclaimed, err := c.Vault.Optimize(c.Args[2])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to optimize: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Reclaimed %d bytes\n", reclaimed)
	return 0
}

func (c *CLI) cmdResize() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi resize <path> [size]")
		return 1
	}
	var newSize *uint32
	if len(c.Args) > 3 {
		s, err := ParseSize(c.Args[3])
		if err != nil {
			_, _ = fmt.Fprintf(c.Stderr, "Invalid size: %v\n", err)
			return 1
		}
		v := uint32(s)
		newSize = &v
	}
	if err := c.Vault.Resize(c.Args[2], newSize); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to resize: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Resized")
	return 0
}

func (c *CLI) cmdSetMasterPassword() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi set-master-password <path>")
		return 1
	}
	pw, err := c.promptPassword("Enter new master password: ", true)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ClearBytes(pw)
	if err := c.Vault.SetMasterPassword(c.Args[2], pw); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to set master password: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Master password set")
	return 0
}

func (c *CLI) cmdCheckMasterPassword() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi check-master-password <path>")
		return 1
	}
	pw, err := c.promptPassword("Enter master password: ", false)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ClearBytes(pw)
	ok, err := c.Vault.CheckMasterPassword(c.Args[2], pw)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to check master password: %v\n", err)
		return 1
	}
	if !ok {
		_, _ = fmt.Fprintln(c.Stdout, "invalid")
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "valid")
	return 0
}

func (c *CLI) cmdAddKey() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi add-key <path> <name>")
		return 1
	}
	pw, err := c.promptPassword("Enter master password: ", false)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ClearBytes(pw)
	if err := c.Vault.AddEncryptionKey(c.Args[2], c.Args[3], pw, svpi.EncryptionLevelMedium); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to add key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Key %s added\n", c.Args[3])
	return 0
}

func (c *CLI) cmdLinkKey() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi link-key <path> <name>")
		return 1
	}
	pw, err := c.promptPassword("Enter key password: ", false)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ClearBytes(pw)
	if err := c.Vault.LinkKey(c.Args[2], c.Args[3], pw); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to link key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Linked")
	return 0
}

func (c *CLI) cmdSyncKeys() int {
	if len(c.Args) < 3 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi sync-keys <path>")
		return 1
	}
	pw, err := c.promptPassword("Enter master password: ", false)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ClearBytes(pw)
	if err := c.Vault.SyncEncryptionKeys(c.Args[2], pw); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to sync keys: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Synced")
	return 0
}

func (c *CLI) cmdDump() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi dump <path> <out-file>")
		return 1
	}
	data, err := c.Vault.GetDump(c.Args[2])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to dump: %v\n", err)
		return 1
	}
	if err := c.FS.WriteFile(c.Args[3], data, 0600); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to write dump file: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Wrote %d bytes to %s\n", len(data), c.Args[3])
	return 0
}

func (c *CLI) cmdRestore() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi restore <path> <in-file>")
		return 1
	}
	data, err := c.FS.ReadFile(c.Args[3])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to read dump file: %v\n", err)
		return 1
	}
	if err := c.Vault.SetDump(c.Args[2], data); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to restore: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Restored")
	return 0
}

func (c *CLI) cmdExport() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi export <path> <out-file>")
		return 1
	}
	lines, err := c.Vault.Export(c.Args[2])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to export: %v\n", err)
		return 1
	}
	data := []byte(strings.Join(lines, "\n"))
	if len(data) > 0 {
		data = append(data, '\n')
	}
	if err := c.FS.WriteFile(c.Args[3], data, 0600); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to write export file: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(c.Stdout, "Exported %d segments to %s\n", len(lines), c.Args[3])
	return 0
}

func (c *CLI) cmdImport() int {
	if len(c.Args) < 4 {
		_, _ = fmt.Fprintln(c.Stdout, "Usage: svpi import <path> <in-file>")
		return 1
	}
	data, err := c.FS.ReadFile(c.Args[3])
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to read import file: %v\n", err)
		return 1
	}
	lines := strings.Split(string(data), "\n")
	if err := c.Vault.Import(c.Args[2], lines); err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Failed to import: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(c.Stdout, "Imported")
	return 0
}

// promptPassword prompts for a password with hidden input, optionally
// requiring a confirmation match.
func (c *CLI) promptPassword(prompt string, confirm bool) ([]byte, error) {
	_, _ = fmt.Fprint(c.Stdout, prompt)

	fd := c.stdinFd
	if c.getStdinFd != nil {
		fd = c.getStdinFd()
	}

	password, err := c.Terminal.ReadPassword(fd)
	_, _ = fmt.Fprintln(c.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if confirm {
		_, _ = fmt.Fprint(c.Stdout, "Confirm password: ")
		confirmation, err := c.Terminal.ReadPassword(fd)
		_, _ = fmt.Fprintln(c.Stdout)
		if err != nil {
			return nil, fmt.Errorf("failed to read confirmation: %w", err)
		}
		if string(password) != string(confirmation) {
			return nil, fmt.Errorf("passwords do not match")
		}
	}

	return password, nil
}

// ParseSize parses a size string like "1M" into bytes (exported for
// testing).
func ParseSize(s string) (int64, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty size")
	}

	suffix := s[len(s)-1]
	var multiplier int64 = 1

	valueStr := s
	switch suffix {
	case 'K', 'k':
		multiplier = 1024
		valueStr = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		valueStr = s[:len(s)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		valueStr = s[:len(s)-1]
	}

	var value int64
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid size value: %s", s)
	}

	return value * multiplier, nil
}

// ClearBytes securely clears a byte slice (exported for testing).
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
