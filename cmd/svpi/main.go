// Copyright (c) 2025 Jeremy Hahn
//
// SPDX-License-Identifier: Apache-2.0

package main

// Version is set at build time via -ldflags
var Version = "dev"

const banner = `
SVPI Vault Manager
`

const usage = `
USAGE:
    svpi <command> [options]

COMMANDS:
    init <path> [size]                  Format a new vault at path (default size 1MiB)
    status <path>                       Report whether a vault is present and its version
    list <path>                         List active segments (excludes encryption keys)
    get <path> <name>                   Read and print a segment's decoded value
    save <path> <name> <value>          Save a value, inferring its encoding
    remove <path> <name>                Delete a segment
    rename <path> <old> <new>           Rename a segment
    set-type <path> <name> <type>       Change a segment's declared data type
    optimize <path>                     Compact deleted slots and reclaim space
    resize <path> [size]                Resize the vault (omit size for the minimum)
    set-master-password <path>          Set or change the master password
    check-master-password <path>        Verify a master password against the vault
    add-key <path> <name>               Derive and store a named encryption key
    link-key <path> <name>              Attach an existing key to an already-saved secret
    sync-keys <path>                    Re-derive and relink every encryption key
    dump <path> <out-file>              Write a raw vault image to out-file
    restore <path> <in-file>            Overwrite the vault with a raw image from in-file
    export <path> <out-file>            Write every segment as name:type:value lines to out-file
    import <path> <in-file>             Load name:type:value lines from in-file as segments
    help                                Show this help message
    version                             Show version information

EXAMPLES:
    svpi init vault.svpi 1M
    svpi save vault.svpi wifi-password hunter2
    svpi get vault.svpi wifi-password
    svpi set-master-password vault.svpi
    svpi add-key vault.svpi email-key
    svpi save vault.svpi email-password s3cr3t
`

func main() {
	cli := NewCLI()
	code := cli.Run()
	if code != 0 {
		cli.ExitFunc(code)
	}
}
