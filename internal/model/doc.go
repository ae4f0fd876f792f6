// Package model defines the domain types and value objects for the
// iconbatch CLI.
//
// This package contains pure data structures with no external dependencies.
// Jobs, texture variants and icon results are transient: they are built from
// directory scans at the start of a run and discarded when it ends. The only
// durable artifact of a run besides the icon PNGs is the item_texture.json
// manifest, which is owned by the manifest package.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
