// Package main hosts the pagewright CLI.
//
// The Cobra command tree exposes the reconstruction packages over local
// files: key-table decryption, key selection, request tokens, explicit
// scramble maps and the full manifest-driven pipeline. It resolves
// configuration and logging once per invocation so subcommands only wire
// inputs to the internal packages and render results.
package main
