// Package ptyprocess runs a child process attached to a pseudo-terminal
// and exposes its lifecycle and output as a small, composable API: spawn
// once, read stdout/stderr/PTY as byte streams, and suspend, resume,
// signal, or wait for the process to exit.
//
// A Process is created with New and started with Run; after Run returns
// nil, signaling methods and byte-stream accessors become usable. Each
// Process wraps exactly one spawn attempt — create a new Process to run
// another command.
package ptyprocess
