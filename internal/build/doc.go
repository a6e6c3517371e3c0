// Package build materializes the generator workspace, compiles the generator
// with the external toolchain and runs the result.
//
// Generate runs four stages strictly in order and stops at the first failure
// without undoing earlier stages:
//
//  1. materialize: render and write the entry point and manifest
//  2. build: run the toolchain's build subcommand inside the workspace
//  3. verify: check that the expected artifact exists
//  4. execute: run the artifact from the original working directory
//
// Neither process invocation changes the current directory of litgen
// itself; each names its working directory explicitly.
package build
