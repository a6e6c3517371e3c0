// Package workspace manages the transient build directory the generator
// program is compiled in.
//
// The directory has a fixed name under the working directory and is reused
// across runs: every run overwrites the generated files and rebuilds, so the
// toolchain's own incremental cache is the only state that carries over.
package workspace
