// Package errors provides foundational, type-safe error primitives used across litgen.
//
// Every pipeline stage surfaces failures as ClassifiedError values so the CLI
// can map them to exit codes without string matching:
//
//   - CategoryNotFound: missing input document, local import or built artifact
//   - CategoryUnsupportedFormat: input extension not recognized
//   - CategoryNetwork: non-2xx response or transport error on a network import
//   - CategoryCommand: external process exited non-zero
//   - CategorySpawn: external process could not be started
//
// Example usage:
//
//	err := errors.NotFoundError("local import not found").
//		WithCause(os.ErrNotExist).
//		WithContext("path", path).
//		Build()
package errors
