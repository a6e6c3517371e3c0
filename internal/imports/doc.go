// Package imports expands the import declarations of an extraction into
// source code.
//
// Local declarations are read in order on the calling goroutine. Network
// declarations of one document are fetched concurrently in an errgroup, and
// the first failure cancels the rest. Whatever the completion order, results
// are composed by declaration index. Imported documents may declare imports
// of their own; those are expanded depth-first in front of the importing
// document's source.
package imports
