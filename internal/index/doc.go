// Package index generates index sequences: the selection and reordering
// plans consumed by seq.Order.
//
// Three generators exist:
//
//   - [Arithmetic]: start, start+step, ... up to (not including) end
//   - [Repeat]: one value repeated count times
//   - [MaskFilter]: positions of the set bits of a [Mask]
//
// Index sequences are plain data. They may repeat or skip positions and may
// hold negative values; resolving them against a sequence (and rejecting
// out-of-range entries) is the consumer's job.
//
// Generators never cap their output. A request that would not terminate
// (zero step, step pointing away from end, end not reachable by whole
// steps) is rejected up front with an ir.ErrCodeNonTerminating error.
package index
