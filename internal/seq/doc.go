// Package seq implements the sequence algebra over ir.Sequence descriptors.
//
// Every operation is a pure function: it takes descriptors and returns a new
// descriptor, never modifying its inputs. Contract violations are returned as
// *ir.ContractError; nothing is clamped or wrapped around silently except by
// [AtNormalized], which accepts negative positions by design.
//
// # Layers
//
// Access and reorder:
//
//   - [Size], [Head], [Tail], [At], [AtNormalized]
//   - [Order]: the single reorder primitive. Gathers At(s, i) for each i of
//     an index.Seq; result length is the index length, container is s's.
//
// Index-based operations (compute an index.Seq, then call Order):
//
//   - [Range], [Take], [Drop], [Reverse], [Repeat], [PopBack], [Select], [Filter]
//
// Structural operations:
//
//   - [PushBack], [PushFront], [PopFront], [Concat], [Append], [Join], [To]
//
// Higher-order operations:
//
//   - [Transform], [Fold]: mapping functions return a [Mapped] value that is
//     either [Resolved] or [Deferred]; Deferred results are always unwrapped
//   - [AllOf], [AnyOf], [NoneOf], [Count], [CountIf]
//
// Shape predicate:
//
//   - [IsInstance], [InstanceOf]
package seq
