// Package ir provides the descriptor types shared by every kindseq package.
//
// This package contains the data model only. All other internal packages
// import ir; ir imports nothing internal. This keeps the descriptors the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Descriptors are immutable: constructors copy their inputs and
//     accessors return copies
//   - Equality is structural (Equal), never identity based
//   - A Sequence is itself a Kind so sequences may nest
//   - Contract violations are reported as *ContractError with a stable Code
package ir
