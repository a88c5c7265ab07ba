package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/kindseq/internal/ir"
)

// CycleError describes a sequence that contains itself, directly or through
// other sequences. Such a sequence has no finite expansion.
type CycleError struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles finds reference cycles among sequence declarations.
//
// The algorithm:
//  1. Build a sequence → referenced sequences graph (atom refs are leaves)
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1, or a self-loop, as a cycle
//
// Nodes and edges are visited in sorted order so the report is stable.
// An acyclic program returns an empty list.
func AnalyzeCycles(prog *ir.Program) []CycleError {
	if len(prog.Sequences) == 0 {
		return []CycleError{}
	}

	graph := buildReferenceGraph(prog)
	sccs := tarjanSCC(graph)

	cycles := []CycleError{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}

	slices.SortFunc(cycles, func(a, b CycleError) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return cycles
}

// referenceGraph maps sequence name → sequence names it references.
type referenceGraph map[string][]string

func buildReferenceGraph(prog *ir.Program) referenceGraph {
	graph := make(referenceGraph)

	for name, decl := range prog.Sequences {
		edges := []string{}
		for _, ref := range decl.Kinds {
			if _, isSeq := prog.Sequences[ref]; isSeq {
				edges = append(edges, ref)
			}
		}
		slices.Sort(edges)
		graph[name] = slices.Compact(edges)
	}

	return graph
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range slices.Sorted(maps.Keys(graph)) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToCycle(scc []string, graph referenceGraph) CycleError {
	if len(scc) == 1 {
		name := scc[0]
		return CycleError{
			Path:    []string{name, name},
			Message: fmt.Sprintf("sequence %s contains itself", name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleError{
		Path:    path,
		Message: fmt.Sprintf("sequence reference cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath walks edges inside the SCC from its first (smallest)
// member until it returns there.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
