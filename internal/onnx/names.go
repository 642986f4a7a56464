package onnx

import "strconv"

// NameGenerator hands out unique value names within one export.
//
// The first request for a base returns the base itself, later ones return
// base_1, base_2 and so on, skipping names that are already taken.
type NameGenerator struct {
	taken map[string]bool
	next  map[string]int
}

// NewNameGenerator creates an empty generator.
func NewNameGenerator() *NameGenerator {
	return &NameGenerator{taken: make(map[string]bool), next: make(map[string]int)}
}

// Generate returns a fresh name derived from base.
func (g *NameGenerator) Generate(base string) string {
	if !g.taken[base] {
		g.taken[base] = true
		return base
	}
	for {
		g.next[base]++
		name := base + "_" + strconv.Itoa(g.next[base])
		if !g.taken[name] {
			g.taken[name] = true
			return name
		}
	}
}

// Reserve marks name as taken. It reports false if it already was.
func (g *NameGenerator) Reserve(name string) bool {
	if g.taken[name] {
		return false
	}
	g.taken[name] = true
	return true
}

// Taken reports whether name has been handed out or reserved.
func (g *NameGenerator) Taken(name string) bool {
	return g.taken[name]
}
