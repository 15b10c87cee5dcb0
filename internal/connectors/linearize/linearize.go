// Package linearize turns parent-pointer message graphs into one ordered
// sequence.
package linearize

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle indicates a corrupted graph where a walk revisits a node.
var ErrCycle = errors.New("linearize: cycle detected")

// ParentFunc returns the parent of id, or false at the root.
type ParentFunc func(id string) (string, bool)

// ChildFunc returns the active child of id, or false at the leaf.
type ChildFunc func(id string) (string, bool)

// WalkToRoot follows parents from leaf and returns the path root first.
func WalkToRoot(leaf string, parent ParentFunc) ([]string, error) {
	visited := make(map[string]bool)
	var path []string
	for id, ok := leaf, true; ok; id, ok = parent(id) {
		if visited[id] {
			return nil, fmt.Errorf("%w at %q", ErrCycle, id)
		}
		visited[id] = true
		path = append(path, id)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// WalkFromRoot follows active children from root and returns the path.
func WalkFromRoot(root string, child ChildFunc) ([]string, error) {
	visited := make(map[string]bool)
	var path []string
	for id, ok := root, true; ok; id, ok = child(id) {
		if visited[id] {
			return nil, fmt.Errorf("%w at %q", ErrCycle, id)
		}
		visited[id] = true
		path = append(path, id)
	}
	return path, nil
}

// Timed is a node that can only be ordered by creation time.
type Timed struct {
	ID string

	// Created is seconds since the epoch; zero when unknown.
	Created float64
}

// ByCreation orders nodes by creation time, keeping input order for ties.
// It is the fallback when a graph has no designated leaf.
func ByCreation(nodes []Timed) []string {
	sorted := make([]Timed, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created < sorted[j].Created
	})

	ids := make([]string, len(sorted))
	for i, n := range sorted {
		ids[i] = n.ID
	}
	return ids
}
