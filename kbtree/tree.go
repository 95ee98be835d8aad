// Package kbtree reconstructs the knowledge base's category hierarchy from
// the flat parent-referencing list the API returns, and fixes the
// deterministic visitation order the exporter relies on for reproducible
// output.
package kbtree

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDanglingParent = errors.New("kbtree: parent reference does not resolve")
	ErrCycle          = errors.New("kbtree: category ancestry forms a cycle")
)

// DanglingParentError identifies a category whose parent_id was never fetched.
type DanglingParentError struct {
	ID       int
	ParentID int
}

func (e *DanglingParentError) Error() string {
	return fmt.Sprintf("%s: category %d references missing parent %d", ErrDanglingParent.Error(), e.ID, e.ParentID)
}

func (e *DanglingParentError) Unwrap() error { return ErrDanglingParent }

// CycleError identifies a category whose ancestor chain revisits itself.
type CycleError struct {
	ID int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: detected at category %d", ErrCycle.Error(), e.ID)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Category is one node of the flat input list. Slug must already be
// resolved; the builder never derives names.
type Category struct {
	ID       int
	ParentID *int
	Slug     string
}

// Node is a placed category: its slug path is root-first and includes the
// node's own slug.
type Node struct {
	Category
	Path  []string
	Depth int
}

// Tree is the reconstructed forest. Categories are held in an arena keyed
// by id; parent and child relationships are id lookups, never pointers.
type Tree struct {
	nodes    map[int]*Node
	roots    []int
	children map[int][]int
}

// Build validates the flat list and assembles the forest. A dangling parent
// reference or an ancestry cycle is an integrity violation: the offending
// category id is named and no partial tree is returned, since silently
// dropping categories would break the export-everything guarantee.
func Build(categories []Category) (*Tree, error) {
	arena := make(map[int]*Node, len(categories))
	for _, category := range categories {
		arena[category.ID] = &Node{Category: category}
	}

	ids := make([]int, 0, len(arena))
	for id := range arena {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	// Walk every ancestry chain up to its root so both integrity failures
	// surface with a deterministic, smallest-id diagnostic.
	for _, id := range ids {
		seen := map[int]struct{}{id: {}}
		current := arena[id]
		for current.ParentID != nil {
			parentID := *current.ParentID
			parent, ok := arena[parentID]
			if !ok {
				return nil, &DanglingParentError{ID: current.ID, ParentID: parentID}
			}
			if _, revisited := seen[parentID]; revisited {
				return nil, &CycleError{ID: id}
			}
			seen[parentID] = struct{}{}
			current = parent
		}
	}

	tree := &Tree{
		nodes:    arena,
		children: make(map[int][]int, len(arena)),
	}
	for _, id := range ids {
		node := arena[id]
		if node.ParentID == nil {
			tree.roots = append(tree.roots, id)
			continue
		}
		tree.children[*node.ParentID] = append(tree.children[*node.ParentID], id)
	}
	// ids were iterated ascending, so roots and child lists are already
	// ordered; keep the sort explicit as the determinism contract.
	sort.Ints(tree.roots)
	for parent := range tree.children {
		sort.Ints(tree.children[parent])
	}

	for _, root := range tree.roots {
		tree.assignPaths(root, nil)
	}

	return tree, nil
}

func (t *Tree) assignPaths(id int, prefix []string) {
	node := t.nodes[id]
	path := make([]string, 0, len(prefix)+1)
	path = append(path, prefix...)
	path = append(path, node.Slug)
	node.Path = path
	node.Depth = len(path) - 1

	for _, child := range t.children[id] {
		t.assignPaths(child, path)
	}
}

// Ordered returns every category exactly once in depth-first order: roots
// by ascending id, children by ascending id, parents always before their
// descendants.
func (t *Tree) Ordered() []*Node {
	ordered := make([]*Node, 0, len(t.nodes))
	var visit func(id int)
	visit = func(id int) {
		ordered = append(ordered, t.nodes[id])
		for _, child := range t.children[id] {
			visit(child)
		}
	}
	for _, root := range t.roots {
		visit(root)
	}
	return ordered
}

// Path returns the root-first slug path for id, or nil when unknown.
func (t *Tree) Path(id int) []string {
	node, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return node.Path
}

// Len returns the number of categories in the forest.
func (t *Tree) Len() int {
	return len(t.nodes)
}
