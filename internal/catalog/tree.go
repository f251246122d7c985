package catalog

import "sort"

// BuildTree orders departments depth-first, siblings by sort order, name and id.
// Nodes whose parent is missing from depts are treated as roots.
func BuildTree(depts []*Department) []TreeNode {
	byID := make(map[int64]bool, len(depts))
	for _, d := range depts {
		byID[d.ID] = true
	}

	children := make(map[int64][]*Department)
	var roots []*Department
	for _, d := range depts {
		if d.ParentID == nil || !byID[*d.ParentID] {
			roots = append(roots, d)
			continue
		}
		children[*d.ParentID] = append(children[*d.ParentID], d)
	}

	less := func(list []*Department) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := list[i], list[j]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		}
	}

	nodes := make([]TreeNode, 0, len(depts))
	var walk func(list []*Department, depth int)
	walk = func(list []*Department, depth int) {
		sort.SliceStable(list, less(list))
		for _, d := range list {
			nodes = append(nodes, TreeNode{Department: *d, Depth: depth})
			walk(children[d.ID], depth+1)
		}
	}
	walk(roots, 0)
	return nodes
}

// Ancestors maps every department id to itself and all of its ancestors.
func Ancestors(depts []*Department) map[int64][]int64 {
	parent := make(map[int64]*int64, len(depts))
	for _, d := range depts {
		parent[d.ID] = d.ParentID
	}

	out := make(map[int64][]int64, len(depts))
	for _, d := range depts {
		chain := []int64{d.ID}
		seen := map[int64]bool{d.ID: true}
		for p := parent[d.ID]; p != nil && !seen[*p]; p = parent[*p] {
			chain = append(chain, *p)
			seen[*p] = true
		}
		out[d.ID] = chain
	}
	return out
}
