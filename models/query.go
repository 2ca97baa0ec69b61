package models

import "sort"

// FindDepartment returns the department with the given id.
func (ds *Dataset) FindDepartment(id string) (*Department, bool) {
	if ds == nil {
		return nil, false
	}
	for i := range ds.Departments {
		if ds.Departments[i].ID == id {
			return &ds.Departments[i], true
		}
	}
	return nil, false
}

// DepartmentIDs returns the department ids in dataset order.
func (ds *Dataset) DepartmentIDs() []string {
	if ds == nil {
		return nil
	}
	ids := make([]string, 0, len(ds.Departments))
	for _, d := range ds.Departments {
		ids = append(ids, d.ID)
	}
	return ids
}

// SortedDepartments returns a copy of the departments ordered by name.
func (ds *Dataset) SortedDepartments() []Department {
	if ds == nil {
		return nil
	}
	out := make([]Department, len(ds.Departments))
	copy(out, ds.Departments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindNode returns the node with the given id.
func FindNode(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// FilterNodes returns the nodes that satisfy the predicate.
func FilterNodes(nodes []*Node, keep func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// NodesByCategory returns the nodes tagged with any of the given categories.
func NodesByCategory(nodes []*Node, categories ...Category) []*Node {
	return FilterNodes(nodes, func(n *Node) bool {
		for _, c := range categories {
			if n.Category == c {
				return true
			}
		}
		return false
	})
}

// CountByCategory tallies nodes per category.
func CountByCategory(nodes []*Node) map[Category]int {
	counts := make(map[Category]int)
	for _, n := range nodes {
		counts[n.Category]++
	}
	return counts
}
