package depnode

// TreeNode is an emitted node placed in a forest for rendering
type TreeNode struct {
	Node
	Subtree []*TreeNode `json:"children,omitempty"`
}

// BuildForest arranges emitted nodes into trees following their children lists.
//
// Roots are nodes no other node lists as a child. Child ids without an emitted node are
// skipped. Edges are not required to form a tree, so each node is placed once: a depth-first
// walk cuts edges back to visited nodes, and nodes only reachable through a cycle become roots.
func BuildForest(nodes []Node) []*TreeNode {
	byID := make(map[int]*Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	isChild := make(map[int]bool)
	for _, n := range nodes {
		for _, child := range n.Children {
			if child != n.ID {
				isChild[child] = true
			}
		}
	}

	visited := make(map[int]bool, len(nodes))
	forest := make([]*TreeNode, 0)

	for _, n := range nodes {
		if !isChild[n.ID] && !visited[n.ID] {
			forest = append(forest, dfs(n.ID, byID, visited))
		}
	}

	// Whatever is left hangs off a cycle with no way in.
	for _, n := range nodes {
		if !visited[n.ID] {
			forest = append(forest, dfs(n.ID, byID, visited))
		}
	}

	return forest
}

func dfs(id int, byID map[int]*Node, visited map[int]bool) *TreeNode {
	visited[id] = true
	tn := &TreeNode{Node: *byID[id]}

	for _, child := range tn.Children {
		if visited[child] {
			continue
		}
		if _, ok := byID[child]; !ok {
			continue
		}
		tn.Subtree = append(tn.Subtree, dfs(child, byID, visited))
	}
	return tn
}

// Depth returns the number of levels in the tree rooted at t
func (t *TreeNode) Depth() int {
	deepest := 0
	for _, child := range t.Subtree {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Size returns the number of nodes in the tree rooted at t
func (t *TreeNode) Size() int {
	size := 1
	for _, child := range t.Subtree {
		size += child.Size()
	}
	return size
}
