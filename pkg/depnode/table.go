package depnode

import (
	"github.com/athapong/depnode/pkg/annotation"
)

// DefaultCategory is the category of a node no edge has targeted yet
const DefaultCategory = "ROOT"

// Node is a synthesized dependency tree node
type Node struct {
	ID       int              `json:"id"`
	Category string           `json:"cat"`
	Span     *annotation.Span `json:"span,omitempty"`
	Children []int            `json:"consists"`
	TokenID  int              `json:"token_id"`
}

// Resolved reports whether the node's own token has been visited
func (n *Node) Resolved() bool {
	return n.Span != nil
}

// Table maps token ids to their nodes for a single run.
// It is not safe for concurrent use.
type Table struct {
	alloc *Allocator
	nodes map[int]*Node
	order []int
}

// NewTable creates an empty table drawing ids from alloc
func NewTable(alloc *Allocator) *Table {
	return &Table{
		alloc: alloc,
		nodes: make(map[int]*Node),
		order: make([]int, 0),
	}
}

// GetOrCreate returns the node for tokenID, allocating a ROOT node on first use.
// created reports whether the node was allocated by this call.
func (t *Table) GetOrCreate(tokenID int) (node *Node, created bool) {
	if node, ok := t.nodes[tokenID]; ok {
		return node, false
	}

	node = &Node{
		ID:       t.alloc.Next(),
		Category: DefaultCategory,
		Children: []int{},
		TokenID:  tokenID,
	}
	t.nodes[tokenID] = node
	t.order = append(t.order, tokenID)
	return node, true
}

// Each calls fn for every node in creation order
func (t *Table) Each(fn func(tokenID int, node *Node)) {
	for _, tokenID := range t.order {
		fn(tokenID, t.nodes[tokenID])
	}
}

// Len returns the number of nodes in the table
func (t *Table) Len() int {
	return len(t.nodes)
}
