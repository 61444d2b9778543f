package visualizer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chaseNodes() (*annotation.Document, []depnode.Node) {
	doc := annotation.NewDocument("dogs", "Dogs chase cats")
	doc.Name = "dogs.txt"

	nodes := []depnode.Node{
		{ID: 10, Category: "nsubj", Span: &annotation.Span{Start: 0, End: 4}, Children: []int{}, TokenID: 1},
		{ID: 11, Category: "ROOT", Span: &annotation.Span{Start: 5, End: 10}, Children: []int{10, 12}, TokenID: 2},
		{ID: 12, Category: "dobj", Span: &annotation.Span{Start: 11, End: 15}, Children: []int{}, TokenID: 3},
	}
	return doc, nodes
}

func TestBuildTree(t *testing.T) {
	doc, nodes := chaseNodes()

	tree, forest := BuildTree(doc, nodes)
	require.Len(t, forest, 1)

	assert.Equal(t, "dogs.txt", tree.Text)
	require.Len(t, tree.Children, 1)

	verb := tree.Children[0]
	assert.Equal(t, "chase", verb.Text)
	assert.Equal(t, "ROOT", verb.Category)
	require.Len(t, verb.Children, 2)
	assert.Equal(t, "Dogs", verb.Children[0].Text)
	assert.Equal(t, "cats", verb.Children[1].Text)
}

func TestRenderEscapesText(t *testing.T) {
	doc := annotation.NewDocument("x", "</script><b>")
	nodes := []depnode.Node{
		{ID: 2, Category: "ROOT", Span: &annotation.Span{Start: 0, End: 12}, Children: []int{}, TokenID: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, NewD3Visualizer("unused").Render(&buf, doc, nodes))

	html := buf.String()
	assert.Contains(t, html, "Nodes: 1, Trees: 1, Depth: 1")
	assert.NotContains(t, html, `"text":"</script>`)
	assert.Contains(t, html, `"cat":"ROOT"`)
}

func TestVisualizeWritesFile(t *testing.T) {
	doc, nodes := chaseNodes()
	out := filepath.Join(t.TempDir(), "viz", "tree.html")

	require.NoError(t, NewD3Visualizer(out).Visualize(doc, nodes))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dependency Tree: dogs.txt")
	assert.Contains(t, string(data), "Nodes: 3, Trees: 1, Depth: 2")
}
