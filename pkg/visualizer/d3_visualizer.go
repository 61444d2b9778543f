package visualizer

import (
	"bytes"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
)

// The HTML template for the D3.js tree layout
const d3Template = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        body {
            margin: 0;
            font-family: Arial, sans-serif;
        }
        #tree {
            width: 100%;
            height: 100vh;
            background-color: #f5f5f5;
        }
        .link {
            fill: none;
            stroke: #999;
            stroke-opacity: 0.6;
            stroke-width: 1.5px;
        }
        .node circle {
            stroke: #fff;
            stroke-width: 1.5px;
        }
        .node-label {
            font-size: 11px;
        }
        .node-cat {
            font-size: 9px;
            fill: #555;
        }
        .controls {
            position: absolute;
            top: 10px;
            left: 10px;
            background-color: rgba(255,255,255,0.8);
            padding: 10px;
            border-radius: 5px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
    </style>
</head>
<body>
    <div id="tree"></div>
    <div class="controls">
        <h3>{{.Title}}</h3>
        <p>Nodes: {{.NodeCount}}, Trees: {{.TreeCount}}, Depth: {{.Depth}}</p>
    </div>

    <script>
        // Tree data
        const treeData = {{.Tree}};

        const width = window.innerWidth;
        const height = window.innerHeight;

        const root = d3.hierarchy(treeData);
        d3.tree().nodeSize([70, 90])(root);

        const svg = d3.select("#tree")
            .append("svg")
            .attr("width", "100%")
            .attr("height", "100%")
            .call(d3.zoom().on("zoom", (event) => {
                g.attr("transform", event.transform);
            }));

        const g = svg.append("g")
            .attr("transform", "translate(" + width / 2 + ",60)");

        const categories = [...new Set(root.descendants().map(d => d.data.cat))];
        const colorScale = d3.scaleOrdinal(d3.schemeCategory10).domain(categories);

        g.append("g")
            .selectAll("path")
            .data(root.links())
            .enter()
            .append("path")
            .attr("class", "link")
            .attr("d", d3.linkVertical().x(d => d.x).y(d => d.y));

        const node = g.append("g")
            .selectAll("g")
            .data(root.descendants())
            .enter()
            .append("g")
            .attr("class", "node")
            .attr("transform", d => "translate(" + d.x + "," + d.y + ")");

        node.append("circle")
            .attr("r", 8)
            .attr("fill", d => d.depth === 0 ? "#333" : colorScale(d.data.cat));

        node.append("text")
            .attr("class", "node-label")
            .attr("dy", "-1em")
            .attr("text-anchor", "middle")
            .text(d => d.data.text);

        node.append("text")
            .attr("class", "node-cat")
            .attr("dy", "2em")
            .attr("text-anchor", "middle")
            .text(d => d.data.cat);

        // Node tooltip
        node.append("title")
            .text(d => d.data.id ? "#" + d.data.id + " token " + d.data.tokenId : d.data.text);
    </script>
</body>
</html>
`

// TreeData is one vertex of the rendered hierarchy
type TreeData struct {
	ID       int         `json:"id,omitempty"`
	TokenID  int         `json:"tokenId,omitempty"`
	Category string      `json:"cat"`
	Text     string      `json:"text"`
	Children []*TreeData `json:"children,omitempty"`
}

// D3Visualizer renders dependency node trees as a D3.js tree layout
type D3Visualizer struct {
	outputPath string
}

// NewD3Visualizer creates a new D3.js visualizer
func NewD3Visualizer(outputPath string) *D3Visualizer {
	return &D3Visualizer{
		outputPath: outputPath,
	}
}

// BuildTree arranges nodes under a single document vertex, one subtree per root
func BuildTree(doc *annotation.Document, nodes []depnode.Node) (*TreeData, []*depnode.TreeNode) {
	forest := depnode.BuildForest(nodes)

	root := &TreeData{
		Category: "DOCUMENT",
		Text:     doc.Name,
		Children: make([]*TreeData, 0, len(forest)),
	}
	if root.Text == "" {
		root.Text = doc.ID
	}
	for _, tree := range forest {
		root.Children = append(root.Children, convert(doc, tree))
	}
	return root, forest
}

func convert(doc *annotation.Document, tree *depnode.TreeNode) *TreeData {
	data := &TreeData{
		ID:       tree.ID,
		TokenID:  tree.TokenID,
		Category: tree.Category,
	}
	if tree.Span != nil {
		data.Text = doc.Text(*tree.Span)
	}
	for _, child := range tree.Subtree {
		data.Children = append(data.Children, convert(doc, child))
	}
	return data
}

// Render writes the HTML page for doc's nodes to w
func (v *D3Visualizer) Render(w io.Writer, doc *annotation.Document, nodes []depnode.Node) error {
	tmpl, err := template.New("d3").Parse(d3Template)
	if err != nil {
		return err
	}

	tree, forest := BuildTree(doc, nodes)
	depth := 0
	for _, t := range forest {
		if d := t.Depth(); d > depth {
			depth = d
		}
	}

	// html/template encodes Tree as a JSON literal inside the script block
	data := struct {
		Title     string
		Tree      *TreeData
		NodeCount int
		TreeCount int
		Depth     int
	}{
		Title:     "Dependency Tree: " + tree.Text,
		Tree:      tree,
		NodeCount: len(nodes),
		TreeCount: len(forest),
		Depth:     depth,
	}

	return tmpl.Execute(w, data)
}

// Visualize generates an HTML visualization of doc's dependency nodes at the output path
func (v *D3Visualizer) Visualize(doc *annotation.Document, nodes []depnode.Node) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(v.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := v.Render(&buf, doc, nodes); err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(v.outputPath, buf.Bytes(), 0644)
}
