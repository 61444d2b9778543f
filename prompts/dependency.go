package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterDependencyPrompts(s *server.MCPServer) {
	prompt := mcp.NewPrompt("explain_dependency_tree",
		mcp.WithPromptDescription("Explain the dependency tree of a sentence"),
		mcp.WithArgument("sentence", mcp.ArgumentDescription("The sentence whose dependency tree should be explained")),
	)
	s.AddPrompt(prompt, explainTreeHandler)
}

func explainTreeHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	sentence := request.Params.Arguments["sentence"]

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Dependency tree of %q", sentence),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Parse %q with spaCy, pass the result to parse_spacy_dependencies, then walk the DependencyTreeNode annotations from the ROOT node through each node's consists list and explain every cat label", sentence),
				},
			},
		},
	}, nil
}
