package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/athapong/depnode/pkg/processors"
	"github.com/athapong/depnode/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

// GenerationOutput is the JSON body returned by the generation tools
type GenerationOutput struct {
	Document *annotation.Document `json:"document"`
	Result   *depnode.Result      `json:"result"`
}

// RegisterGenerateTool registers the dependency node generation tool with the MCP server
func RegisterGenerateTool(s *server.MCPServer) {
	tool := mcp.NewTool("generate_dependency_nodes",
		mcp.WithDescription("Create DependencyTreeNode annotations for an annotated document. Every token gets one node; each dependency edge sets the target's category and adds it to the source's children. Returns the document with the new annotations and run statistics."),
		mcp.WithString("document",
			mcp.Required(),
			mcp.Description("Annotated document JSON: {\"id\", \"content\", \"annotations\": [{\"id\", \"type\", \"start\", \"end\", \"features\"}]}"),
		),
		mcp.WithString("token_type",
			mcp.Description("Annotation type treated as a token (default: Token)"),
		),
		mcp.WithString("dependencies_feature",
			mcp.Description("Token feature holding the dependency relations (default: dependencies)"),
		),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(generateHandler)))
}

// RegisterSpacyTool registers the spaCy conversion tool with the MCP server
func RegisterSpacyTool(s *server.MCPServer) {
	tool := mcp.NewTool("parse_spacy_dependencies",
		mcp.WithDescription("Convert spaCy token JSON ({\"text\", \"tokens\": [[{\"id\", \"head\", \"dep\", \"idx\", \"text\", ...}]]}) into an annotated document and create its dependency tree nodes."),
		mcp.WithString("spacy_json",
			mcp.Required(),
			mcp.Description("spaCy document JSON with sentence-grouped tokens"),
		),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(spacyHandler)))
}

// RegisterTokenizeTool registers the text tokenizer tool with the MCP server
func RegisterTokenizeTool(s *server.MCPServer) {
	tool := mcp.NewTool("tokenize_text",
		mcp.WithDescription("Tokenize and POS-tag plain text into an annotated document of Token annotations, ready for generate_dependency_nodes once relations are attached."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain text to tokenize"),
		),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(tokenizeHandler)))
}

func generateHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	document, ok := arguments["document"].(string)
	if !ok || document == "" {
		return mcp.NewToolResultError("document must be a non-empty string"), nil
	}
	tokenType, _ := arguments["token_type"].(string)
	depFeature, _ := arguments["dependencies_feature"].(string)

	out, err := GenerateDependencyNodes(document, tokenType, depFeature)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func spacyHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	spacyJSON, ok := arguments["spacy_json"].(string)
	if !ok || spacyJSON == "" {
		return mcp.NewToolResultError("spacy_json must be a non-empty string"), nil
	}

	out, err := ParseSpacyDependencies(spacyJSON)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func tokenizeHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	text, ok := arguments["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text must be a non-empty string"), nil
	}

	out, err := TokenizeText(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// GenerateDependencyNodes decodes an annotated document, runs the generator over it
// and returns the document with its new nodes plus the run result as JSON.
func GenerateDependencyNodes(documentJSON, tokenType, depFeature string) (string, error) {
	var doc annotation.Document
	if err := json.Unmarshal([]byte(documentJSON), &doc); err != nil {
		return "", errors.Wrap(err, "invalid document JSON")
	}
	if doc.Annotations == nil {
		return "", errors.Wrap(depnode.ErrMissingInput, "document has no annotations")
	}

	opts := []depnode.Option{}
	if tokenType != "" {
		opts = append(opts, depnode.WithTokenType(tokenType))
	}
	if depFeature != "" {
		opts = append(opts, depnode.WithDependenciesFeature(depFeature))
	}

	result, err := depnode.NewGenerator(opts...).Execute(&doc)
	if err != nil {
		return "", err
	}
	return marshalOutput(&doc, result)
}

// ParseSpacyDependencies converts spaCy JSON into a document and generates its nodes
func ParseSpacyDependencies(spacyJSON string) (string, error) {
	doc, err := processors.NewSpacyProcessor().Process(context.Background(), []byte(spacyJSON), nil)
	if err != nil {
		return "", err
	}

	result, err := depnode.NewGenerator().Execute(doc)
	if err != nil {
		return "", err
	}
	return marshalOutput(doc, result)
}

// TokenizeText returns the annotated document built from plain text
func TokenizeText(text string) (string, error) {
	doc, err := processors.NewTextProcessor().Process(context.Background(), []byte(text), nil)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(data), nil
}

func marshalOutput(doc *annotation.Document, result *depnode.Result) (string, error) {
	data, err := json.MarshalIndent(GenerationOutput{Document: doc, Result: result}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
