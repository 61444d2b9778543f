package tools

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/athapong/depnode/util"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// EnableToolsEnv lists the enabled tool groups, comma separated. Empty enables all of them.
const EnableToolsEnv = "ENABLE_TOOLS"

// ToolGroups maps each tool group name to its description
var ToolGroups = map[string]string{
	"tool_manager": "Tool management",
	"generate":     "Dependency node generation for annotated documents",
	"spacy":        "spaCy dependency parse conversion",
	"tokenize":     "Plain text tokenization and POS tagging",
}

// IsEnabled reports whether the tool group is enabled by ENABLE_TOOLS
func IsEnabled(group string) bool {
	enabled := enabledTools()
	return enabled.Cardinality() == 0 || enabled.Contains(group)
}

func enabledTools() mapset.Set[string] {
	enabled := mapset.NewSet[string]()
	for _, name := range strings.Split(os.Getenv(EnableToolsEnv), ",") {
		if name = strings.TrimSpace(name); name != "" {
			enabled.Add(name)
		}
	}
	return enabled
}

func RegisterToolManagerTool(s *server.MCPServer) {
	tool := mcp.NewTool("tool_manager",
		mcp.WithDescription("Manage MCP tools - enable or disable tools"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action to perform: list, enable, disable")),
		mcp.WithString("tool_name", mcp.Description("Tool name to enable/disable")),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(toolManagerHandler)))
}

func toolManagerHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	action, ok := arguments["action"].(string)
	if !ok {
		return mcp.NewToolResultError("action must be a string"), nil
	}

	enabled := enabledTools()

	switch action {
	case "list":
		response := "Available tools:\n"
		allEnabled := enabled.Cardinality() == 0

		names := make([]string, 0, len(ToolGroups))
		for name := range ToolGroups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			status := "disabled"
			if allEnabled || enabled.Contains(name) {
				status = "enabled"
			}
			response += fmt.Sprintf("- %s (%s) [%s]\n", name, ToolGroups[name], status)
		}
		response += "\n"

		// List enabled tools
		response += "Currently enabled tools:\n"
		if allEnabled {
			response += "All tools are enabled (ENABLE_TOOLS is empty)\n"
		} else {
			list := enabled.ToSlice()
			sort.Strings(list)
			for _, name := range list {
				response += fmt.Sprintf("- %s\n", name)
			}
		}
		return mcp.NewToolResultText(response), nil

	case "enable", "disable":
		toolName, ok := arguments["tool_name"].(string)
		if !ok || toolName == "" {
			return mcp.NewToolResultError("tool_name is required for enable/disable actions"), nil
		}
		if _, known := ToolGroups[toolName]; !known {
			return mcp.NewToolResultError(fmt.Sprintf("unknown tool: %s", toolName)), nil
		}

		if action == "enable" {
			enabled.Add(toolName)
		} else {
			if enabled.Cardinality() == 0 {
				for name := range ToolGroups {
					enabled.Add(name)
				}
			}
			enabled.Remove(toolName)
		}

		list := enabled.ToSlice()
		sort.Strings(list)
		os.Setenv(EnableToolsEnv, strings.Join(list, ","))

		return mcp.NewToolResultText(fmt.Sprintf("Successfully %sd tool: %s", action, toolName)), nil

	default:
		return mcp.NewToolResultError("Invalid action. Use 'list', 'enable', or 'disable'"), nil
	}
}
