package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/athapong/depnode/prompts"
	"github.com/athapong/depnode/tools"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(*envFile); err != nil {
		logrus.WithError(err).Warnf("Error loading env file %s", *envFile)
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"depnode",
		"1.0.0",
		server.WithLogging(),
		server.WithPromptCapabilities(true),
	)

	tools.RegisterToolManagerTool(mcpServer)

	if tools.IsEnabled("generate") {
		tools.RegisterGenerateTool(mcpServer)
	}

	if tools.IsEnabled("spacy") {
		tools.RegisterSpacyTool(mcpServer)
	}

	if tools.IsEnabled("tokenize") {
		tools.RegisterTokenizeTool(mcpServer)
	}

	prompts.RegisterDependencyPrompts(mcpServer)

	if err := server.ServeStdio(mcpServer); err != nil {
		panic(fmt.Sprintf("Server error: %v", err))
	}
}
