package util

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(name string, arguments map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = arguments
	return req
}

func TestAdaptLegacyHandlerPassesArguments(t *testing.T) {
	var seen map[string]interface{}
	handler := AdaptLegacyHandler(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		seen = arguments
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := handler(context.Background(), request("t", map[string]interface{}{"text": "hi"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "hi", seen["text"])

	_, err = handler(context.Background(), request("t", nil))
	require.NoError(t, err)
	assert.NotNil(t, seen)
}

func TestErrorGuard(t *testing.T) {
	failing := ErrorGuard(AdaptLegacyHandler(func(map[string]interface{}) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	}))
	result, err := failing(context.Background(), request("failing", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	panicking := ErrorGuard(AdaptLegacyHandler(func(map[string]interface{}) (*mcp.CallToolResult, error) {
		panic("bad input")
	}))
	result, err = panicking(context.Background(), request("panicking", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
