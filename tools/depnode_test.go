package tools

import (
	"encoding/json"
	"testing"

	"github.com/athapong/depnode/pkg/depnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const annotatedDoc = `{
  "id": "chase",
  "content": "Dogs chase cats",
  "annotations": [
    {"id": 1, "type": "Token", "start": 0, "end": 4},
    {"id": 2, "type": "Token", "start": 5, "end": 10, "features": {
      "dependencies": [{"type": "nsubj", "targetId": 1}, {"type": "dobj", "targetId": 3}]
    }},
    {"id": 3, "type": "Token", "start": 11, "end": 15}
  ]
}`

func TestGenerateDependencyNodes(t *testing.T) {
	out, err := GenerateDependencyNodes(annotatedDoc, "", "")
	require.NoError(t, err)

	parsed := gjson.Parse(out)
	assert.Equal(t, int64(3), parsed.Get("result.base_id").Int())
	assert.Equal(t, int64(3), parsed.Get("result.nodes_emitted").Int())
	assert.Equal(t, int64(6), parsed.Get("document.annotations.#").Int())

	cats := parsed.Get(`document.annotations.#(type=="DependencyTreeNode")#.features.cat`)
	assert.ElementsMatch(t, []string{"nsubj", "ROOT", "dobj"}, toStrings(cats))
}

func TestGenerateDependencyNodesCustomType(t *testing.T) {
	out, err := GenerateDependencyNodes(annotatedDoc, "Word", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gjson.Get(out, "result.nodes_emitted").Int())
}

func TestGenerateDependencyNodesErrors(t *testing.T) {
	_, err := GenerateDependencyNodes(`{"id": `, "", "")
	assert.Error(t, err)

	_, err = GenerateDependencyNodes(`{"id": "x", "content": ""}`, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, depnode.ErrMissingInput)
}

func TestParseSpacyDependencies(t *testing.T) {
	out, err := ParseSpacyDependencies(`{"text": "Birds sing", "tokens": [[
		{"id": 0, "head": 1, "dep": "nsubj", "idx": 0, "text": "Birds"},
		{"id": 1, "head": 1, "dep": "ROOT", "idx": 6, "text": "sing"}
	]]}`)
	require.NoError(t, err)

	var decoded GenerationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.NotNil(t, decoded.Result)
	assert.Equal(t, 2, decoded.Result.NodesEmitted)
	assert.Equal(t, "Birds sing", decoded.Document.Content)
}

func TestTokenizeText(t *testing.T) {
	out, err := TokenizeText("Trees grow slowly.")
	require.NoError(t, err)

	tokens := gjson.Get(out, `annotations.#(type=="Token")#.features.string`)
	assert.Contains(t, toStrings(tokens), "Trees")
}

func TestHandlersRejectMissingArguments(t *testing.T) {
	result, err := generateHandler(map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = spacyHandler(map[string]interface{}{"spacy_json": 3})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = tokenizeHandler(map[string]interface{}{"text": ""})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = generateHandler(map[string]interface{}{"document": annotatedDoc})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func toStrings(r gjson.Result) []string {
	out := make([]string, 0)
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

func TestToolManager(t *testing.T) {
	t.Setenv(EnableToolsEnv, "")

	assert.True(t, IsEnabled("spacy"))

	result, err := toolManagerHandler(map[string]interface{}{"action": "disable", "tool_name": "spacy"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.False(t, IsEnabled("spacy"))
	assert.True(t, IsEnabled("generate"))

	result, err = toolManagerHandler(map[string]interface{}{"action": "enable", "tool_name": "spacy"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.True(t, IsEnabled("spacy"))

	result, err = toolManagerHandler(map[string]interface{}{"action": "enable", "tool_name": "jira"})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = toolManagerHandler(map[string]interface{}{"action": "list"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}
