package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/knitout/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResult struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Contents []struct {
			URI      string `json:"uri"`
			MIMEType string `json:"mimeType"`
			Text     string `json:"text"`
		} `json:"contents"`
		StructuredContent json.RawMessage `json:"structuredContent"`
		IsError           bool            `json:"isError"`
		Tools             []struct {
			Name string `json:"name"`
		} `json:"tools"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T) *Server {
	t.Helper()
	compiler, err := service.New()
	require.NoError(t, err)
	return NewServer(compiler)
}

func call(t *testing.T, s *Server, method string, params any) rpcResult {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	require.NotNil(t, resp)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var out rpcResult
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func tool(t *testing.T, s *Server, name string, args map[string]any) rpcResult {
	t.Helper()
	return call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestTools_Listed(t *testing.T) {
	s := newServer(t)
	res := call(t, s, "tools/list", map[string]any{})
	require.Nil(t, res.Error)

	var names []string
	for _, tl := range res.Result.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{"compile_pattern", "compile_swatch", "list_swatches", "get_artifact"}, names)
}

func TestCompilePattern_YAML(t *testing.T) {
	s := newServer(t)
	res := tool(t, s, "compile_pattern", map[string]any{
		"document":        "name: garter\nwidth: 4\nrows:\n  - k*\n  - p*\n",
		"include_knitout": true,
	})
	require.False(t, res.Result.IsError, res.Result.Content)

	var out CompileResponse
	require.NoError(t, json.Unmarshal(res.Result.StructuredContent, &out))
	assert.Equal(t, "garter", out.Name)
	assert.Equal(t, "rows", out.Source)
	assert.Equal(t, 4, out.Stats.Xfers)
	assert.Contains(t, out.Knitout, ";!knitout-2")
	assert.NotEmpty(t, out.ID)
}

func TestCompilePattern_JSONDetected(t *testing.T) {
	s := newServer(t)
	res := tool(t, s, "compile_pattern", map[string]any{
		"document": `{"width":2,"rows":["k*"]}`,
	})
	require.False(t, res.Result.IsError, res.Result.Content)

	var out CompileResponse
	require.NoError(t, json.Unmarshal(res.Result.StructuredContent, &out))
	assert.Empty(t, out.Knitout)
	assert.Equal(t, 2, out.Stats.ByOpcode["knit"])
}

func TestCompilePattern_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "bad format", args: map[string]any{"document": "width: 2", "format": "toml"}},
		{name: "not a document", args: map[string]any{"document": "width: 2"}},
		{name: "unknown stitch", args: map[string]any{"document": "width: 2\nrows: [q*]\n"}},
	}
	s := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tool(t, s, "compile_pattern", tt.args)
			assert.True(t, res.Result.IsError)
			require.NotEmpty(t, res.Result.Content)
			assert.Contains(t, res.Result.Content[0].Text, "tool execution failed")
		})
	}
}

func TestCompileSwatch_ThenArtifact(t *testing.T) {
	s := newServer(t)
	res := tool(t, s, "compile_swatch", map[string]any{
		"name":   "stockinette",
		"params": map[string]any{"width": 3, "height": 2},
	})
	require.False(t, res.Result.IsError, res.Result.Content)

	var out CompileResponse
	require.NoError(t, json.Unmarshal(res.Result.StructuredContent, &out))
	assert.Equal(t, "swatch:stockinette", out.Source)
	assert.False(t, out.Cached)

	again := tool(t, s, "compile_swatch", map[string]any{
		"name":   "stockinette",
		"params": map[string]any{"width": 3, "height": 2},
	})
	var cached CompileResponse
	require.NoError(t, json.Unmarshal(again.Result.StructuredContent, &cached))
	assert.True(t, cached.Cached)
	assert.Equal(t, out.ID, cached.ID)

	art := tool(t, s, "get_artifact", map[string]any{"id": out.ID})
	require.False(t, art.Result.IsError)
	require.Len(t, art.Result.Content, 1)
	assert.Contains(t, art.Result.Content[0].Text, "knit + f1 3")

	read := call(t, s, "resources/read", map[string]any{"uri": fmt.Sprintf("knitout://artifacts/%s", out.ID)})
	require.Nil(t, read.Error)
	require.Len(t, read.Result.Contents, 1)
	assert.Equal(t, "text/plain", read.Result.Contents[0].MIMEType)
	assert.Equal(t, art.Result.Content[0].Text, read.Result.Contents[0].Text)
}

func TestCompileSwatch_Unknown(t *testing.T) {
	s := newServer(t)
	res := tool(t, s, "compile_swatch", map[string]any{"name": "argyle"})
	assert.True(t, res.Result.IsError)
}

func TestGetArtifact_Errors(t *testing.T) {
	s := newServer(t)

	res := tool(t, s, "get_artifact", map[string]any{})
	assert.True(t, res.Result.IsError)

	res = tool(t, s, "get_artifact", map[string]any{"id": "nope"})
	assert.True(t, res.Result.IsError)
	assert.Contains(t, res.Result.Content[0].Text, "load failed")
}

func TestListSwatches(t *testing.T) {
	s := newServer(t)
	res := tool(t, s, "list_swatches", nil)
	require.False(t, res.Result.IsError, res.Result.Content)

	var out SwatchList
	require.NoError(t, json.Unmarshal(res.Result.StructuredContent, &out))
	require.NotEmpty(t, out.Swatches)

	var rib *SwatchInfo
	for i := range out.Swatches {
		if out.Swatches[i].Name == "rib" {
			rib = &out.Swatches[i]
		}
	}
	require.NotNil(t, rib)
	assert.Contains(t, rib.Params, "rib_width")
	assert.Contains(t, rib.Params, "width")
}
