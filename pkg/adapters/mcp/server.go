package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/knitout"
	"github.com/aretw0/knitout/internal/service"
	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/aretw0/knitout/pkg/swatch"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const artifactURI = "knitout://artifacts/"

// Compiler is the compile service exposed as tools.
type Compiler interface {
	CompilePattern(ctx context.Context, doc pattern.Document) (*service.Result, error)
	CompileSwatch(ctx context.Context, name string, params map[string]any) (*service.Result, error)
	Artifact(ctx context.Context, id string) (*ports.Artifact, error)
	Registry() *swatch.Registry
}

// CompileResponse is the structured result of the compile tools.
type CompileResponse struct {
	ID      string          `json:"id" jsonschema_description:"Artifact id, usable with get_artifact"`
	Name    string          `json:"name"`
	Source  string          `json:"source" jsonschema_description:"graph, rows or swatch:<name>"`
	Digest  string          `json:"digest" jsonschema_description:"SHA-256 of the input"`
	Cached  bool            `json:"cached"`
	Stats   generator.Stats `json:"stats"`
	Knitout string          `json:"knitout,omitempty" jsonschema_description:"The program, when include_knitout is set"`
}

// CompilePatternArgs are the arguments of compile_pattern.
type CompilePatternArgs struct {
	Document       string `json:"document"`
	Format         string `json:"format,omitempty"`
	IncludeKnitout bool   `json:"include_knitout,omitempty"`
}

// CompileSwatchArgs are the arguments of compile_swatch.
type CompileSwatchArgs struct {
	Name           string         `json:"name"`
	Params         map[string]any `json:"params,omitempty"`
	IncludeKnitout bool           `json:"include_knitout,omitempty"`
}

// SwatchInfo describes a swatch to a client.
type SwatchInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Params      map[string]any `json:"params"`
}

// SwatchList is the structured result of list_swatches.
type SwatchList struct {
	Swatches []SwatchInfo `json:"swatches"`
}

// Server exposes the compiler as an MCP server.
type Server struct {
	compiler  Compiler
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(compiler Compiler) *Server {
	s := &Server{
		compiler:  compiler,
		mcpServer: server.NewMCPServer("knitout-mcp", strings.TrimSpace(knitout.Version), server.WithRecovery()),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: compile_pattern
	s.mcpServer.AddTool(mcp.NewTool("compile_pattern",
		mcp.WithDescription("Compile a pattern document into knitout. The document is either a row document (width, rows of stitch tokens such as \"k2 p2\", \"k yo k2tog\", \"LC2|2\") or a graph document (yarns, loops, edges)."),
		mcp.WithString("document", mcp.Required(), mcp.Description("The document text")),
		mcp.WithString("format", mcp.Description("Encoding of the document"), mcp.Enum("yaml", "json")),
		mcp.WithBoolean("include_knitout", mcp.Description("Return the program text as well as its summary")),
		mcp.WithOutputSchema[CompileResponse](),
	), mcp.NewStructuredToolHandler(s.handleCompilePattern))

	// TOOL: compile_swatch
	s.mcpServer.AddTool(mcp.NewTool("compile_swatch",
		mcp.WithDescription("Compile one of the built-in swatches. See list_swatches for names and parameters."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Swatch name")),
		mcp.WithObject("params", mcp.Description("Swatch parameters, such as width and height")),
		mcp.WithBoolean("include_knitout", mcp.Description("Return the program text as well as its summary")),
		mcp.WithOutputSchema[CompileResponse](),
	), mcp.NewStructuredToolHandler(s.handleCompileSwatch))

	// TOOL: list_swatches
	s.mcpServer.AddTool(mcp.NewTool("list_swatches",
		mcp.WithDescription("List the built-in swatches and their parameters."),
		mcp.WithOutputSchema[SwatchList](),
	), mcp.NewStructuredToolHandler(s.handleListSwatches))

	// TOOL: get_artifact
	s.mcpServer.AddTool(mcp.NewTool("get_artifact",
		mcp.WithDescription("Get the knitout program of a compiled artifact."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Artifact id returned by a compile tool")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		a, err := s.compiler.Artifact(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		return mcp.NewToolResultText(a.Knitout), nil
	})
}

func (s *Server) handleCompilePattern(ctx context.Context, _ mcp.CallToolRequest, args CompilePatternArgs) (CompileResponse, error) {
	format := pattern.YAML
	if args.Format != "" {
		f, err := pattern.ParseFormat(args.Format)
		if err != nil {
			return CompileResponse{}, err
		}
		format = f
	} else if strings.HasPrefix(strings.TrimSpace(args.Document), "{") {
		format = pattern.JSON
	}

	doc, err := pattern.Parse([]byte(args.Document), format)
	if err != nil {
		return CompileResponse{}, err
	}
	res, err := s.compiler.CompilePattern(ctx, doc)
	if err != nil {
		slog.Warn("MCP compile_pattern failed", "err", err)
		return CompileResponse{}, err
	}
	return response(res, args.IncludeKnitout), nil
}

func (s *Server) handleCompileSwatch(ctx context.Context, _ mcp.CallToolRequest, args CompileSwatchArgs) (CompileResponse, error) {
	res, err := s.compiler.CompileSwatch(ctx, args.Name, args.Params)
	if err != nil {
		slog.Warn("MCP compile_swatch failed", "swatch", args.Name, "err", err)
		return CompileResponse{}, err
	}
	return response(res, args.IncludeKnitout), nil
}

func (s *Server) handleListSwatches(context.Context, mcp.CallToolRequest, struct{}) (SwatchList, error) {
	list := s.compiler.Registry().List()
	out := SwatchList{Swatches: make([]SwatchInfo, len(list))}
	for i, sw := range list {
		params := make(map[string]any, len(sw.Params))
		data, err := json.Marshal(sw.Params)
		if err != nil {
			return SwatchList{}, err
		}
		if err := json.Unmarshal(data, &params); err != nil {
			return SwatchList{}, err
		}
		out.Swatches[i] = SwatchInfo{Name: sw.Name, Description: sw.Description, Params: params}
	}
	return out, nil
}

func response(res *service.Result, withKnitout bool) CompileResponse {
	a := res.Artifact
	out := CompileResponse{
		ID:     a.ID,
		Name:   a.Name,
		Source: a.Source,
		Digest: a.Digest,
		Cached: res.Cached,
		Stats:  a.Stats,
	}
	if withKnitout {
		out.Knitout = a.Knitout
	}
	return out
}

func (s *Server) registerResources() {
	// EXPOSE: knitout://artifacts/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(artifactURI+"{id}", "Compiled knitout program",
		mcp.WithTemplateMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, artifactURI)
		a, err := s.compiler.Artifact(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load artifact: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/plain",
				Text:     a.Knitout,
			},
		}, nil
	})
}
