package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/knitout"
	"github.com/aretw0/knitout/internal/service"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/aretw0/knitout/pkg/schema"
	"github.com/aretw0/knitout/pkg/swatch"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// maxBody caps request bodies.
	maxBody = 4 << 20

	defaultURLExpiry = 15 * time.Minute
	// maxURLExpiry is the longest presigned link, in seconds.
	maxURLExpiry = 7 * 24 * 60 * 60
)

//go:embed openapi.yaml
var rawSpec []byte

// Compiler is the compile service behind the API.
type Compiler interface {
	CompilePattern(ctx context.Context, doc pattern.Document) (*service.Result, error)
	CompileSwatch(ctx context.Context, name string, params map[string]any) (*service.Result, error)
	Artifact(ctx context.Context, id string) (*ports.Artifact, error)
	Artifacts(ctx context.Context) ([]string, error)
	ProgramURL(ctx context.Context, id string, expiry time.Duration) (string, error)
	Registry() *swatch.Registry
}

// Server serves the compile API.
type Server struct {
	Compiler Compiler
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer's metrics on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams publishes compile events on /events. Pass the manager's
// Hooks to the compiler so there is something to publish.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// Spec loads and validates the embedded OpenAPI document.
func Spec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// NewHandler creates the HTTP handler for the compiler. Requests to the API
// routes are validated against the embedded OpenAPI document.
func NewHandler(compiler Compiler, opts ...Option) (http.Handler, error) {
	server := &Server{Compiler: compiler}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	spec, err := Spec()
	if err != nil {
		return nil, err
	}
	router, err := legacy.NewRouter(spec)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(api chi.Router) {
		api.Use(server.validate(router))
		api.Get("/healthz", server.GetHealth)
		api.Get("/info", server.GetInfo(spec))
		api.Post("/compile", server.Compile)
		api.Get("/swatches", server.ListSwatches)
		api.Post("/swatches/{name}", server.CompileSwatch)
		api.Get("/artifacts", server.ListArtifacts)
		api.Get("/artifacts/{id}", server.GetArtifact)
		api.Get("/artifacts/{id}/knitout", server.GetKnitout)
		api.Get("/artifacts/{id}/url", server.GetProgramURL)
		api.Get("/events", server.SubscribeEvents)
	})

	return enableCORS(r), nil
}

func (s *Server) validate(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				s.writeError(w, http.StatusNotFound, err)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
				s.writeError(w, http.StatusBadRequest, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>knitout API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// CompiledResponse is the JSON body of a compilation.
type CompiledResponse struct {
	*ports.Artifact
	Cached bool `json:"cached"`
}

// SwatchResponse describes one built-in swatch.
type SwatchResponse struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Params      schema.Schema `json:"params"`
}

// Compile handles POST /compile. The body is a pattern document in JSON or
// YAML, chosen by Content-Type.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	format := pattern.JSON
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); strings.HasSuffix(mt, "yaml") {
		format = pattern.YAML
	}
	doc, err := pattern.Parse(data, format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.Compiler.CompilePattern(r.Context(), doc)
	if err != nil {
		s.fail(w, "compile", err)
		return
	}
	s.writeResult(w, r, res)
}

// CompileSwatch handles POST /swatches/{name}. The optional body holds the
// swatch parameters.
func (s *Server) CompileSwatch(w http.ResponseWriter, r *http.Request) {
	params := map[string]any{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid parameters: %w", err))
			return
		}
	}

	res, err := s.Compiler.CompileSwatch(r.Context(), chi.URLParam(r, "name"), params)
	if err != nil {
		s.fail(w, "compile swatch", err)
		return
	}
	s.writeResult(w, r, res)
}

// ListSwatches handles GET /swatches.
func (s *Server) ListSwatches(w http.ResponseWriter, r *http.Request) {
	list := s.Compiler.Registry().List()
	resp := make([]SwatchResponse, len(list))
	for i, sw := range list {
		resp[i] = SwatchResponse{Name: sw.Name, Description: sw.Description, Params: sw.Params}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ListArtifacts handles GET /artifacts.
func (s *Server) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Compiler.Artifacts(r.Context())
	if err != nil {
		s.fail(w, "list artifacts", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetArtifact handles GET /artifacts/{id}.
func (s *Server) GetArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := s.Compiler.Artifact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "load artifact", err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

// GetKnitout handles GET /artifacts/{id}/knitout.
func (s *Server) GetKnitout(w http.ResponseWriter, r *http.Request) {
	a, err := s.Compiler.Artifact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "load artifact", err)
		return
	}
	writeKnitout(w, a)
}

// GetProgramURL handles GET /artifacts/{id}/url.
func (s *Server) GetProgramURL(w http.ResponseWriter, r *http.Request) {
	expiry := defaultURLExpiry
	if v := r.URL.Query().Get("expiry"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if secs < 1 || secs > maxURLExpiry {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("expiry must be between 1 and %d seconds", maxURLExpiry))
			return
		}
		expiry = time.Duration(secs) * time.Second
	}
	u, err := s.Compiler.ProgramURL(r.Context(), chi.URLParam(r, "id"), expiry)
	if err != nil {
		s.fail(w, "presign program", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"url": u, "expires_in": int(expiry.Seconds())})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(spec *openapi3.T) http.HandlerFunc {
	apiVersion := "unknown"
	if spec.Info != nil {
		apiVersion = spec.Info.Version
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{
			"app":         "knitout-http",
			"version":     strings.TrimSpace(knitout.Version),
			"api_version": apiVersion,
		})
	}
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res *service.Result) {
	if r.URL.Query().Get("output") == "knitout" {
		writeKnitout(w, res.Artifact)
		return
	}
	s.writeJSON(w, http.StatusOK, CompiledResponse{Artifact: res.Artifact, Cached: res.Cached})
}

func writeKnitout(w http.ResponseWriter, a *ports.Artifact) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", a.ID+".k"))
	io.WriteString(w, a.Knitout)
}

// status maps compile errors to HTTP statuses.
func status(err error) int {
	switch {
	case errors.Is(err, swatch.ErrNotFound), errors.Is(err, ports.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrGeneration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Info(op+" rejected", "status", code, "err", err)
	}
	s.writeError(w, code, err)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
