package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/application/catalog"
	"github.com/bryanwahyu/interpretlab/internal/application/execution"
	"github.com/bryanwahyu/interpretlab/internal/application/ingest"
	"github.com/bryanwahyu/interpretlab/internal/application/render"
	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/infra/ai/openai"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

// Runner is the synchronous execution entry point.
type Runner interface {
	Execute(ctx context.Context, id core.ID) (*analyses.Analysis, error)
}

// Deps are the services the HTTP surface calls. Ingest, Runner and Queue
// may be nil; their routes then answer 501.
type Deps struct {
	Catalog *catalog.Service
	Ingest  *ingest.Service
	Render  *render.Service
	Runner  Runner
	Queue   *execution.Queue

	Metrics     *middleware.Metrics
	RateLimiter *middleware.RateLimiter
	Checks      map[string]middleware.HealthChecker
	APIKeys     map[string]string
	CORSOrigins []string
	// TrustedProxies may set the client address via forwarding headers.
	// Empty means the socket peer address is always used.
	TrustedProxies []*net.IPNet
	Log            *zap.Logger
}

type Router struct {
	catalog *catalog.Service
	ingest  *ingest.Service
	render  *render.Service
	runner  Runner
	queue   *execution.Queue
	log     *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = middleware.NewMetrics()
	}
	r := &Router{
		catalog: d.Catalog,
		ingest:  d.Ingest,
		render:  d.Render,
		runner:  d.Runner,
		queue:   d.Queue,
		log:     d.Log,
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	if len(d.TrustedProxies) > 0 {
		mux.Use(middleware.TrustedRealIP(d.TrustedProxies))
	}
	mux.Use(middleware.AccessLog(d.Log))
	mux.Use(chimw.Recoverer)
	mux.Use(d.Metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(d.Checks))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/ready", middleware.ReadinessHandler(d.Checks))
	mux.Handle("/metrics", d.Metrics.Handler())

	mux.Route("/v1", func(rt chi.Router) {
		if len(d.APIKeys) > 0 {
			rt.Use(middleware.APIKeyAuth(d.APIKeys))
		}
		if d.RateLimiter != nil {
			rt.Use(d.RateLimiter.Middleware)
		}

		rt.Route("/models", func(m chi.Router) {
			m.Post("/", r.wrap(r.handleCreateModel))
			m.Get("/", r.wrap(r.handleListModels))
			m.Post("/upload", r.wrap(r.handleUploadModel))
			m.Get("/{id}", r.wrap(r.handleGetModel))
			m.Patch("/{id}/status", r.wrap(r.handleModelStatus))
			m.Get("/{id}/analyses", r.wrap(r.handleModelAnalyses))
		})
		rt.Route("/datasets", func(ds chi.Router) {
			ds.Post("/", r.wrap(r.handleCreateDataset))
			ds.Get("/", r.wrap(r.handleListDatasets))
			ds.Post("/upload", r.wrap(r.handleUploadDataset))
			ds.Get("/{id}", r.wrap(r.handleGetDataset))
			ds.Patch("/{id}/status", r.wrap(r.handleDatasetStatus))
			ds.Get("/{id}/analyses", r.wrap(r.handleDatasetAnalyses))
		})
		rt.Route("/analyses", func(a chi.Router) {
			a.Post("/", r.wrap(r.handleCreateAnalysis))
			a.Get("/", r.wrap(r.handleListAnalyses))
			a.Get("/{id}", r.wrap(r.handleGetAnalysis))
			a.Patch("/{id}/status", r.wrap(r.handleAnalysisStatus))
			a.Post("/{id}/run", r.wrap(r.handleRunAnalysis))
			a.Post("/{id}/render", r.wrap(r.handleRenderAnalysis))
			a.Get("/{id}/visualizations", r.wrap(r.handleAnalysisVisualizations))
		})
		rt.Route("/visualizations", func(v chi.Router) {
			v.Post("/", r.wrap(r.handleCreateVisualization))
			v.Get("/{id}", r.wrap(r.handleGetVisualization))
		})
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Entity  core.Entity `json:"entity,omitempty"`
	ID      core.ID     `json:"id,omitempty"`
	From    string      `json:"from,omitempty"`
	To      string      `json:"to,omitempty"`
}

// badRequest marks malformed request bodies.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }

var errNotConfigured = errors.New("feature not configured on this server")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, body := r.classify(err)
		if status >= http.StatusInternalServerError {
			r.log.Error("request failed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err))
		}
		writeJSON(w, status, body)
	}
}

func (r *Router) classify(err error) (int, errorBody) {
	var (
		ve  *core.ValidationError
		ire *core.InvalidReferenceError
		nfe *core.NotFoundError
		te  *core.TransitionError
		br  badRequest
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: "validation", Message: err.Error(), Field: ve.Field}
	case errors.As(err, &ire):
		return http.StatusUnprocessableEntity, errorBody{
			Error: "invalid_reference", Message: err.Error(), Field: ire.Field(), Entity: ire.Entity, ID: ire.ID,
		}
	case errors.As(err, &nfe):
		return http.StatusNotFound, errorBody{Error: "not_found", Message: err.Error(), Entity: nfe.Entity, ID: nfe.ID}
	case errors.As(err, &te):
		return http.StatusConflict, errorBody{
			Error: "invalid_transition", Message: err.Error(), Entity: te.Entity, ID: te.ID, From: te.From, To: te.To,
		}
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, errorBody{Error: "too_large", Message: err.Error()}
	case errors.As(err, &br):
		return http.StatusBadRequest, errorBody{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, openai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, errorBody{Error: "quota_exceeded", Message: "ai quota exceeded"}
	case errors.Is(err, execution.ErrQueueFull), errors.Is(err, execution.ErrQueueClosed):
		return http.StatusServiceUnavailable, errorBody{Error: "busy", Message: err.Error()}
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented, errorBody{Error: "not_configured", Message: err.Error()}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst. An empty body is allowed when
// optional is set.
func decode(w http.ResponseWriter, req *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, 4<<20))
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return badRequest{fmt.Errorf("invalid JSON body: %w", err)}
	}
	return nil
}

func notFound(entity core.Entity, id core.ID) error {
	return &core.NotFoundError{Entity: entity, ID: id}
}
