package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/soaringjerry/Intake/internal/forms"
)

// FormOperations is the slice of the form service the router needs.
type FormOperations interface {
	List(ctx context.Context) ([]*forms.IntakeForm, error)
	Create(ctx context.Context, form *forms.IntakeForm) (*forms.IntakeForm, error)
	Patch(ctx context.Context, id string, changes *forms.IntakeForm) (*forms.IntakeForm, error)
}

// Options carries the optional collaborators of the router: a static asset
// directory for the bundled frontend and a liveness probe for /health.
type Options struct {
	StaticDir string
	Ping      func(ctx context.Context) error
}

type Router struct {
	service FormOperations
	logger  *zap.SugaredLogger
	opts    Options
}

func NewRouter(service FormOperations, logger *zap.SugaredLogger, opts Options) *Router {
	return &Router{service: service, logger: logger, opts: opts}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/intake-forms", rt.handleList)
	r.Post("/api/intake-forms", rt.handleCreate)
	r.Patch("/api/intake-forms/{id}", rt.handlePatch)
	r.Get("/health", rt.handleHealth)

	if rt.opts.StaticDir != "" {
		rt.registerStatic(r)
	}
	return r
}

// dataResponse is the envelope every form endpoint answers with.
type dataResponse struct {
	Data any `json:"data"`
}

func (rt *Router) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := rt.service.List(r.Context())
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, dataResponse{Data: out})
}

func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body forms.IntakeForm
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := rt.service.Create(r.Context(), &body)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, dataResponse{Data: created})
}

func (rt *Router) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body forms.IntakeForm
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := rt.service.Patch(r.Context(), id, &body)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, dataResponse{Data: updated})
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.opts.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.opts.Ping(ctx); err != nil {
			rt.logger.Warnw("health probe failed", "err", err)
			rt.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	rt.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail collapses every service failure to an opaque 500, matching the
// reference API: callers cannot tell not-found from store-unavailable. The
// distinction survives in the log line.
func (rt *Router) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := forms.ErrorStorage
	if se, ok := forms.AsServiceError(err); ok {
		code = se.Code
	}
	rt.logger.Errorw("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"code", string(code),
		"err", err,
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		rt.logger.Errorw("encode response", "err", err)
	}
}

func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		rt.logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// registerStatic serves the bundled frontend: the favicon, the asset
// directory under /static/, and index.html for any path no route claims.
func (rt *Router) registerStatic(r chi.Router) {
	dir := rt.opts.StaticDir
	r.Get("/favicon.ico", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(dir, "favicon.ico"))
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(dir, "index.html"))
	})
}
