package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/gitpages/pkg/metrics"
	"github.com/foomo/gitpages/pkg/page"
	"go.uber.org/zap"
)

type (
	HTTP struct {
		l        *zap.Logger
		registry *page.Registry
		fetcher  page.Fetcher
		tempDir  string
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the content handler serving all registered pages.
func NewHTTP(l *zap.Logger, registry *page.Registry, fetcher page.Fetcher, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:        l.Named("http"),
		registry: registry,
		fetcher:  fetcher,
		tempDir:  "./temp",
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithTempDir(v string) HTTPOption {
	return func(o *HTTP) {
		o.tempDir = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	route, status := h.serve(w, r)

	metrics.RequestCounter.WithLabelValues(string(route), strconv.Itoa(status)).Inc()
	metrics.RequestDuration.WithLabelValues(string(route), strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) serve(w http.ResponseWriter, r *http.Request) (Route, int) {
	path := r.URL.Path

	if r.Method != http.MethodGet {
		return h.notFound(w)
	}

	p := h.registry.Resolve(path)
	if p == nil {
		return h.notFound(w)
	}

	// The webhook path takes precedence over file lookup.
	if secret := p.Config().UpdateSecret; secret != "" && path == p.Prefix()+"update/"+secret {
		return h.update(w, r, p)
	}

	if file, ok := p.FindFile(path); ok {
		return h.file(w, r, file)
	}

	if p.Config().AutoList && strings.HasSuffix(path, "/") {
		if html, ok := p.ListFolder(path); ok {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(html))
			return RouteListing, http.StatusOK
		}
	}

	return h.notFound(w)
}

func (h *HTTP) file(w http.ResponseWriter, r *http.Request, file *page.File) (Route, int) {
	if r.Header.Get("If-None-Match") == file.Hash {
		w.Header().Set("ETag", file.Hash)
		w.WriteHeader(http.StatusNotModified)
		return RouteFile, http.StatusNotModified
	}

	w.Header().Set("Content-Type", file.MediaType)
	w.Header().Set("ETag", file.Hash)
	_, _ = w.Write(file.Data)
	return RouteFile, http.StatusOK
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request, p *page.Page) (Route, int) {
	start := time.Now()
	err := p.Update(r.Context(), h.fetcher, h.tempDir)
	duration := time.Since(start)

	metrics.UpdateDuration.WithLabelValues(p.Prefix(), metrics.TriggerWebhook).Observe(duration.Seconds())
	if err != nil {
		metrics.UpdatesFailedCounter.WithLabelValues(p.Prefix(), metrics.TriggerWebhook).Inc()
		h.l.Warn("webhook update failed",
			zap.String("prefix", p.Prefix()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Update failed"))
		return RouteUpdate, http.StatusInternalServerError
	}

	metrics.UpdatesCompletedCounter.WithLabelValues(p.Prefix(), metrics.TriggerWebhook).Inc()
	h.l.Info("webhook update finished",
		zap.String("prefix", p.Prefix()),
		zap.Duration("duration", duration),
	)
	_, _ = w.Write([]byte("Update completed"))
	return RouteUpdate, http.StatusOK
}

func (h *HTTP) notFound(w http.ResponseWriter) (Route, int) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not found"))
	return RouteNotFound, http.StatusNotFound
}
