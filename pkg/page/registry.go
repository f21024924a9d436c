package page

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/foomo/gitpages/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Registry holds the ordered set of configured pages. Pages are created once
// at startup and never added or removed at runtime, so resolving needs no
// synchronization.
type Registry struct {
	l      *zap.Logger
	pages  []*Page
	loaded atomic.Bool
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewRegistry validates the page configurations in order and fails fast on
// the first malformed or conflicting prefix. Two prefixes conflict when they
// are equal or one is a textual prefix of the other, since routing would be
// ambiguous.
func NewRegistry(l *zap.Logger, configs []Config) (*Registry, error) {
	if len(configs) == 0 {
		return nil, errors.New("at least one page must be configured")
	}

	inst := &Registry{
		l: l.Named("registry"),
	}

	for i, config := range configs {
		next, err := New(l, config)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid configuration for page %d", i)
		}
		for _, existing := range inst.pages {
			if existing.Prefix() == next.Prefix() {
				return nil, errors.Errorf("prefix %q is already used by another page", next.Prefix())
			}
			if strings.HasPrefix(existing.Prefix(), next.Prefix()) ||
				strings.HasPrefix(next.Prefix(), existing.Prefix()) {
				return nil, errors.Errorf("existing prefix %q conflicts with new prefix %q",
					existing.Prefix(), next.Prefix())
			}
		}
		inst.pages = append(inst.pages, next)
		inst.logPage(i, config)
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (r *Registry) Pages() []*Page {
	return r.pages
}

// Loaded reports whether the registry completed its first update pass.
func (r *Registry) Loaded() bool {
	return r.loaded.Load()
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Resolve returns the first registered page whose prefix is a prefix of path,
// or nil when none matches.
func (r *Registry) Resolve(path string) *Page {
	for _, p := range r.pages {
		if strings.HasPrefix(path, p.Prefix()) {
			return p
		}
	}
	return nil
}

// UpdateAll updates every page in registration order. A failing page never
// aborts the pass, outcomes are aggregated for logging only.
func (r *Registry) UpdateAll(ctx context.Context, fetcher Fetcher, tempDir string) {
	var errs error
	for _, p := range r.pages {
		start := time.Now()
		err := p.Update(ctx, fetcher, tempDir)
		duration := time.Since(start)

		metrics.UpdateDuration.WithLabelValues(p.Prefix(), metrics.TriggerScheduler).Observe(duration.Seconds())
		if err != nil {
			metrics.UpdatesFailedCounter.WithLabelValues(p.Prefix(), metrics.TriggerScheduler).Inc()
			r.l.Warn("failed to update page",
				zap.String("prefix", p.Prefix()),
				zap.String("repo", p.Config().Repo),
				zap.String("ref", p.Config().Ref),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			errs = multierr.Append(errs, errors.Wrapf(err, "page %s", p.Prefix()))
		} else {
			metrics.UpdatesCompletedCounter.WithLabelValues(p.Prefix(), metrics.TriggerScheduler).Inc()
			r.l.Info("updated page",
				zap.String("prefix", p.Prefix()),
				zap.String("repo", p.Config().Repo),
				zap.String("ref", p.Config().Ref),
				zap.Duration("duration", duration),
			)
		}
	}
	if errs != nil {
		r.l.Warn("update pass completed with errors", zap.Error(errs))
	}
	r.loaded.Store(true)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (r *Registry) logPage(i int, config Config) {
	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}
	fields := []zap.Field{
		zap.Int("page", i),
		zap.String("prefix", config.Prefix),
		zap.String("repo", config.Repo),
		zap.String("ref", config.Ref),
		zap.String("auto_index", onOff(config.AutoIndex)),
		zap.String("auto_list", onOff(config.AutoList)),
	}
	if config.Subfolder != "" {
		fields = append(fields, zap.String("subfolder", config.Subfolder))
	}
	if config.MaxBytes > 0 {
		fields = append(fields, zap.Int64("max_bytes", config.MaxBytes))
	}
	if config.UpdateSecret != "" {
		fields = append(fields, zap.String("update_hook", config.Prefix+"update/<secret>"))
	}
	r.l.Info("configured page", fields...)
}
