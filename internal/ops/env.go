package ops

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/cache"
	"github.com/hpungsan/shogun/internal/config"
	"github.com/hpungsan/shogun/internal/css"
	"github.com/hpungsan/shogun/internal/metrics"
)

// Env is the application context every operation runs against.
type Env struct {
	Config    *config.Config
	Registry  *animation.Registry
	Generator *css.Generator
	// Cache is nil when caching is disabled.
	Cache   *cache.Cache
	Metrics *metrics.Metrics
	Logger  log.Logger
	// ExportsDir receives catalog exports. Empty means ~/.shogun/exports.
	ExportsDir string
}

// NewEnv builds the registry (built-ins plus cfg.AnimationsFile) and wires
// the generator and cache. A nil store disables caching; m and logger may
// be nil.
func NewEnv(cfg *config.Config, store cache.Store, m *metrics.Metrics, logger log.Logger) (*Env, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	reg := animation.NewRegistry()
	animation.RegisterDefaults(reg)
	if cfg.AnimationsFile != "" {
		n, err := animation.LoadInto(reg, cfg.AnimationsFile)
		if err != nil {
			return nil, err
		}
		level.Info(logger).Log("msg", "loaded animations", "file", cfg.AnimationsFile, "count", n)
	}

	env := &Env{
		Config:    cfg,
		Registry:  reg,
		Generator: css.NewGenerator(reg, m, logger),
		Metrics:   m,
		Logger:    logger,
	}
	if store != nil {
		env.Cache = cache.New(store, cfg.CacheTTL(), m, log.With(logger, "component", "cache"))
	}
	return env, nil
}

// cacheKey identifies compiled CSS. The unique id and any custom selector
// are part of the output, so they are part of the key.
func cacheKey(name string, params animation.Params, uniqueID, selector string) string {
	p := params.With(css.ParamID, animation.StringValue(uniqueID))
	if selector != "" {
		p = p.With("selector", animation.StringValue(selector))
	}
	return cache.Key(name, p)
}
