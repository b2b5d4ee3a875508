package matchdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/matchdex/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores user records in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverRedis
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	})
}

// WithSQLite stores user records in a SQLite file. Use ":memory:" for tests.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverSQLite
		c.cfg.Database.Path = path
	})
}

// WithElasticsearch sets the search index cluster addresses.
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Index.Addresses = addrs
	})
}

// WithIndex sets the index name. Default: users.
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Index.Name = name
	})
}

// WithAPIKey authenticates against Elasticsearch with an API key.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Index.APIKey = key
	})
}

// WithClusterThreshold sets the hit count above which bounded searches
// return clusters. Default: 100.
func WithClusterThreshold(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.ClusterThreshold = n
	})
}

// WithFallbackDistance sets the radius of the broadened similar-user pass.
// Default: 25 km.
func WithFallbackDistance(km float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.FallbackDistanceKm = km
	})
}

// WithLegacyLocales replaces the locales that use the legacy language field.
func WithLegacyLocales(locales ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.LegacyLocales = append([]string{}, locales...)
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
