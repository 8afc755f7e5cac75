package zagg

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "valkey" or "redis"
	addrs      []string
	username   string
	password   string
	clientName string
	standalone bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to Valkey. Several addresses
// may be given as seeds for a cluster.
func WithValkey(password string, addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = addrs
		c.password = password
	})
}

// WithRedis configures the client to connect to Redis. Several addresses
// may be given as seeds for a cluster.
func WithRedis(password string, addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = addrs
		c.password = password
	})
}

// WithCredentials authenticates as an ACL user.
func WithCredentials(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithClientName sets the connection name reported by CLIENT LIST / CLIENT INFO.
func WithClientName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.clientName = name
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Valkey/Redis instances.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
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
