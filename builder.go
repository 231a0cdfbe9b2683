package authgate

import (
	"errors"

	"github.com/authgate-dev/authgate/jwt"
	"github.com/authgate-dev/authgate/password"
	"github.com/authgate-dev/authgate/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the Engine is used.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userStore UserStore
	auditSink AuditSink
	fallback  *session.Fallback

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client for the durable session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the user persistence collaborator. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to a no-op
// sink when auditing is enabled without one.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithFallbackStore injects the process-local fallback store, letting tests
// own and inspect the instance. Defaults to a fresh store per Build.
func (b *Builder) WithFallbackStore(fallback *session.Fallback) *Builder {
	b.fallback = fallback
	return b
}

// Build validates the configuration and wires the Engine. A Builder can build
// at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.userStore == nil {
		return nil, errors.New("user store is required")
	}

	hasher, err := password.New(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     b.config.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(b.config.JWT.SigningMethod),
		PrivateKey:    b.config.JWT.PrivateKey,
		PublicKey:     b.config.JWT.PublicKey,
		Issuer:        b.config.JWT.Issuer,
		Leeway:        b.config.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics(b.config.Metrics)

	fallback := b.fallback
	if fallback == nil {
		fallback = session.NewFallback()
	}

	registry := session.NewRegistry(
		session.NewRedisStore(b.redis, b.config.Session.RedisPrefix),
		fallback,
		session.RegistryConfig{
			TTL:           b.config.Session.TTL,
			SingleSession: b.config.Session.SingleSession,
			OnFallback:    func() { metrics.Inc(MetricStoreFallback) },
		},
	)

	engine := &Engine{
		config:       b.config,
		registry:     registry,
		userStore:    b.userStore,
		passwordHash: hasher,
		tokens:       tokens,
		metrics:      metrics,
		audit:        newAuditDispatcher(b.config.Audit, b.auditSink),
	}

	b.built = true
	return engine, nil
}
