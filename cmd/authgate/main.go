// Command authgate runs the dual-pipeline authentication server: bearer
// tokens under /api/, cookie sessions under /ui/, Prometheus metrics on
// /metrics.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authgate-dev/authgate"
	"github.com/authgate-dev/authgate/httpapi"
	promexport "github.com/authgate-dev/authgate/metrics/export/prometheus"
	"github.com/authgate-dev/authgate/userstore/memory"
	"github.com/authgate-dev/authgate/userstore/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engineCfg, err := buildEngineConfig(cfg, log)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	store, closeStore, err := buildUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSink, err := buildAuditSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	engine, err := authgate.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithUserStore(store).
		WithAuditSink(sink).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	outer := http.NewServeMux()
	outer.Handle("/metrics", promexport.Handler(engine))
	outer.Handle("/", httpapi.NewRouter(engine, log, nil))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           outer,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func buildEngineConfig(cfg fileConfig, log *slog.Logger) (authgate.Config, error) {
	out := authgate.DefaultConfig()

	if cfg.Session.Prefix != "" {
		out.Session.RedisPrefix = cfg.Session.Prefix
	}
	if cfg.Session.TTL > 0 {
		out.Session.TTL = cfg.Session.TTL
	}
	if cfg.Session.SingleSession != nil {
		out.Session.SingleSession = *cfg.Session.SingleSession
	}
	if cfg.Metrics.Enabled != nil {
		out.Metrics.Enabled = *cfg.Metrics.Enabled
	}
	out.JWT.Issuer = cfg.JWT.Issuer
	if cfg.JWT.AccessTTL > 0 {
		out.JWT.AccessTTL = cfg.JWT.AccessTTL
	}

	switch cfg.JWT.SigningMethod {
	case "hs256":
		if cfg.JWT.Secret == "" {
			return out, errors.New("jwt: hs256 requires a secret")
		}
		out.JWT.SigningMethod = "hs256"
		out.JWT.PrivateKey = []byte(cfg.JWT.Secret)
	case "", "ed25519":
		out.JWT.SigningMethod = "ed25519"
		if cfg.JWT.PrivateKeyFile != "" {
			priv, err := os.ReadFile(cfg.JWT.PrivateKeyFile)
			if err != nil {
				return out, fmt.Errorf("jwt: read private key: %w", err)
			}
			out.JWT.PrivateKey = priv
			if cfg.JWT.PublicKeyFile != "" {
				pub, err := os.ReadFile(cfg.JWT.PublicKeyFile)
				if err != nil {
					return out, fmt.Errorf("jwt: read public key: %w", err)
				}
				out.JWT.PublicKey = pub
			}
		} else {
			// Ephemeral keypair: tokens do not survive a restart.
			pub, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return out, fmt.Errorf("jwt: generate keypair: %w", err)
			}
			out.JWT.PrivateKey = priv
			out.JWT.PublicKey = pub
			log.Warn("no jwt key configured, generated ephemeral ed25519 keypair")
		}
	default:
		return out, fmt.Errorf("jwt: unknown signing method %q", cfg.JWT.SigningMethod)
	}

	return out, nil
}

func buildUserStore(ctx context.Context, cfg fileConfig, log *slog.Logger) (authgate.UserStore, func(), error) {
	if cfg.Postgres.DSN == "" {
		log.Warn("no postgres dsn configured, using in-memory user store")
		return memory.New(), func() {}, nil
	}
	pg, err := postgres.New(ctx, postgres.Config{
		DSN:            cfg.Postgres.DSN,
		MaxConns:       cfg.Postgres.MaxConns,
		MigrateOnStart: cfg.Postgres.MigrateOnStart,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("connected to postgres")
	return pg, pg.Close, nil
}

func buildAuditSink(cfg fileConfig) (authgate.AuditSink, func(), error) {
	if cfg.Audit.File == "" {
		return authgate.NoOpSink{}, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Audit.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit file: %w", err)
	}
	return authgate.NewJSONWriterSink(f), func() { _ = f.Close() }, nil
}
