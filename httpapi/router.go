package httpapi

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/authgate-dev/authgate"
	"github.com/authgate-dev/authgate/middleware"
)

// NewRouter mounts the JSON endpoints on a ServeMux and installs the two
// authentication pipelines in front: the bearer pipeline for /api/ and the
// session pipeline for everything else. Extra handlers (UI pages, static
// assets) can be registered on the mux before it is passed in; pass nil to
// get a mux with only the auth endpoints.
func NewRouter(engine *authgate.Engine, log *slog.Logger, mux *http.ServeMux) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	if mux == nil {
		mux = http.NewServeMux()
	}
	h := NewHandler(engine, log)

	mux.HandleFunc("POST /api/v1/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/authenticate", h.handleAuthenticate)
	mux.HandleFunc("POST /api/v1/auth/create-account", h.handleCreateAccount)

	mux.HandleFunc("POST /ui/auth/session/login", h.handleSessionLogin)
	mux.HandleFunc("POST /ui/auth/session/register", h.handleSessionRegister)
	mux.HandleFunc("POST /ui/auth/session/logout", h.handleSessionLogout)
	mux.HandleFunc("POST /ui/auth/session/refresh", h.handleSessionRefresh)

	dispatcher := middleware.NewDispatcher(mux,
		&middleware.Pipeline{
			Prefix:   "/api/",
			Resolver: middleware.NewBearerResolver(engine),
			Rules: []middleware.Rule{
				{Prefix: "/api/v1/auth/", Access: middleware.AccessPublic},
				{Prefix: "/api/v1/admin/", Access: middleware.AccessAdmin},
			},
			DefaultAccess: middleware.AccessAuthenticated,
		},
		&middleware.Pipeline{
			Prefix:   "/",
			Resolver: middleware.NewSessionResolver(engine),
			Rules: []middleware.Rule{
				{Prefix: "/ui/auth/", Access: middleware.AccessPublic},
				{Prefix: "/ui/admin/", Access: middleware.AccessAdmin},
				{Prefix: "/ui/", Access: middleware.AccessAuthenticated},
				{Prefix: "/css/", Access: middleware.AccessPublic},
				{Prefix: "/js/", Access: middleware.AccessPublic},
				{Prefix: "/images/", Access: middleware.AccessPublic},
				{Prefix: "/login", Access: middleware.AccessPublic},
				{Prefix: "/register", Access: middleware.AccessPublic},
				{Prefix: "/", Access: middleware.AccessPublic},
			},
			DefaultAccess: middleware.AccessAuthenticated,
		},
	)

	return requestContext(logRequests(log, dispatcher))
}

// requestContext copies the client address and user agent into the request
// context so engine audit events can carry them.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ctx = authgate.WithClientIP(ctx, host)
		} else if r.RemoteAddr != "" {
			ctx = authgate.WithClientIP(ctx, r.RemoteAddr)
		}
		if ua := r.UserAgent(); ua != "" {
			ctx = authgate.WithUserAgent(ctx, ua)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func logRequests(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}
