package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate"
	"github.com/authgate-dev/authgate/middleware"
)

// Handler carries the JSON endpoints for both pipelines. Construct it with
// NewHandler and mount it through NewRouter, which also installs the
// dispatcher in front.
type Handler struct {
	engine *authgate.Engine
	log    *slog.Logger
}

func NewHandler(engine *authgate.Engine, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{engine: engine, log: log}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	resp, err := h.engine.Register(r.Context(), authgate.RegisterRequest{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Info("account registered", "email", resp.Email)
	writeJSON(w, http.StatusOK, toAuthResponse(resp))
}

func (h *Handler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	resp, err := h.engine.Authenticate(r.Context(), authgate.AuthenticationRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(resp))
}

// handleCreateAccount creates an account without issuing a credential. A
// duplicate email answers 409.
func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	user, err := h.engine.CreateAccount(r.Context(), authgate.RegisterRequest{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Info("account created", "email", user.Email)
	writeJSON(w, http.StatusCreated, authResponse{
		Email:     user.Email,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Role:      user.Role,
	})
}

func (h *Handler) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	resp, err := h.engine.SessionLogin(r.Context(), authgate.AuthenticationRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.setSessionCookie(w, resp)
	writeJSON(w, http.StatusOK, toAuthResponse(resp))
}

// handleSessionRegister creates the account and immediately establishes a
// session for it, so a fresh registration lands the browser logged in.
func (h *Handler) handleSessionRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	resp, err := h.engine.SessionRegister(r.Context(), authgate.RegisterRequest{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Info("account registered", "email", resp.Email)
	h.setSessionCookie(w, resp)
	writeJSON(w, http.StatusOK, toAuthResponse(resp))
}

func (h *Handler) handleSessionLogout(w http.ResponseWriter, r *http.Request) {
	sid, ok := requestSessionID(r)
	if ok {
		h.engine.SessionLogout(r.Context(), sid)
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) handleSessionRefresh(w http.ResponseWriter, r *http.Request) {
	sid, ok := requestSessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing session token"})
		return
	}
	h.engine.SessionRefresh(r.Context(), sid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, resp authgate.AuthenticationResponse) {
	if sid, ok := resp.Credential.SessionID(); ok {
		middleware.SetSessionCookie(w, sid, int(h.engine.SessionTTL().Seconds()))
	}
}

// requestSessionID pulls the session identifier from the Authorization
// header (plain value or Bearer scheme) or, failing that, from the cookie.
func requestSessionID(r *http.Request) (string, bool) {
	if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
		return strings.TrimPrefix(raw, "Bearer "), true
	}
	c, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
