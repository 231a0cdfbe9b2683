package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/authgate-dev/authgate"
)

type registerRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the wire shape for both pipelines. Exactly one of Token
// and SessionToken is set, depending on the credential kind.
type authResponse struct {
	Token        string        `json:"token,omitempty"`
	SessionToken string        `json:"sessionToken,omitempty"`
	Email        string        `json:"email"`
	Firstname    string        `json:"firstname"`
	Lastname     string        `json:"lastname"`
	Role         authgate.Role `json:"role"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toAuthResponse(resp authgate.AuthenticationResponse) authResponse {
	out := authResponse{
		Email:     resp.Email,
		Firstname: resp.Firstname,
		Lastname:  resp.Lastname,
		Role:      resp.Role,
	}
	switch resp.Credential.Kind() {
	case authgate.KindBearer:
		out.Token, _ = resp.Credential.Token()
	case authgate.KindSession:
		out.SessionToken, _ = resp.Credential.SessionID()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine sentinels to HTTP statuses. Credential and
// account-state failures collapse into one generic 401 so a caller cannot
// probe which part was wrong.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authgate.ErrAccountExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "account already exists"})
	case errors.Is(err, authgate.ErrInvalidCredentials),
		errors.Is(err, authgate.ErrAccountDisabled),
		errors.Is(err, authgate.ErrAccountLocked):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: authgate.ErrInvalidCredentials.Error()})
	case errors.Is(err, authgate.ErrAccountCreationInvalid),
		errors.Is(err, authgate.ErrUsernameRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
