package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
	"github.com/NordCoder/go-auth/internal/obs"
)

const maxRequestBodySize = 1 << 20

// Service is what the HTTP layer needs from the orchestrator.
type Service interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (domainauth.TokenPair, error)
	Refresh(ctx context.Context, bearer, refreshToken string) (RefreshResult, error)
	Logout(ctx context.Context, bearer string) error
	Authenticate(bearer string) (string, error)
}

type CookieOpts struct {
	Name   string
	Path   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	svc    Service
	log    *zap.Logger
	cookie CookieOpts
}

func NewHandler(svc Service, cookie CookieOpts, log *zap.Logger) *Handler {
	if log == nil {
		log, _ = zap.NewProduction()
	}
	if cookie.Name == "" {
		cookie.Name = "refreshToken"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = domainauth.RefreshTokenTTL
	}
	return &Handler{svc: svc, log: log, cookie: cookie}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var errBadBody = errors.New("invalid request body")

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	if err := h.svc.Register(r.Context(), req.Email, req.Password); err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, statusResponse{Success: true, Message: "User registered"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.writeError(w, r, "login", err)
		return
	}
	pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}
	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, pair)
}

// RefreshToken takes the refresh token from the body and falls back to the cookie set by Login.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.writeError(w, r, "refresh", err)
		return
	}
	if req.RefreshToken == "" {
		if c, err := r.Cookie(h.cookie.Name); err == nil {
			req.RefreshToken = c.Value
		}
	}

	res, err := h.svc.Refresh(r.Context(), bearerToken(r), req.RefreshToken)
	if err != nil {
		h.writeError(w, r, "refresh", err)
		return
	}
	if res.RefreshToken != "" {
		h.setRefreshCookie(w, res.RefreshToken)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), bearerToken(r)); err != nil {
		h.writeError(w, r, "logout", err)
		return
	}
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := h.svc.Authenticate(bearerToken(r))
	if err != nil {
		h.writeError(w, r, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
}

// writeError is the single place where domain errors become HTTP responses.
// Internal detail goes to the log only.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := obs.WithTrace(r.Context(), h.log).With(zap.String("op", op), zap.Error(err))

	if errors.Is(r.Context().Err(), context.DeadlineExceeded) && !errors.Is(err, domainauth.ErrTimedOut) &&
		(errors.Is(err, domainauth.ErrStore) || errors.Is(err, context.DeadlineExceeded)) {
		err = domainauth.ErrTimedOut
	}

	switch {
	case errors.Is(err, errBadBody):
		log.Info("bad request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
	case errors.Is(err, domainauth.ErrRegistrationFailed):
		log.Info("registration rejected")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Registration failed"})
	case errors.Is(err, domainauth.ErrInvalidInput):
		log.Info("invalid input")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing email or password"})
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		log.Info("login rejected")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
	case errors.Is(err, domainauth.ErrInvalidRefreshToken):
		log.Info("refresh rejected")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid refresh token"})
	case errors.Is(err, domainauth.ErrInvalidAccessToken):
		log.Info("access token rejected")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid access token"})
	case errors.Is(err, domainauth.ErrTimedOut):
		log.Warn("request timed out")
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{
			Error: "Operation timed out", Message: "The request took too long to complete",
		})
	default:
		log.Error("request failed")
		writeInternalError(w)
	}
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "Internal server error", Message: "An unexpected error occurred",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may be gone
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object. allowEmpty accepts a missing body as the zero value.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return errBadBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return errBadBody
	}
	return nil
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    raw,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
