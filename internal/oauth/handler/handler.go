package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/internal/platform/metrics"
	"github.com/waveer/oauth-gateway/internal/platform/middleware"
	"github.com/waveer/oauth-gateway/pkg/httputil"
	"github.com/waveer/oauth-gateway/pkg/oautherrors"
)

// GrantService defines the grant operations the HTTP layer needs.
type GrantService interface {
	Authorize(ctx context.Context, req models.AuthorizeRequest) (*models.AuthorizeResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	Token(ctx context.Context, req models.TokenRequest) (*models.TokenResult, error)
	Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenResult, error)
}

// Handler is the thin HTTP layer over the grant service. It parses,
// delegates, and renders; protocol decisions live in the service.
type Handler struct {
	logger   *slog.Logger
	grants   GrantService
	metrics  *metrics.Metrics
	verifier middleware.TokenVerifier
	cors     []string
}

// New creates the gateway HTTP handler.
func New(
	grants GrantService,
	verifier middleware.TokenVerifier,
	logger *slog.Logger,
	m *metrics.Metrics,
	corsOrigins []string,
) *Handler {
	return &Handler{
		logger:   logger,
		grants:   grants,
		metrics:  m,
		verifier: verifier,
		cors:     corsOrigins,
	}
}

// Register mounts all gateway routes with their middleware chains.
func (h *Handler) Register(r chi.Router) {
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(h.metrics))
	r.Use(middleware.CORS(h.cors))

	r.Get("/oauth/authorize", h.handleAuthorize)
	r.Get("/login", h.handleLoginPage)
	r.Post("/oauth/login", h.handleLogin)
	r.Post("/oauth/token", h.handleToken)
	r.Post("/api/auth/refresh", h.handleRefresh)

	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(h.verifier, h.logger))
		api.Get("/api/user", h.handleUserInfo)
	})

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.AuthorizeRequest{
		ClientID:     q.Get("client_id"),
		RedirectURI:  q.Get("redirect_uri"),
		ResponseType: q.Get("response_type"),
		State:        q.Get("state"),
		Scope:        q.Get("scope"),
	}

	res, err := h.grants.Authorize(r.Context(), req)
	if err != nil {
		h.logError(r, "authorize rejected", err)
		httputil.WriteError(w, err)
		return
	}

	target := url.URL{Path: "/login"}
	v := url.Values{}
	v.Set("state", res.State)
	v.Set("client_id", res.ClientID)
	target.RawQuery = v.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		httputil.WriteError(w, oautherrors.New(oautherrors.CodeInvalidRequest, "invalid request body"))
		return
	}

	res, err := h.grants.Login(r.Context(), req)
	if err != nil {
		h.logError(r, "login rejected", err)
		httputil.WriteError(w, err)
		return
	}

	redirect, err := url.Parse(res.RedirectURI)
	if err != nil {
		httputil.WriteError(w, oautherrors.New(oautherrors.CodeServerError, "invalid redirect target"))
		return
	}
	v := redirect.Query()
	v.Set("code", res.Code)
	v.Set("state", res.State)
	redirect.RawQuery = v.Encode()
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTokenRequest(r)
	if err != nil {
		httputil.WriteError(w, oautherrors.New(oautherrors.CodeInvalidRequest, "invalid request body"))
		return
	}

	res, err := h.grants.Token(r.Context(), req)
	if err != nil {
		h.logError(r, "token exchange rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, oautherrors.New(oautherrors.CodeInvalidRequest, "invalid request body"))
		return
	}

	res, err := h.grants.Refresh(r.Context(), req)
	if err != nil {
		h.logError(r, "token refresh rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := middleware.GetName(ctx)
	httputil.WriteJSON(w, http.StatusOK, models.UserInfo{
		ID:        middleware.GetUserID(ctx),
		Email:     middleware.GetEmail(ctx),
		Name:      name,
		AvatarURL: "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeLoginRequest accepts both the JSON the login page posts and a
// plain form submission.
func decodeLoginRequest(r *http.Request) (models.LoginRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return models.LoginRequest{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return models.LoginRequest{}, err
	}
	return models.LoginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		State:    r.PostFormValue("state"),
		ClientID: r.PostFormValue("client_id"),
	}, nil
}

// decodeTokenRequest accepts standard form encoding and JSON bodies.
func decodeTokenRequest(r *http.Request) (models.TokenRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			GrantType    string `json:"grant_type"`
			Code         string `json:"code"`
			RefreshToken string `json:"refresh_token"`
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
			RedirectURI  string `json:"redirect_uri"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return models.TokenRequest{}, err
		}
		return models.TokenRequest(body), nil
	}
	if err := r.ParseForm(); err != nil {
		return models.TokenRequest{}, err
	}
	return models.TokenRequest{
		GrantType:    r.PostFormValue("grant_type"),
		Code:         r.PostFormValue("code"),
		RefreshToken: r.PostFormValue("refresh_token"),
		ClientID:     r.PostFormValue("client_id"),
		ClientSecret: r.PostFormValue("client_secret"),
		RedirectURI:  r.PostFormValue("redirect_uri"),
	}, nil
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	attrs := []any{
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	}
	if oautherrors.Is(err, oautherrors.CodeServerError) {
		h.logger.ErrorContext(r.Context(), msg, attrs...)
		return
	}
	h.logger.WarnContext(r.Context(), msg, attrs...)
}
