package accounts

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/core"
	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/cookie"
	"github.com/dealerdesk/dealerdesk/pkg/logger"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
	"github.com/dealerdesk/dealerdesk/pkg/session"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// Handler exposes the accounts service over HTTP.
type Handler struct {
	service   *Service
	transport session.Transport // browser session cookie
	cookies   *cookie.Manager
	tenantCfg tenant.Config
	log       *slog.Logger
}

// NewHandler creates the accounts HTTP handler.
func NewHandler(service *Service, transport session.Transport, cookies *cookie.Manager, tenantCfg tenant.Config, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		service:   service,
		transport: transport,
		cookies:   cookies,
		tenantCfg: tenantCfg,
		log:       log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User       *storage.User  `json:"user"`
	Tenant     *tenant.Tenant `json:"tenant"`
	APIBaseURL string         `json:"api_base_url"`
	SessionKey string         `json:"session_key"`
}

// Login is the universal login endpoint: no tenant signal required.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	result, err := h.service.UniversalLogin(r.Context(), req.Username, req.Password)
	h.finishLogin(w, r, result, err)
}

// AdminLogin mints a session in the platform partition for operators
// of the administrative plane.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	result, err := h.service.AdminLogin(r.Context(), req.Username, req.Password)
	h.finishLogin(w, r, result, err)
}

// finishLogin turns a login outcome into cookies and a response body.
func (h *Handler) finishLogin(w http.ResponseWriter, r *http.Request, result *LoginResult, err error) {
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			core.JSONError(w, core.NewHTTPError(http.StatusUnauthorized, "invalid_credentials"))
			return
		}
		h.log.ErrorContext(r.Context(), "login failed", logger.Error(err), logger.Component("accounts"))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	ttl := result.Session.ExpiresAt.Sub(result.Session.CreatedAt)
	if err := h.transport.SetKey(w, result.Session.Key, ttl); err != nil {
		h.log.ErrorContext(r.Context(), "set session cookie", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	// The hint cookie lets subsequent browser requests resolve their
	// tenant from session state alone.
	if err := h.cookies.SetEncrypted(w, h.tenantCfg.HintCookie, result.Tenant.SchemaID,
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithMaxAge(int(ttl.Seconds())),
	); err != nil {
		h.log.ErrorContext(r.Context(), "set tenant hint cookie", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	core.JSON(w, http.StatusOK, loginResponse{
		User:       result.User,
		Tenant:     result.Tenant,
		APIBaseURL: result.APIBaseURL,
		SessionKey: result.Session.Key,
	})
}

// Logout destroys the current session and clears both cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if key, err := h.transport.GetKey(r); err == nil {
		if err := h.service.Logout(r.Context(), key); err != nil {
			h.log.ErrorContext(r.Context(), "logout failed", logger.Error(err))
		}
	}
	_ = h.transport.ClearKey(w)
	h.cookies.Delete(w, h.tenantCfg.HintCookie)

	core.JSONMessage(w, http.StatusOK, "logged out", nil)
}

// Token issues a bearer token pair for the authenticated identity.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		core.JSONError(w, core.ErrUnauthorized)
		return
	}

	pair, err := h.service.IssueTokenPair(id)
	if err != nil {
		h.log.ErrorContext(r.Context(), "issue token pair", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	core.JSON(w, http.StatusOK, pair)
}

type debugSignals struct {
	Header     string `json:"header,omitempty"`
	HintCookie string `json:"hint_cookie,omitempty"`
	Query      string `json:"query,omitempty"`
	Hostname   string `json:"hostname"`
}

type debugResponse struct {
	TenantSchema string         `json:"tenant_schema"`
	TenantName   string         `json:"tenant_name"`
	Signals      debugSignals   `json:"signals"`
	Identity     *auth.Identity `json:"identity,omitempty"`
}

// Debug reports how the request resolved: which tenant, which signals
// were presented, which identity authenticated. Intended for operators
// diagnosing resolution issues.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	resp := debugResponse{
		TenantSchema: t.SchemaID,
		TenantName:   t.Name,
		Signals: debugSignals{
			Header:   r.Header.Get(h.tenantCfg.HeaderName),
			Query:    r.URL.Query().Get(h.tenantCfg.QueryParam),
			Hostname: r.Host,
		},
	}
	if hint, err := h.cookies.GetEncrypted(r, h.tenantCfg.HintCookie); err == nil {
		resp.Signals.HintCookie = hint
	}
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		resp.Identity = id
	}
	core.JSON(w, http.StatusOK, resp)
}

// CreateUser creates a user in the resolved tenant. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var params CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	user, err := h.service.CreateUser(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired), errors.Is(err, auth.ErrInvalidCredentials):
			core.JSONError(w, core.ErrUnprocessableEntity)
		case errors.Is(err, ErrUsernameTaken):
			core.JSONError(w, core.ErrConflict)
		default:
			h.log.ErrorContext(r.Context(), "create user", logger.Error(err))
			core.JSONError(w, core.ErrInternalServerError)
		}
		return
	}
	core.JSON(w, http.StatusCreated, user)
}

// ListUsers lists the resolved tenant's users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "list users", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	core.JSON(w, http.StatusOK, users)
}

// Catalog lists every capability in the catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, rbac.All())
}

// UserCapabilities lists a user's granted capabilities.
func (h *Handler) UserCapabilities(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	caps, err := h.service.UserCapabilities(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list capabilities", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	core.JSON(w, http.StatusOK, caps)
}

type grantRequest struct {
	Capability string `json:"capability"`
}

// Grant adds a capability to a user.
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	c := rbac.Capability(req.Capability)
	if !c.IsValid() {
		core.JSONError(w, core.ErrUnprocessableEntity)
		return
	}

	if err := h.service.Grant(r.Context(), userID, c); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			core.JSONError(w, core.ErrNotFound)
		default:
			h.log.ErrorContext(r.Context(), "grant capability", logger.Error(err))
			core.JSONError(w, core.ErrInternalServerError)
		}
		return
	}
	core.JSONMessage(w, http.StatusOK, "capability granted", nil)
}

// Revoke removes a capability from a user.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	if err := h.service.Revoke(r.Context(), userID, rbac.Capability(req.Capability)); err != nil {
		h.log.ErrorContext(r.Context(), "revoke capability", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	core.JSONMessage(w, http.StatusOK, "capability revoked", nil)
}
