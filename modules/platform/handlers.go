package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dealerdesk/dealerdesk/core"
	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/pkg/logger"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// TenantProvisioner is the provisioning surface the platform
// endpoints drive. Implemented by storage.Provisioner.
type TenantProvisioner interface {
	CreateTenant(ctx context.Context, schemaID, name, hostname string) (*tenant.Tenant, error)
	AddDomain(ctx context.Context, hostname, schemaID string, isPrimary bool) error
}

// Handler exposes the platform administration endpoints: tenant
// provisioning and the domain directory. Served only under the admin
// path prefix, against the public tenant.
type Handler struct {
	provisioner TenantProvisioner
	dir         tenant.Directory
	log         *slog.Logger
}

// NewHandler creates the platform admin handler.
func NewHandler(provisioner TenantProvisioner, dir tenant.Directory, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{provisioner: provisioner, dir: dir, log: log}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrSchemaExists), errors.Is(err, storage.ErrDuplicate):
		core.JSONError(w, core.ErrConflict)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, tenant.ErrTenantNotFound):
		core.JSONError(w, core.ErrNotFound)
	case errors.Is(err, storage.ErrInvalidSchemaID):
		core.JSONError(w, core.NewHTTPError(http.StatusUnprocessableEntity, err.Error()))
	default:
		h.log.ErrorContext(r.Context(), "platform request failed",
			logger.Error(err),
			logger.Component("platform"),
		)
		core.JSONError(w, core.ErrInternalServerError)
	}
}

// ListTenants returns the active dealerships in creation order.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.dir.ListActive(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, tenants)
}

type createTenantRequest struct {
	SchemaID string `json:"schema_id"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

// CreateTenant provisions a dealership: directory row, primary domain,
// schema, migrations.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	t, err := h.provisioner.CreateTenant(r.Context(), req.SchemaID, req.Name, req.Hostname)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, t)
}

type addDomainRequest struct {
	Hostname  string `json:"hostname"`
	IsPrimary bool   `json:"is_primary"`
}

// AddDomain attaches a hostname to a tenant, optionally promoting it
// to primary.
func (h *Handler) AddDomain(w http.ResponseWriter, r *http.Request) {
	schemaID := chi.URLParam(r, "schemaID")

	var req addDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	if err := h.provisioner.AddDomain(r.Context(), req.Hostname, schemaID, req.IsPrimary); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSONMessage(w, http.StatusCreated, "domain added", nil)
}
