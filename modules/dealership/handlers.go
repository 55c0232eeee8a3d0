package dealership

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
	"github.com/dealerdesk/dealerdesk/pkg/logger"
)

// Handler exposes the dealership service over HTTP.
type Handler struct {
	service *Service
	log     *slog.Logger
}

// NewHandler creates the dealership HTTP handler.
func NewHandler(service *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{service: service, log: log}
}

// writeError maps service and storage failures onto the HTTP error
// catalog.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		core.JSONError(w, core.ErrNotFound)
	case errors.Is(err, storage.ErrDuplicate):
		core.JSONError(w, core.ErrConflict)
	case errors.Is(err, ErrInvalidInventoryStatus),
		errors.Is(err, ErrInvalidPaymentType),
		errors.Is(err, ErrInvalidInvoiceStatus),
		errors.Is(err, ErrInvoiceNumberRequired):
		core.JSONError(w, core.NewHTTPError(http.StatusUnprocessableEntity, err.Error()))
	default:
		h.log.ErrorContext(r.Context(), "dealership request failed",
			logger.Error(err),
			logger.Component("dealership"),
		)
		core.JSONError(w, core.ErrInternalServerError)
	}
}

func pathID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListVehicles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, vehicles)
}

func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var v storage.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	// Record who added the vehicle when an identity is present.
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		v.AddedBy = &id.UserID
	}

	if err := h.service.CreateVehicle(r.Context(), &v); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, &v)
}

func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	v, err := h.service.GetVehicle(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, v)
}

func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	var v storage.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	v.ID = id

	if err := h.service.UpdateVehicle(r.Context(), &v); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, &v)
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	if err := h.service.DeleteVehicle(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSONMessage(w, http.StatusOK, "vehicle deleted", nil)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	payments, err := h.service.ListPayments(r.Context(), vehicleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, payments)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	var p storage.Payment
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	p.VehicleID = vehicleID

	if err := h.service.RecordPayment(r.Context(), &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, &p)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "paymentID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSONMessage(w, http.StatusOK, "payment deleted", nil)
}

func (h *Handler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	records, err := h.service.ListMaintenance(r.Context(), vehicleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, records)
}

func (h *Handler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r, "vehicleID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	var m storage.MaintenanceRecord
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	m.VehicleID = vehicleID

	if err := h.service.RecordMaintenance(r.Context(), &m); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, &m)
}

func (h *Handler) DeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "maintenanceID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	if err := h.service.DeleteMaintenance(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSONMessage(w, http.StatusOK, "maintenance record deleted", nil)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv storage.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	if err := h.service.CreateInvoice(r.Context(), &inv); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusCreated, &inv)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "invoiceID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSON(w, http.StatusOK, inv)
}

type invoiceStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "invoiceID")
	if !ok {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	var req invoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	if err := h.service.SetInvoiceStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}
	core.JSONMessage(w, http.StatusOK, "invoice status updated", nil)
}
