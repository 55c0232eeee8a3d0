package dealership

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// InventoryStore is the storage surface the dealership module drives.
// Every call runs inside a tenant scope.
type InventoryStore interface {
	CreateVehicle(ctx context.Context, v *storage.Vehicle) error
	GetVehicle(ctx context.Context, id uuid.UUID) (*storage.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*storage.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *storage.Vehicle) error
	DeleteVehicle(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, p *storage.Payment) error
	ListPaymentsForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*storage.Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error

	CreateMaintenanceRecord(ctx context.Context, m *storage.MaintenanceRecord) error
	ListMaintenanceForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*storage.MaintenanceRecord, error)
	DeleteMaintenanceRecord(ctx context.Context, id uuid.UUID) error

	CreateInvoice(ctx context.Context, inv *storage.Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*storage.Invoice, error)
	ListInvoices(ctx context.Context) ([]*storage.Invoice, error)
	SetInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Service runs dealership inventory operations inside the resolved
// tenant's scope.
type Service struct {
	store InventoryStore
	scope tenant.Scope
	log   *slog.Logger
}

// NewService creates the dealership service.
func NewService(store InventoryStore, scope tenant.Scope, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, scope: scope, log: log}
}

// run executes fn in the scope of the tenant carried by ctx.
func (s *Service) run(ctx context.Context, fn func(ctx context.Context) error) error {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	return s.scope.RunInTenant(ctx, t, fn)
}

func (s *Service) CreateVehicle(ctx context.Context, v *storage.Vehicle) error {
	if v.InventoryStatus == "" {
		v.InventoryStatus = storage.InventoryIn
	}
	if v.InventoryStatus != storage.InventoryIn && v.InventoryStatus != storage.InventoryOut {
		return ErrInvalidInventoryStatus
	}
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.CreateVehicle(ctx, v)
	})
}

func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*storage.Vehicle, error) {
	var v *storage.Vehicle
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.store.GetVehicle(ctx, id)
		return err
	})
	return v, err
}

func (s *Service) ListVehicles(ctx context.Context) ([]*storage.Vehicle, error) {
	var out []*storage.Vehicle
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.store.ListVehicles(ctx)
		return err
	})
	return out, err
}

func (s *Service) UpdateVehicle(ctx context.Context, v *storage.Vehicle) error {
	if v.InventoryStatus != storage.InventoryIn && v.InventoryStatus != storage.InventoryOut {
		return ErrInvalidInventoryStatus
	}
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.UpdateVehicle(ctx, v)
	})
}

func (s *Service) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.DeleteVehicle(ctx, id)
	})
}

func (s *Service) RecordPayment(ctx context.Context, p *storage.Payment) error {
	if p.Type != storage.PaymentTypePurchase && p.Type != storage.PaymentTypeSelling {
		return ErrInvalidPaymentType
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.CreatePayment(ctx, p)
	})
}

func (s *Service) ListPayments(ctx context.Context, vehicleID uuid.UUID) ([]*storage.Payment, error) {
	var out []*storage.Payment
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.store.ListPaymentsForVehicle(ctx, vehicleID)
		return err
	})
	return out, err
}

func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.DeletePayment(ctx, id)
	})
}

func (s *Service) RecordMaintenance(ctx context.Context, m *storage.MaintenanceRecord) error {
	if m.PerformedAt.IsZero() {
		m.PerformedAt = time.Now()
	}
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.CreateMaintenanceRecord(ctx, m)
	})
}

func (s *Service) ListMaintenance(ctx context.Context, vehicleID uuid.UUID) ([]*storage.MaintenanceRecord, error) {
	var out []*storage.MaintenanceRecord
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.store.ListMaintenanceForVehicle(ctx, vehicleID)
		return err
	})
	return out, err
}

func (s *Service) DeleteMaintenance(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.DeleteMaintenanceRecord(ctx, id)
	})
}

func (s *Service) CreateInvoice(ctx context.Context, inv *storage.Invoice) error {
	if inv.Number == "" {
		return ErrInvoiceNumberRequired
	}
	if inv.Status != "" && !validInvoiceStatus(inv.Status) {
		return ErrInvalidInvoiceStatus
	}
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.CreateInvoice(ctx, inv)
	})
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*storage.Invoice, error) {
	var inv *storage.Invoice
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.store.GetInvoice(ctx, id)
		return err
	})
	return inv, err
}

func (s *Service) ListInvoices(ctx context.Context) ([]*storage.Invoice, error) {
	var out []*storage.Invoice
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.store.ListInvoices(ctx)
		return err
	})
	return out, err
}

func (s *Service) SetInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validInvoiceStatus(status) {
		return ErrInvalidInvoiceStatus
	}
	return s.run(ctx, func(ctx context.Context) error {
		return s.store.SetInvoiceStatus(ctx, id, status)
	})
}

func validInvoiceStatus(status string) bool {
	switch status {
	case storage.InvoiceDraft, storage.InvoiceIssued, storage.InvoicePaid:
		return true
	}
	return false
}
