package dealership_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/modules/dealership"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

type fakeScope struct{}

func (fakeScope) RunInTenant(ctx context.Context, t *tenant.Tenant, fn func(ctx context.Context) error) error {
	return fn(tenant.WithTenant(ctx, t))
}

// memStore partitions records by the tenant on the context, so a test
// can assert that two dealerships never see each other's rows.
type memStore struct {
	mu          sync.Mutex
	vehicles    map[string]map[uuid.UUID]*storage.Vehicle
	payments    map[string]map[uuid.UUID]*storage.Payment
	maintenance map[string]map[uuid.UUID]*storage.MaintenanceRecord
	invoices    map[string]map[uuid.UUID]*storage.Invoice
}

func newMemStore() *memStore {
	return &memStore{
		vehicles:    make(map[string]map[uuid.UUID]*storage.Vehicle),
		payments:    make(map[string]map[uuid.UUID]*storage.Payment),
		maintenance: make(map[string]map[uuid.UUID]*storage.MaintenanceRecord),
		invoices:    make(map[string]map[uuid.UUID]*storage.Invoice),
	}
}

func schemaOf(ctx context.Context) string {
	schema, _ := tenant.SchemaFromContext(ctx)
	return schema
}

func part[T any](m map[string]map[uuid.UUID]T, schema string) map[uuid.UUID]T {
	if m[schema] == nil {
		m[schema] = make(map[uuid.UUID]T)
	}
	return m[schema]
}

func (s *memStore) CreateVehicle(ctx context.Context, v *storage.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	vehicles := part(s.vehicles, schemaOf(ctx))
	for _, existing := range vehicles {
		if existing.LicensePlate == v.LicensePlate {
			return storage.ErrDuplicate
		}
	}
	vehicles[v.ID] = v
	return nil
}

func (s *memStore) GetVehicle(ctx context.Context, id uuid.UUID) (*storage.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := part(s.vehicles, schemaOf(ctx))[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (s *memStore) ListVehicles(ctx context.Context) ([]*storage.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*storage.Vehicle
	for _, v := range part(s.vehicles, schemaOf(ctx)) {
		out = append(out, v)
	}
	return out, nil
}

func (s *memStore) UpdateVehicle(ctx context.Context, v *storage.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicles := part(s.vehicles, schemaOf(ctx))
	if _, ok := vehicles[v.ID]; !ok {
		return storage.ErrNotFound
	}
	vehicles[v.ID] = v
	return nil
}

func (s *memStore) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicles := part(s.vehicles, schemaOf(ctx))
	if _, ok := vehicles[id]; !ok {
		return storage.ErrNotFound
	}
	delete(vehicles, id)
	return nil
}

func (s *memStore) CreatePayment(ctx context.Context, p *storage.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := part(s.vehicles, schemaOf(ctx))[p.VehicleID]; !ok {
		return storage.ErrNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	part(s.payments, schemaOf(ctx))[p.ID] = p
	return nil
}

func (s *memStore) ListPaymentsForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*storage.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*storage.Payment
	for _, p := range part(s.payments, schemaOf(ctx)) {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payments := part(s.payments, schemaOf(ctx))
	if _, ok := payments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(payments, id)
	return nil
}

func (s *memStore) CreateMaintenanceRecord(ctx context.Context, m *storage.MaintenanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := part(s.vehicles, schemaOf(ctx))[m.VehicleID]; !ok {
		return storage.ErrNotFound
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	part(s.maintenance, schemaOf(ctx))[m.ID] = m
	return nil
}

func (s *memStore) ListMaintenanceForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*storage.MaintenanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*storage.MaintenanceRecord
	for _, m := range part(s.maintenance, schemaOf(ctx)) {
		if m.VehicleID == vehicleID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) DeleteMaintenanceRecord(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := part(s.maintenance, schemaOf(ctx))
	if _, ok := records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(records, id)
	return nil
}

func (s *memStore) CreateInvoice(ctx context.Context, inv *storage.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = storage.InvoiceDraft
	}
	invoices := part(s.invoices, schemaOf(ctx))
	for _, existing := range invoices {
		if existing.Number == inv.Number {
			return storage.ErrDuplicate
		}
	}
	invoices[inv.ID] = inv
	return nil
}

func (s *memStore) GetInvoice(ctx context.Context, id uuid.UUID) (*storage.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := part(s.invoices, schemaOf(ctx))[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return inv, nil
}

func (s *memStore) ListInvoices(ctx context.Context) ([]*storage.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*storage.Invoice
	for _, inv := range part(s.invoices, schemaOf(ctx)) {
		out = append(out, inv)
	}
	return out, nil
}

func (s *memStore) SetInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := part(s.invoices, schemaOf(ctx))[id]
	if !ok {
		return storage.ErrNotFound
	}
	inv.Status = status
	return nil
}

func testContext(schema string) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{
		SchemaID: schema,
		Name:     schema,
		Active:   true,
	})
}

func TestVehicleLifecycle(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	ctx := testContext("north")

	v := &storage.Vehicle{Make: "Toyota", Model: "Hilux", Year: 2019, LicensePlate: "NA-1234"}
	require.NoError(t, svc.CreateVehicle(ctx, v))
	assert.Equal(t, storage.InventoryIn, v.InventoryStatus, "new vehicles default to IN")

	got, err := svc.GetVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hilux", got.Model)

	v.InventoryStatus = storage.InventoryOut
	v.OdometerKM = 120000
	require.NoError(t, svc.UpdateVehicle(ctx, v))

	got, err = svc.GetVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.InventoryOut, got.InventoryStatus)

	require.NoError(t, svc.DeleteVehicle(ctx, v.ID))
	_, err = svc.GetVehicle(ctx, v.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVehicleValidation(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	ctx := testContext("north")

	err := svc.CreateVehicle(ctx, &storage.Vehicle{InventoryStatus: "PENDING"})
	assert.ErrorIs(t, err, dealership.ErrInvalidInventoryStatus)

	err = svc.UpdateVehicle(ctx, &storage.Vehicle{ID: uuid.New(), InventoryStatus: "SOLD"})
	assert.ErrorIs(t, err, dealership.ErrInvalidInventoryStatus)
}

func TestTenantPartitioning(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	north := testContext("north")
	south := testContext("south")

	v := &storage.Vehicle{Make: "Honda", Model: "Civic", LicensePlate: "NB-5678"}
	require.NoError(t, svc.CreateVehicle(north, v))

	// South never sees north's inventory.
	_, err := svc.GetVehicle(south, v.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	southList, err := svc.ListVehicles(south)
	require.NoError(t, err)
	assert.Empty(t, southList)

	// The same plate can exist in another dealership.
	assert.NoError(t, svc.CreateVehicle(south, &storage.Vehicle{Make: "Honda", LicensePlate: "NB-5678"}))
}

func TestNoTenantInContext(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)

	err := svc.CreateVehicle(context.Background(), &storage.Vehicle{})
	assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)

	_, err = svc.ListInvoices(context.Background())
	assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
}

func TestPayments(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	ctx := testContext("north")

	v := &storage.Vehicle{Make: "Ford", LicensePlate: "NC-0001"}
	require.NoError(t, svc.CreateVehicle(ctx, v))

	p := &storage.Payment{VehicleID: v.ID, Type: storage.PaymentTypePurchase, Mode: "bank", Amount: 15000}
	require.NoError(t, svc.RecordPayment(ctx, p))
	assert.False(t, p.PaidAt.IsZero(), "paid_at defaults to now")

	err := svc.RecordPayment(ctx, &storage.Payment{VehicleID: v.ID, Type: "refund", Amount: 10})
	assert.ErrorIs(t, err, dealership.ErrInvalidPaymentType)

	err = svc.RecordPayment(ctx, &storage.Payment{VehicleID: uuid.New(), Type: storage.PaymentTypeSelling, Amount: 10})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	payments, err := svc.ListPayments(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	require.NoError(t, svc.DeletePayment(ctx, p.ID))
	payments, err = svc.ListPayments(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestMaintenance(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	ctx := testContext("north")

	v := &storage.Vehicle{Make: "Nissan", LicensePlate: "ND-0002"}
	require.NoError(t, svc.CreateVehicle(ctx, v))

	m := &storage.MaintenanceRecord{
		VehicleID:       v.ID,
		MaintenanceType: "oil change",
		Cost:            120,
		PersonInCharge:  "Garage A",
		PaymentMode:     "cash",
	}
	require.NoError(t, svc.RecordMaintenance(ctx, m))
	assert.False(t, m.PerformedAt.IsZero())

	records, err := svc.ListMaintenance(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, svc.DeleteMaintenance(ctx, m.ID))
}

func TestInvoices(t *testing.T) {
	t.Parallel()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	ctx := testContext("north")

	inv := &storage.Invoice{
		Number:       "INV-2026-001",
		CustomerName: "J. Mwangi",
		Amount:       18500,
		IssuedAt:     time.Now(),
		DueAt:        time.Now().AddDate(0, 1, 0),
	}
	require.NoError(t, svc.CreateInvoice(ctx, inv))
	assert.Equal(t, storage.InvoiceDraft, inv.Status, "new invoices default to draft")

	err := svc.CreateInvoice(ctx, &storage.Invoice{CustomerName: "no number"})
	assert.ErrorIs(t, err, dealership.ErrInvoiceNumberRequired)

	err = svc.CreateInvoice(ctx, &storage.Invoice{Number: "INV-2026-002", Status: "void"})
	assert.ErrorIs(t, err, dealership.ErrInvalidInvoiceStatus)

	err = svc.CreateInvoice(ctx, &storage.Invoice{Number: "INV-2026-001"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	require.NoError(t, svc.SetInvoiceStatus(ctx, inv.ID, storage.InvoiceIssued))
	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.InvoiceIssued, got.Status)

	err = svc.SetInvoiceStatus(ctx, inv.ID, "cancelled")
	assert.ErrorIs(t, err, dealership.ErrInvalidInvoiceStatus)
}
