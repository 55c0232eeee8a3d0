package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
)

// Invoice statuses.
const (
	InvoiceDraft  = "draft"
	InvoiceIssued = "issued"
	InvoicePaid   = "paid"
)

// Invoice is a tenant-partitioned sale invoice.
type Invoice struct {
	ID           uuid.UUID  `json:"id"`
	Number       string     `json:"number"`
	VehicleID    *uuid.UUID `json:"vehicle_id,omitempty"`
	CustomerName string     `json:"customer_name"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	IssuedAt     time.Time  `json:"issued_at"`
	DueAt        time.Time  `json:"due_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

const invoiceColumns = `id, number, vehicle_id, customer_name, amount, status, issued_at, due_at, created_at`

func scanInvoice(row interface{ Scan(...any) error }) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.VehicleID, &inv.CustomerName, &inv.Amount, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = InvoiceDraft
	}
	inv.CreatedAt = time.Now()

	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.Number, inv.VehicleID, inv.CustomerName, inv.Amount, inv.Status, inv.IssuedAt, inv.DueAt, inv.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	row := s.db(ctx).QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

func (s *Store) ListInvoices(ctx context.Context) ([]*Invoice, error) {
	rows, err := s.db(ctx).Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// SetInvoiceStatus transitions an invoice between draft, issued, and
// paid.
func (s *Store) SetInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.db(ctx).Exec(ctx, `UPDATE invoices SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
