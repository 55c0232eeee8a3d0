package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
)

// Payment types and modes mirror the dealership's paper process:
// purchase payments go to sellers, selling payments come from buyers.
const (
	PaymentTypePurchase = "purchase"
	PaymentTypeSelling  = "selling"
)

// Payment is a tenant-partitioned installment against a vehicle.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	Type      string    `json:"type"`
	Mode      string    `json:"mode"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Remark    string    `json:"remark"`
	CreatedAt time.Time `json:"created_at"`
}

const paymentColumns = `id, vehicle_id, type, mode, amount, paid_at, remark, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.VehicleID, &p.Type, &p.Mode, &p.Amount, &p.PaidAt, &p.Remark, &p.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return &p, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()

	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.VehicleID, p.Type, p.Mode, p.Amount, p.PaidAt, p.Remark, p.CreatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := s.db(ctx).QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

// ListPaymentsForVehicle returns payments against one vehicle, oldest
// first.
func (s *Store) ListPaymentsForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*Payment, error) {
	rows, err := s.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE vehicle_id = $1 ORDER BY paid_at`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePayment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
