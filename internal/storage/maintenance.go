package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
)

// MaintenanceRecord is a tenant-partitioned service entry for a
// vehicle.
type MaintenanceRecord struct {
	ID              uuid.UUID `json:"id"`
	VehicleID       uuid.UUID `json:"vehicle_id"`
	MaintenanceType string    `json:"maintenance_type"`
	PerformedAt     time.Time `json:"performed_at"`
	Cost            float64   `json:"cost"`
	PersonInCharge  string    `json:"person_in_charge"`
	PaymentMode     string    `json:"payment_mode"`
	CreatedAt       time.Time `json:"created_at"`
}

const maintenanceColumns = `id, vehicle_id, maintenance_type, performed_at, cost, person_in_charge, payment_mode, created_at`

func scanMaintenance(row interface{ Scan(...any) error }) (*MaintenanceRecord, error) {
	var m MaintenanceRecord
	err := row.Scan(&m.ID, &m.VehicleID, &m.MaintenanceType, &m.PerformedAt, &m.Cost, &m.PersonInCharge, &m.PaymentMode, &m.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan maintenance record: %w", err)
	}
	return &m, nil
}

func (s *Store) CreateMaintenanceRecord(ctx context.Context, m *MaintenanceRecord) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()

	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO maintenance_records (`+maintenanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.VehicleID, m.MaintenanceType, m.PerformedAt, m.Cost, m.PersonInCharge, m.PaymentMode, m.CreatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create maintenance record: %w", err)
	}
	return nil
}

func (s *Store) ListMaintenanceForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*MaintenanceRecord, error) {
	rows, err := s.db(ctx).Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE vehicle_id = $1 ORDER BY performed_at DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance records: %w", err)
	}
	defer rows.Close()

	var out []*MaintenanceRecord
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) DeleteMaintenanceRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM maintenance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete maintenance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
