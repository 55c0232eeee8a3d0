package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
)

// Inventory status values.
const (
	InventoryIn  = "IN"
	InventoryOut = "OUT"
)

// Vehicle is a tenant-partitioned inventory record.
type Vehicle struct {
	ID              uuid.UUID  `json:"id"`
	VehicleType     string     `json:"vehicle_type"`
	Make            string     `json:"make"`
	Model           string     `json:"model"`
	Year            int        `json:"year"`
	LicensePlate    string     `json:"license_plate"`
	ChassisNumber   string     `json:"chassis_number"`
	OdometerKM      int        `json:"odometer_km"`
	Color           string     `json:"color"`
	FuelType        string     `json:"fuel_type"`
	Transmission    string     `json:"transmission"`
	InventoryStatus string     `json:"inventory_status"`
	PurchasePrice   float64    `json:"purchase_price"`
	SellingEstimate float64    `json:"selling_estimate"`
	Notes           string     `json:"notes"`
	AddedBy         *uuid.UUID `json:"added_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const vehicleColumns = `id, vehicle_type, make, model, year, license_plate, chassis_number,
	odometer_km, color, fuel_type, transmission, inventory_status,
	purchase_price, selling_estimate, notes, added_by, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.VehicleType, &v.Make, &v.Model, &v.Year, &v.LicensePlate, &v.ChassisNumber,
		&v.OdometerKM, &v.Color, &v.FuelType, &v.Transmission, &v.InventoryStatus,
		&v.PurchasePrice, &v.SellingEstimate, &v.Notes, &v.AddedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	return &v, nil
}

func (s *Store) CreateVehicle(ctx context.Context, v *Vehicle) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.InventoryStatus == "" {
		v.InventoryStatus = InventoryIn
	}
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		v.ID, v.VehicleType, v.Make, v.Model, v.Year, v.LicensePlate, v.ChassisNumber,
		v.OdometerKM, v.Color, v.FuelType, v.Transmission, v.InventoryStatus,
		v.PurchasePrice, v.SellingEstimate, v.Notes, v.AddedBy, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

func (s *Store) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	row := s.db(ctx).QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicle(row)
}

func (s *Store) ListVehicles(ctx context.Context) ([]*Vehicle, error) {
	rows, err := s.db(ctx).Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	v.UpdatedAt = time.Now()

	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE vehicles SET
			vehicle_type = $2, make = $3, model = $4, year = $5, license_plate = $6,
			chassis_number = $7, odometer_km = $8, color = $9, fuel_type = $10,
			transmission = $11, inventory_status = $12, purchase_price = $13,
			selling_estimate = $14, notes = $15, updated_at = $16
		WHERE id = $1`,
		v.ID, v.VehicleType, v.Make, v.Model, v.Year, v.LicensePlate,
		v.ChassisNumber, v.OdometerKM, v.Color, v.FuelType,
		v.Transmission, v.InventoryStatus, v.PurchasePrice,
		v.SellingEstimate, v.Notes, v.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
