package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meterdesk/internal/domain"
)

func (r *Repos) ListMeters(ctx context.Context) ([]domain.Meter, error) {
	var out []domain.Meter
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, account_number, subscriber_name, meter_number, address, feeder, created_at
		 FROM meters ORDER BY subscriber_name`)
	return out, err
}

// ListAssignableMeters returns meters with no outstanding PENDING task.
// A completed history does not block reassignment.
func (r *Repos) ListAssignableMeters(ctx context.Context) ([]domain.Meter, error) {
	var out []domain.Meter
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, account_number, subscriber_name, meter_number, address, feeder, created_at
		 FROM meters
		 WHERE id NOT IN (SELECT meter_id FROM tasks WHERE status = 'PENDING')
		 ORDER BY subscriber_name`)
	return out, err
}

func (r *Repos) GetMeter(ctx context.Context, id string) (*domain.Meter, error) {
	var m domain.Meter
	err := r.db.GetContext(ctx, &m,
		`SELECT id, account_number, subscriber_name, meter_number, address, feeder, created_at
		 FROM meters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("meter %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repos) InsertMeter(ctx context.Context, m *domain.Meter) (*domain.Meter, error) {
	var out domain.Meter
	err := r.db.GetContext(ctx, &out,
		`INSERT INTO meters (account_number, subscriber_name, meter_number, address, feeder)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, account_number, subscriber_name, meter_number, address, feeder, created_at`,
		m.AccountNumber, m.SubscriberName, m.MeterNumber, m.Address, m.Feeder)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *Repos) UpdateMeter(ctx context.Context, m *domain.Meter) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meters SET account_number = $1, subscriber_name = $2, meter_number = $3, address = $4, feeder = $5
		 WHERE id = $6`,
		m.AccountNumber, m.SubscriberName, m.MeterNumber, m.Address, m.Feeder, m.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meter %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repos) DeleteMeter(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meters WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meter %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
