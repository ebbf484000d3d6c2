package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meterdesk/internal/domain"
)

const subscriberColumns = `id, account_number, subscriber_name, subscription_class, meter_number,
	reading, reading_date, photo_key, recorded_by_user_id, created_at`

func (r *Repos) ListSubscriberReadings(ctx context.Context, recordedBy string) ([]domain.SubscriberReading, error) {
	var out []domain.SubscriberReading
	if recordedBy == "" {
		err := r.db.SelectContext(ctx, &out,
			`SELECT `+subscriberColumns+` FROM subscriber_readings ORDER BY reading_date DESC, created_at DESC`)
		return out, err
	}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+subscriberColumns+` FROM subscriber_readings
		 WHERE recorded_by_user_id = $1 ORDER BY reading_date DESC, created_at DESC`, recordedBy)
	return out, err
}

func (r *Repos) GetSubscriberReading(ctx context.Context, id string) (*domain.SubscriberReading, error) {
	var s domain.SubscriberReading
	err := r.db.GetContext(ctx, &s,
		`SELECT `+subscriberColumns+` FROM subscriber_readings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscriber reading %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repos) InsertSubscriberReading(ctx context.Context, s *domain.SubscriberReading) (*domain.SubscriberReading, error) {
	var out domain.SubscriberReading
	err := r.db.GetContext(ctx, &out,
		`INSERT INTO subscriber_readings
		 (account_number, subscriber_name, subscription_class, meter_number, reading, reading_date, photo_key, recorded_by_user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+subscriberColumns,
		s.AccountNumber, s.SubscriberName, s.SubscriptionClass, s.MeterNumber,
		s.Reading, s.ReadingDate, s.PhotoKey, s.RecordedByUserID)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *Repos) UpdateSubscriberReading(ctx context.Context, s *domain.SubscriberReading) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriber_readings
		 SET account_number = $1, subscriber_name = $2, subscription_class = $3, meter_number = $4,
		     reading = $5, reading_date = $6, photo_key = $7
		 WHERE id = $8`,
		s.AccountNumber, s.SubscriberName, s.SubscriptionClass, s.MeterNumber,
		s.Reading, s.ReadingDate, s.PhotoKey, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscriber reading %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repos) DeleteSubscriberReading(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriber_readings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscriber reading %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

const feederColumns = `id, station, feeder, voltage, meter_number, meter_type,
	reading, reading_date, photo_key, recorded_by_user_id, created_at`

// ListFeederReadings scopes by recorder and optionally filters on the
// feeder label; empty arguments mean no restriction.
func (r *Repos) ListFeederReadings(ctx context.Context, recordedBy, feeder string) ([]domain.FeederReading, error) {
	query := `SELECT ` + feederColumns + ` FROM feeder_readings`
	var where []string
	var args []interface{}
	if recordedBy != "" {
		args = append(args, recordedBy)
		where = append(where, fmt.Sprintf("recorded_by_user_id = $%d", len(args)))
	}
	if feeder != "" {
		args = append(args, feeder)
		where = append(where, fmt.Sprintf("feeder = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY reading_date DESC, created_at DESC"

	var out []domain.FeederReading
	err := r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}

func (r *Repos) GetFeederReading(ctx context.Context, id string) (*domain.FeederReading, error) {
	var f domain.FeederReading
	err := r.db.GetContext(ctx, &f,
		`SELECT `+feederColumns+` FROM feeder_readings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feeder reading %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repos) InsertFeederReading(ctx context.Context, f *domain.FeederReading) (*domain.FeederReading, error) {
	var out domain.FeederReading
	err := r.db.GetContext(ctx, &out,
		`INSERT INTO feeder_readings
		 (station, feeder, voltage, meter_number, meter_type, reading, reading_date, photo_key, recorded_by_user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+feederColumns,
		f.Station, f.Feeder, f.Voltage, f.MeterNumber, f.MeterType,
		f.Reading, f.ReadingDate, f.PhotoKey, f.RecordedByUserID)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *Repos) UpdateFeederReading(ctx context.Context, f *domain.FeederReading) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE feeder_readings
		 SET station = $1, feeder = $2, voltage = $3, meter_number = $4, meter_type = $5,
		     reading = $6, reading_date = $7, photo_key = $8
		 WHERE id = $9`,
		f.Station, f.Feeder, f.Voltage, f.MeterNumber, f.MeterType,
		f.Reading, f.ReadingDate, f.PhotoKey, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("feeder reading %s: %w", f.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repos) DeleteFeederReading(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeder_readings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("feeder reading %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

const recordColumns = `id, registry, record_type, area, subscribers_count, recorded_by_user_id, created_at`

// ListReceiptRecords scopes by recorder and optionally filters on the
// registry; empty arguments mean no restriction.
func (r *Repos) ListReceiptRecords(ctx context.Context, recordedBy, registry string) ([]domain.ReceiptRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM receipt_records`
	var where []string
	var args []interface{}
	if recordedBy != "" {
		args = append(args, recordedBy)
		where = append(where, fmt.Sprintf("recorded_by_user_id = $%d", len(args)))
	}
	if registry != "" {
		args = append(args, registry)
		where = append(where, fmt.Sprintf("registry = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var out []domain.ReceiptRecord
	err := r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}

func (r *Repos) GetReceiptRecord(ctx context.Context, id string) (*domain.ReceiptRecord, error) {
	var rec domain.ReceiptRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT `+recordColumns+` FROM receipt_records WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repos) InsertReceiptRecord(ctx context.Context, rec *domain.ReceiptRecord) (*domain.ReceiptRecord, error) {
	var out domain.ReceiptRecord
	err := r.db.GetContext(ctx, &out,
		`INSERT INTO receipt_records (registry, record_type, area, subscribers_count, recorded_by_user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+recordColumns,
		rec.Registry, rec.RecordType, rec.Area, rec.SubscribersCount, rec.RecordedByUserID)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *Repos) UpdateReceiptRecord(ctx context.Context, rec *domain.ReceiptRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receipt_records SET registry = $1, record_type = $2, area = $3, subscribers_count = $4
		 WHERE id = $5`,
		rec.Registry, rec.RecordType, rec.Area, rec.SubscribersCount, rec.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repos) DeleteReceiptRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM receipt_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
