package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"meterdesk/internal/config"
)

func Connect() (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(2)
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS app_users (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS meters (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	account_number TEXT NOT NULL,
	subscriber_name TEXT NOT NULL,
	meter_number TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	feeder TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	meter_id UUID NOT NULL REFERENCES meters(id) ON DELETE CASCADE,
	assigned_user_id UUID NOT NULL REFERENCES app_users(id),
	assigned_by_user_id UUID NOT NULL REFERENCES app_users(id),
	task_date DATE NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	meter_reading DOUBLE PRECISION,
	photo_key TEXT,
	location_lat DOUBLE PRECISION,
	location_lng DOUBLE PRECISION,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- One outstanding PENDING task per meter, enforced at the store level.
CREATE UNIQUE INDEX IF NOT EXISTS tasks_one_pending_per_meter
	ON tasks (meter_id) WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS subscriber_readings (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	account_number TEXT NOT NULL,
	subscriber_name TEXT NOT NULL,
	subscription_class TEXT NOT NULL DEFAULT '',
	meter_number TEXT NOT NULL,
	reading DOUBLE PRECISION NOT NULL DEFAULT 0,
	reading_date DATE NOT NULL,
	photo_key TEXT,
	recorded_by_user_id UUID NOT NULL REFERENCES app_users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS feeder_readings (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	station TEXT NOT NULL,
	feeder TEXT NOT NULL,
	voltage TEXT NOT NULL DEFAULT '',
	meter_number TEXT NOT NULL,
	meter_type TEXT NOT NULL DEFAULT '',
	reading DOUBLE PRECISION NOT NULL DEFAULT 0,
	reading_date DATE NOT NULL,
	photo_key TEXT,
	recorded_by_user_id UUID NOT NULL REFERENCES app_users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS receipt_records (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	registry TEXT NOT NULL,
	record_type TEXT NOT NULL DEFAULT '',
	area TEXT NOT NULL DEFAULT '',
	subscribers_count INTEGER NOT NULL DEFAULT 0,
	recorded_by_user_id UUID NOT NULL REFERENCES app_users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the schema idempotently on boot.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return err
}
