package domain

import "time"

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleEmployee      Role = "EMPLOYEE"
	RoleMeterReader   Role = "METER_READER"
	RoleGeneralReader Role = "GENERAL_READER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleMeterReader, RoleGeneralReader:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskCompleted TaskStatus = "COMPLETED"
)

// Actor is the authenticated caller threaded through every operation.
type Actor struct {
	ID       string
	Username string
	Role     Role
}

type Meter struct {
	ID             string    `db:"id" json:"id"`
	AccountNumber  string    `db:"account_number" json:"account_number"`
	SubscriberName string    `db:"subscriber_name" json:"subscriber_name"`
	MeterNumber    string    `db:"meter_number" json:"meter_number"`
	Address        string    `db:"address" json:"address"`
	Feeder         string    `db:"feeder" json:"feeder"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Task assigns the reading of one meter to one user on one date.
// Completion fields stay null until the assignee submits.
type Task struct {
	ID               string     `db:"id" json:"id"`
	MeterID          string     `db:"meter_id" json:"meter_id"`
	AssignedUserID   string     `db:"assigned_user_id" json:"assigned_user_id"`
	AssignedByUserID string     `db:"assigned_by_user_id" json:"assigned_by_user_id"`
	TaskDate         time.Time  `db:"task_date" json:"task_date"`
	Status           TaskStatus `db:"status" json:"status"`
	MeterReading     *float64   `db:"meter_reading" json:"meter_reading,omitempty"`
	PhotoKey         *string    `db:"photo_key" json:"photo_key,omitempty"`
	LocationLat      *float64   `db:"location_lat" json:"location_lat,omitempty"`
	LocationLng      *float64   `db:"location_lng" json:"location_lng,omitempty"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	FullName     string    `db:"full_name" json:"full_name"`
	Department   string    `db:"department" json:"department"`
	Position     string    `db:"position" json:"position"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type SubscriberReading struct {
	ID                string    `db:"id" json:"id"`
	AccountNumber     string    `db:"account_number" json:"account_number"`
	SubscriberName    string    `db:"subscriber_name" json:"subscriber_name"`
	SubscriptionClass string    `db:"subscription_class" json:"subscription_class"`
	MeterNumber       string    `db:"meter_number" json:"meter_number"`
	Reading           float64   `db:"reading" json:"reading"`
	ReadingDate       time.Time `db:"reading_date" json:"reading_date"`
	PhotoKey          *string   `db:"photo_key" json:"photo_key,omitempty"`
	RecordedByUserID  string    `db:"recorded_by_user_id" json:"recorded_by_user_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type FeederReading struct {
	ID               string    `db:"id" json:"id"`
	Station          string    `db:"station" json:"station"`
	Feeder           string    `db:"feeder" json:"feeder"`
	Voltage          string    `db:"voltage" json:"voltage"`
	MeterNumber      string    `db:"meter_number" json:"meter_number"`
	MeterType        string    `db:"meter_type" json:"meter_type"`
	Reading          float64   `db:"reading" json:"reading"`
	ReadingDate      time.Time `db:"reading_date" json:"reading_date"`
	PhotoKey         *string   `db:"photo_key" json:"photo_key,omitempty"`
	RecordedByUserID string    `db:"recorded_by_user_id" json:"recorded_by_user_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type ReceiptRecord struct {
	ID               string    `db:"id" json:"id"`
	Registry         string    `db:"registry" json:"registry"`
	RecordType       string    `db:"record_type" json:"record_type"`
	Area             string    `db:"area" json:"area"`
	SubscribersCount int       `db:"subscribers_count" json:"subscribers_count"`
	RecordedByUserID string    `db:"recorded_by_user_id" json:"recorded_by_user_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
