package service

import (
	"context"
	"time"

	"meterdesk/internal/domain"
	"meterdesk/internal/repository"
)

// Store interfaces are satisfied by *repository.Repos; tests substitute
// in-memory fakes.

type MeterStore interface {
	ListMeters(ctx context.Context) ([]domain.Meter, error)
	ListAssignableMeters(ctx context.Context) ([]domain.Meter, error)
	GetMeter(ctx context.Context, id string) (*domain.Meter, error)
	InsertMeter(ctx context.Context, m *domain.Meter) (*domain.Meter, error)
	UpdateMeter(ctx context.Context, m *domain.Meter) error
	DeleteMeter(ctx context.Context, id string) error
}

type TaskStore interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListTasksForUser(ctx context.Context, userID string) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	InsertTaskBatch(ctx context.Context, meterIDs []string, assigneeID, assignerID string, taskDate time.Time) ([]domain.Task, error)
	CompleteTask(ctx context.Context, id string, reading float64, photoKey *string, lat, lng float64, completedAt time.Time) error
	UpdateTask(ctx context.Context, id string, u repository.TaskUpdate) error
	DeleteTask(ctx context.Context, id string) error
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	InsertUser(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, u repository.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
}

type ReadingStore interface {
	ListSubscriberReadings(ctx context.Context, recordedBy string) ([]domain.SubscriberReading, error)
	GetSubscriberReading(ctx context.Context, id string) (*domain.SubscriberReading, error)
	InsertSubscriberReading(ctx context.Context, s *domain.SubscriberReading) (*domain.SubscriberReading, error)
	UpdateSubscriberReading(ctx context.Context, s *domain.SubscriberReading) error
	DeleteSubscriberReading(ctx context.Context, id string) error
	ListFeederReadings(ctx context.Context, recordedBy, feeder string) ([]domain.FeederReading, error)
	GetFeederReading(ctx context.Context, id string) (*domain.FeederReading, error)
	InsertFeederReading(ctx context.Context, f *domain.FeederReading) (*domain.FeederReading, error)
	UpdateFeederReading(ctx context.Context, f *domain.FeederReading) error
	DeleteFeederReading(ctx context.Context, id string) error
	ListReceiptRecords(ctx context.Context, recordedBy, registry string) ([]domain.ReceiptRecord, error)
	GetReceiptRecord(ctx context.Context, id string) (*domain.ReceiptRecord, error)
	InsertReceiptRecord(ctx context.Context, rec *domain.ReceiptRecord) (*domain.ReceiptRecord, error)
	UpdateReceiptRecord(ctx context.Context, rec *domain.ReceiptRecord) error
	DeleteReceiptRecord(ctx context.Context, id string) error
}

// BlobStore is the photo storage surface, satisfied by cloud.PhotoStore.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Services struct {
	Tasks    *TaskService
	Meters   *MeterService
	Users    *UserService
	Readings *ReadingService
}

func New(repos *repository.Repos, photos BlobStore, photoURLTTL time.Duration) *Services {
	return &Services{
		Tasks:    NewTaskService(repos, repos, repos, photos, photoURLTTL),
		Meters:   &MeterService{meters: repos},
		Users:    &UserService{users: repos},
		Readings: &ReadingService{store: repos},
	}
}
