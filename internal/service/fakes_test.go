package service

import (
	"context"
	"fmt"
	"time"

	"meterdesk/internal/domain"
	"meterdesk/internal/repository"
)

// fakeStore is an in-memory stand-in for repository.Repos. It mirrors the
// store-level guarantees the real schema provides: the write-time
// exclusivity re-check in InsertTaskBatch, the status guard in
// CompleteTask, and the partial unique index on pending tasks.
type fakeStore struct {
	meters  map[string]domain.Meter
	tasks   map[string]domain.Task
	users   map[string]domain.User
	subs    map[string]domain.SubscriberReading
	feeders map[string]domain.FeederReading
	records map[string]domain.ReceiptRecord
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meters:  map[string]domain.Meter{},
		tasks:   map[string]domain.Task{},
		users:   map[string]domain.User{},
		subs:    map[string]domain.SubscriberReading{},
		feeders: map[string]domain.FeederReading{},
		records: map[string]domain.ReceiptRecord{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) addMeter(name string) domain.Meter {
	m := domain.Meter{
		ID:             f.nextID("meter"),
		AccountNumber:  "AC-" + name,
		SubscriberName: name,
		MeterNumber:    "MN-" + name,
		CreatedAt:      time.Now(),
	}
	f.meters[m.ID] = m
	return m
}

func (f *fakeStore) addUser(username string, role domain.Role, active bool) domain.User {
	u := domain.User{
		ID:       f.nextID("user"),
		Username: username,
		Role:     role,
		IsActive: active,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addTask(meterID, assigneeID string, status domain.TaskStatus) domain.Task {
	t := domain.Task{
		ID:               f.nextID("task"),
		MeterID:          meterID,
		AssignedUserID:   assigneeID,
		AssignedByUserID: "user-admin",
		TaskDate:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:           status,
		CreatedAt:        time.Now(),
	}
	f.tasks[t.ID] = t
	return t
}

func (f *fakeStore) pendingMeterIDs() map[string]bool {
	out := map[string]bool{}
	for _, t := range f.tasks {
		if t.Status == domain.TaskPending {
			out[t.MeterID] = true
		}
	}
	return out
}

// MeterStore

func (f *fakeStore) ListMeters(ctx context.Context) ([]domain.Meter, error) {
	out := make([]domain.Meter, 0, len(f.meters))
	for _, m := range f.meters {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) ListAssignableMeters(ctx context.Context) ([]domain.Meter, error) {
	pending := f.pendingMeterIDs()
	var out []domain.Meter
	for _, m := range f.meters {
		if !pending[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMeter(ctx context.Context, id string) (*domain.Meter, error) {
	m, ok := f.meters[id]
	if !ok {
		return nil, fmt.Errorf("meter %s: %w", id, domain.ErrNotFound)
	}
	return &m, nil
}

func (f *fakeStore) InsertMeter(ctx context.Context, m *domain.Meter) (*domain.Meter, error) {
	out := *m
	out.ID = f.nextID("meter")
	out.CreatedAt = time.Now()
	f.meters[out.ID] = out
	return &out, nil
}

func (f *fakeStore) UpdateMeter(ctx context.Context, m *domain.Meter) error {
	if _, ok := f.meters[m.ID]; !ok {
		return fmt.Errorf("meter %s: %w", m.ID, domain.ErrNotFound)
	}
	f.meters[m.ID] = *m
	return nil
}

func (f *fakeStore) DeleteMeter(ctx context.Context, id string) error {
	if _, ok := f.meters[id]; !ok {
		return fmt.Errorf("meter %s: %w", id, domain.ErrNotFound)
	}
	delete(f.meters, id)
	return nil
}

// TaskStore

func (f *fakeStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) ListTasksForUser(ctx context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range f.tasks {
		if t.AssignedUserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (f *fakeStore) InsertTaskBatch(ctx context.Context, meterIDs []string, assigneeID, assignerID string, taskDate time.Time) ([]domain.Task, error) {
	pending := f.pendingMeterIDs()
	for _, id := range meterIDs {
		if pending[id] {
			return nil, fmt.Errorf("meters already assigned (%s): %w", id, domain.ErrConflict)
		}
	}
	out := make([]domain.Task, 0, len(meterIDs))
	for _, meterID := range meterIDs {
		t := domain.Task{
			ID:               f.nextID("task"),
			MeterID:          meterID,
			AssignedUserID:   assigneeID,
			AssignedByUserID: assignerID,
			TaskDate:         taskDate,
			Status:           domain.TaskPending,
			CreatedAt:        time.Now(),
		}
		f.tasks[t.ID] = t
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) CompleteTask(ctx context.Context, id string, reading float64, photoKey *string, lat, lng float64, completedAt time.Time) error {
	t, ok := f.tasks[id]
	if !ok || t.Status != domain.TaskPending {
		return fmt.Errorf("task %s is not pending: %w", id, domain.ErrConflict)
	}
	t.Status = domain.TaskCompleted
	t.MeterReading = &reading
	t.PhotoKey = photoKey
	t.LocationLat = &lat
	t.LocationLng = &lng
	t.CompletedAt = &completedAt
	f.tasks[id] = t
	return nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, id string, u repository.TaskUpdate) error {
	t, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	if u.Status != nil && *u.Status == domain.TaskPending && t.Status != domain.TaskPending {
		// Partial unique index: one pending task per meter.
		if f.pendingMeterIDs()[t.MeterID] {
			return domain.ErrConflict
		}
	}
	if u.AssignedUserID != nil {
		t.AssignedUserID = *u.AssignedUserID
	}
	if u.TaskDate != nil {
		t.TaskDate = *u.TaskDate
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.MeterReading != nil {
		t.MeterReading = u.MeterReading
	}
	f.tasks[id] = t
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	delete(f.tasks, id)
	return nil
}

// UserStore

func (f *fakeStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

func (f *fakeStore) InsertUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	out := *u
	out.ID = f.nextID("user")
	out.CreatedAt = time.Now()
	f.users[out.ID] = out
	return &out, nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, id string, u repository.UserUpdate) error {
	existing, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if u.PasswordHash != nil {
		existing.PasswordHash = *u.PasswordHash
	}
	if u.Role != nil {
		existing.Role = *u.Role
	}
	if u.FullName != nil {
		existing.FullName = *u.FullName
	}
	if u.Department != nil {
		existing.Department = *u.Department
	}
	if u.Position != nil {
		existing.Position = *u.Position
	}
	if u.IsActive != nil {
		existing.IsActive = *u.IsActive
	}
	f.users[id] = existing
	return nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(f.users, id)
	return nil
}

// ReadingStore

func (f *fakeStore) addFeederReading(recordedBy, feeder string) domain.FeederReading {
	r := domain.FeederReading{
		ID:               f.nextID("feeder"),
		Station:          "north",
		Feeder:           feeder,
		MeterNumber:      "FM-" + feeder,
		Reading:          100,
		ReadingDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RecordedByUserID: recordedBy,
		CreatedAt:        time.Now(),
	}
	f.feeders[r.ID] = r
	return r
}

func (f *fakeStore) addReceiptRecord(recordedBy, registry string) domain.ReceiptRecord {
	r := domain.ReceiptRecord{
		ID:               f.nextID("record"),
		Registry:         registry,
		RecordType:       "receipt",
		SubscribersCount: 10,
		RecordedByUserID: recordedBy,
		CreatedAt:        time.Now(),
	}
	f.records[r.ID] = r
	return r
}

func (f *fakeStore) ListSubscriberReadings(ctx context.Context, recordedBy string) ([]domain.SubscriberReading, error) {
	var out []domain.SubscriberReading
	for _, s := range f.subs {
		if recordedBy == "" || s.RecordedByUserID == recordedBy {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSubscriberReading(ctx context.Context, id string) (*domain.SubscriberReading, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, fmt.Errorf("subscriber reading %s: %w", id, domain.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeStore) InsertSubscriberReading(ctx context.Context, s *domain.SubscriberReading) (*domain.SubscriberReading, error) {
	out := *s
	out.ID = f.nextID("sub")
	out.CreatedAt = time.Now()
	f.subs[out.ID] = out
	return &out, nil
}

func (f *fakeStore) UpdateSubscriberReading(ctx context.Context, s *domain.SubscriberReading) error {
	existing, ok := f.subs[s.ID]
	if !ok {
		return fmt.Errorf("subscriber reading %s: %w", s.ID, domain.ErrNotFound)
	}
	updated := *s
	updated.RecordedByUserID = existing.RecordedByUserID
	f.subs[s.ID] = updated
	return nil
}

func (f *fakeStore) DeleteSubscriberReading(ctx context.Context, id string) error {
	if _, ok := f.subs[id]; !ok {
		return fmt.Errorf("subscriber reading %s: %w", id, domain.ErrNotFound)
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeStore) ListFeederReadings(ctx context.Context, recordedBy, feeder string) ([]domain.FeederReading, error) {
	var out []domain.FeederReading
	for _, r := range f.feeders {
		if recordedBy != "" && r.RecordedByUserID != recordedBy {
			continue
		}
		if feeder != "" && r.Feeder != feeder {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) GetFeederReading(ctx context.Context, id string) (*domain.FeederReading, error) {
	r, ok := f.feeders[id]
	if !ok {
		return nil, fmt.Errorf("feeder reading %s: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (f *fakeStore) InsertFeederReading(ctx context.Context, r *domain.FeederReading) (*domain.FeederReading, error) {
	out := *r
	out.ID = f.nextID("feeder")
	out.CreatedAt = time.Now()
	f.feeders[out.ID] = out
	return &out, nil
}

func (f *fakeStore) UpdateFeederReading(ctx context.Context, r *domain.FeederReading) error {
	existing, ok := f.feeders[r.ID]
	if !ok {
		return fmt.Errorf("feeder reading %s: %w", r.ID, domain.ErrNotFound)
	}
	updated := *r
	updated.RecordedByUserID = existing.RecordedByUserID
	f.feeders[r.ID] = updated
	return nil
}

func (f *fakeStore) DeleteFeederReading(ctx context.Context, id string) error {
	if _, ok := f.feeders[id]; !ok {
		return fmt.Errorf("feeder reading %s: %w", id, domain.ErrNotFound)
	}
	delete(f.feeders, id)
	return nil
}

func (f *fakeStore) ListReceiptRecords(ctx context.Context, recordedBy, registry string) ([]domain.ReceiptRecord, error) {
	var out []domain.ReceiptRecord
	for _, r := range f.records {
		if recordedBy != "" && r.RecordedByUserID != recordedBy {
			continue
		}
		if registry != "" && r.Registry != registry {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) GetReceiptRecord(ctx context.Context, id string) (*domain.ReceiptRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (f *fakeStore) InsertReceiptRecord(ctx context.Context, r *domain.ReceiptRecord) (*domain.ReceiptRecord, error) {
	out := *r
	out.ID = f.nextID("record")
	out.CreatedAt = time.Now()
	f.records[out.ID] = out
	return &out, nil
}

func (f *fakeStore) UpdateReceiptRecord(ctx context.Context, r *domain.ReceiptRecord) error {
	existing, ok := f.records[r.ID]
	if !ok {
		return fmt.Errorf("record %s: %w", r.ID, domain.ErrNotFound)
	}
	updated := *r
	updated.RecordedByUserID = existing.RecordedByUserID
	f.records[r.ID] = updated
	return nil
}

func (f *fakeStore) DeleteReceiptRecord(ctx context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	delete(f.records, id)
	return nil
}

// fakeBlobStore records uploads and can be told to fail.
type fakeBlobStore struct {
	objects    map[string][]byte
	failUpload bool
	failDelete bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if f.failUpload {
		return fmt.Errorf("upload refused")
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", fmt.Errorf("no such object %s", key)
	}
	return "https://blob.example/" + key + "?signed=1", nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return fmt.Errorf("delete refused")
	}
	delete(f.objects, key)
	return nil
}
