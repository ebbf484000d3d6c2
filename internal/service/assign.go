package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"meterdesk/internal/domain"
	"meterdesk/internal/repository"
)

// TaskService implements the task assignment and fulfillment workflow:
// which meters may receive a new assignment, batch creation, and
// completion submissions with their geolocation requirement.
type TaskService struct {
	meters   MeterStore
	tasks    TaskStore
	users    UserStore
	photos   BlobStore
	photoTTL time.Duration
	now      func() time.Time
}

func NewTaskService(meters MeterStore, tasks TaskStore, users UserStore, photos BlobStore, photoTTL time.Duration) *TaskService {
	return &TaskService{
		meters:   meters,
		tasks:    tasks,
		users:    users,
		photos:   photos,
		photoTTL: photoTTL,
		now:      time.Now,
	}
}

// ListAssignable returns the meters that may safely receive a new PENDING
// task. Meters whose entire history is COMPLETED are assignable again;
// only an outstanding PENDING task excludes a meter.
func (s *TaskService) ListAssignable(ctx context.Context, actor domain.Actor) ([]domain.Meter, error) {
	if !canManageTasks(actor) {
		return nil, fmt.Errorf("only administrators assign tasks: %w", domain.ErrForbidden)
	}
	return s.meters.ListAssignableMeters(ctx)
}

// List returns tasks visible to the actor: all for admins, own
// assignments for field roles.
func (s *TaskService) List(ctx context.Context, actor domain.Actor) ([]domain.Task, error) {
	if actor.Role == domain.RoleAdmin {
		return s.tasks.ListTasks(ctx)
	}
	return s.tasks.ListTasksForUser(ctx, actor.ID)
}

func (s *TaskService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewTask(actor, t) {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrForbidden)
	}
	return t, nil
}

// CreateBatch inserts one PENDING task per selected meter for one
// assignee and one date. The store re-checks meter exclusivity inside the
// insert transaction, so the whole batch succeeds or nothing is written.
func (s *TaskService) CreateBatch(ctx context.Context, actor domain.Actor, meterIDs []string, assigneeID string, taskDate time.Time) ([]domain.Task, error) {
	if !canManageTasks(actor) {
		return nil, fmt.Errorf("only administrators assign tasks: %w", domain.ErrForbidden)
	}
	if len(meterIDs) == 0 {
		return nil, fmt.Errorf("no meters selected: %w", domain.ErrValidation)
	}
	seen := make(map[string]bool, len(meterIDs))
	for _, id := range meterIDs {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("duplicate or empty meter id in selection: %w", domain.ErrValidation)
		}
		seen[id] = true
	}
	if taskDate.IsZero() {
		return nil, fmt.Errorf("task date is required: %w", domain.ErrValidation)
	}

	assignee, err := s.users.GetUser(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if !assignee.IsActive {
		return nil, fmt.Errorf("assignee %s is inactive: %w", assignee.Username, domain.ErrValidation)
	}
	if assignee.Role == domain.RoleAdmin {
		return nil, fmt.Errorf("tasks are assigned to field users, not administrators: %w", domain.ErrValidation)
	}

	created, err := s.tasks.InsertTaskBatch(ctx, meterIDs, assigneeID, actor.ID, taskDate)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(created)).Str("assignee", assignee.Username).Msg("task batch created")
	return created, nil
}

// UploadPhoto stores a meter photograph and returns its blob reference.
// The upload is an independent, retryable step; completion accepts the
// returned key but never requires one.
func (s *TaskService) UploadPhoto(ctx context.Context, actor domain.Actor, taskID, filename string, data []byte, contentType string) (string, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	if !canViewTask(actor, t) {
		return "", fmt.Errorf("task %s: %w", taskID, domain.ErrForbidden)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty photo: %w", domain.ErrValidation)
	}
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("tasks/task-%s-%s%s", taskID, uuid.NewString(), ext)
	if err := s.photos.Upload(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Completion carries a field submission. PhotoKey, when set, must come
// from a prior UploadPhoto call.
type Completion struct {
	MeterReading float64
	PhotoKey     *string
	LocationLat  *float64
	LocationLng  *float64
}

// Complete transitions a PENDING task to COMPLETED. Geolocation is
// mandatory; submissions without both coordinates are rejected before any
// write. A photo is best-effort and never blocks completion.
func (s *TaskService) Complete(ctx context.Context, actor domain.Actor, taskID string, c Completion) (*domain.Task, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canCompleteTask(actor, t) {
		return nil, fmt.Errorf("task %s is not assigned to you: %w", taskID, domain.ErrForbidden)
	}
	if t.Status != domain.TaskPending {
		return nil, fmt.Errorf("task %s is already completed: %w", taskID, domain.ErrConflict)
	}
	if c.LocationLat == nil || c.LocationLng == nil {
		return nil, fmt.Errorf("location is required to complete a task: %w", domain.ErrValidation)
	}
	if c.MeterReading < 0 {
		return nil, fmt.Errorf("meter reading must not be negative: %w", domain.ErrValidation)
	}

	completedAt := s.now()
	if err := s.tasks.CompleteTask(ctx, taskID, c.MeterReading, c.PhotoKey, *c.LocationLat, *c.LocationLng, completedAt); err != nil {
		return nil, err
	}
	return s.tasks.GetTask(ctx, taskID)
}

// PhotoURL returns a time-limited retrieval URL for a task photo.
func (s *TaskService) PhotoURL(ctx context.Context, actor domain.Actor, taskID string) (string, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	if !canViewTask(actor, t) {
		return "", fmt.Errorf("task %s: %w", taskID, domain.ErrForbidden)
	}
	if t.PhotoKey == nil {
		return "", fmt.Errorf("task %s has no photo: %w", taskID, domain.ErrNotFound)
	}
	return s.photos.SignedURL(ctx, *t.PhotoKey, s.photoTTL)
}

// Edit is the administrative override. It performs no invariant
// enforcement of its own; flipping a task back to PENDING next to an
// existing PENDING task for the same meter is rejected by the store's
// partial unique index and surfaces as a conflict for the administrator
// to resolve.
func (s *TaskService) Edit(ctx context.Context, actor domain.Actor, taskID string, u repository.TaskUpdate) (*domain.Task, error) {
	if !canManageTasks(actor) {
		return nil, fmt.Errorf("only administrators edit tasks: %w", domain.ErrForbidden)
	}
	if u.Status != nil && *u.Status != domain.TaskPending && *u.Status != domain.TaskCompleted {
		return nil, fmt.Errorf("unknown status %q: %w", *u.Status, domain.ErrValidation)
	}
	if err := s.tasks.UpdateTask(ctx, taskID, u); err != nil {
		return nil, err
	}
	return s.tasks.GetTask(ctx, taskID)
}

// Delete removes a task and, best-effort, its stored photo. A failed
// blob delete only leaves an orphaned object behind, so it is logged
// rather than surfaced.
func (s *TaskService) Delete(ctx context.Context, actor domain.Actor, taskID string) error {
	if !canManageTasks(actor) {
		return fmt.Errorf("only administrators delete tasks: %w", domain.ErrForbidden)
	}
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	if t.PhotoKey != nil {
		if err := s.photos.Delete(ctx, *t.PhotoKey); err != nil {
			log.Warn().Err(err).Str("task", taskID).Str("key", *t.PhotoKey).Msg("photo cleanup failed")
		}
	}
	return nil
}

// ExportRows collects the rows and lookup indexes the tasks report joins
// over. The full user list goes into the join, so this is admin only and
// the check runs before any query.
func (s *TaskService) ExportRows(ctx context.Context, actor domain.Actor) ([]domain.Task, map[string]domain.Meter, map[string]domain.User, error) {
	if !canManageTasks(actor) {
		return nil, nil, nil, fmt.Errorf("only administrators export the tasks report: %w", domain.ErrForbidden)
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	meters, err := s.meters.ListMeters(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	meterIndex := make(map[string]domain.Meter, len(meters))
	for _, m := range meters {
		meterIndex[m.ID] = m
	}
	userIndex := make(map[string]domain.User, len(users))
	for _, u := range users {
		userIndex[u.ID] = u
	}
	return tasks, meterIndex, userIndex, nil
}
