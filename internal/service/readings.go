package service

import (
	"context"
	"fmt"

	"meterdesk/internal/domain"
)

// ReadingService covers the field data-entry tables: subscriber readings,
// feeder readings and receipt records. Field users work on their own
// rows; admins see everything.
type ReadingService struct {
	store ReadingStore
}

func (s *ReadingService) scope(actor domain.Actor) string {
	if actor.Role == domain.RoleAdmin {
		return ""
	}
	return actor.ID
}

func (s *ReadingService) ListSubscriberReadings(ctx context.Context, actor domain.Actor) ([]domain.SubscriberReading, error) {
	return s.store.ListSubscriberReadings(ctx, s.scope(actor))
}

func (s *ReadingService) CreateSubscriberReading(ctx context.Context, actor domain.Actor, in *domain.SubscriberReading) (*domain.SubscriberReading, error) {
	if in.AccountNumber == "" || in.MeterNumber == "" {
		return nil, fmt.Errorf("account number and meter number are required: %w", domain.ErrValidation)
	}
	if in.Reading < 0 {
		return nil, fmt.Errorf("reading must not be negative: %w", domain.ErrValidation)
	}
	in.RecordedByUserID = actor.ID
	return s.store.InsertSubscriberReading(ctx, in)
}

func (s *ReadingService) UpdateSubscriberReading(ctx context.Context, actor domain.Actor, in *domain.SubscriberReading) error {
	existing, err := s.store.GetSubscriberReading(ctx, in.ID)
	if err != nil {
		return err
	}
	if !canEditReading(actor, existing.RecordedByUserID) {
		return fmt.Errorf("subscriber reading %s: %w", in.ID, domain.ErrForbidden)
	}
	if in.Reading < 0 {
		return fmt.Errorf("reading must not be negative: %w", domain.ErrValidation)
	}
	return s.store.UpdateSubscriberReading(ctx, in)
}

func (s *ReadingService) DeleteSubscriberReading(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := s.store.GetSubscriberReading(ctx, id)
	if err != nil {
		return err
	}
	if !canEditReading(actor, existing.RecordedByUserID) {
		return fmt.Errorf("subscriber reading %s: %w", id, domain.ErrForbidden)
	}
	return s.store.DeleteSubscriberReading(ctx, id)
}

// ListFeederReadings narrows to one feeder when the filter is non-empty.
func (s *ReadingService) ListFeederReadings(ctx context.Context, actor domain.Actor, feeder string) ([]domain.FeederReading, error) {
	return s.store.ListFeederReadings(ctx, s.scope(actor), feeder)
}

func (s *ReadingService) CreateFeederReading(ctx context.Context, actor domain.Actor, in *domain.FeederReading) (*domain.FeederReading, error) {
	if in.Station == "" || in.Feeder == "" || in.MeterNumber == "" {
		return nil, fmt.Errorf("station, feeder and meter number are required: %w", domain.ErrValidation)
	}
	if in.Reading < 0 {
		return nil, fmt.Errorf("reading must not be negative: %w", domain.ErrValidation)
	}
	in.RecordedByUserID = actor.ID
	return s.store.InsertFeederReading(ctx, in)
}

func (s *ReadingService) UpdateFeederReading(ctx context.Context, actor domain.Actor, in *domain.FeederReading) error {
	existing, err := s.store.GetFeederReading(ctx, in.ID)
	if err != nil {
		return err
	}
	if !canEditReading(actor, existing.RecordedByUserID) {
		return fmt.Errorf("feeder reading %s: %w", in.ID, domain.ErrForbidden)
	}
	if in.Reading < 0 {
		return fmt.Errorf("reading must not be negative: %w", domain.ErrValidation)
	}
	return s.store.UpdateFeederReading(ctx, in)
}

func (s *ReadingService) DeleteFeederReading(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := s.store.GetFeederReading(ctx, id)
	if err != nil {
		return err
	}
	if !canEditReading(actor, existing.RecordedByUserID) {
		return fmt.Errorf("feeder reading %s: %w", id, domain.ErrForbidden)
	}
	return s.store.DeleteFeederReading(ctx, id)
}

// ListReceiptRecords narrows to one registry when the filter is non-empty.
func (s *ReadingService) ListReceiptRecords(ctx context.Context, actor domain.Actor, registry string) ([]domain.ReceiptRecord, error) {
	return s.store.ListReceiptRecords(ctx, s.scope(actor), registry)
}

func (s *ReadingService) CreateReceiptRecord(ctx context.Context, actor domain.Actor, in *domain.ReceiptRecord) (*domain.ReceiptRecord, error) {
	if in.Registry == "" {
		return nil, fmt.Errorf("registry is required: %w", domain.ErrValidation)
	}
	if in.SubscribersCount < 0 {
		return nil, fmt.Errorf("subscribers count must not be negative: %w", domain.ErrValidation)
	}
	in.RecordedByUserID = actor.ID
	return s.store.InsertReceiptRecord(ctx, in)
}

func (s *ReadingService) UpdateReceiptRecord(ctx context.Context, actor domain.Actor, in *domain.ReceiptRecord) error {
	existing, err := s.store.GetReceiptRecord(ctx, in.ID)
	if err != nil {
		return err
	}
	if !canEditReading(actor, existing.RecordedByUserID) {
		return fmt.Errorf("record %s: %w", in.ID, domain.ErrForbidden)
	}
	return s.store.UpdateReceiptRecord(ctx, in)
}

func (s *ReadingService) DeleteReceiptRecord(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := s.store.GetReceiptRecord(ctx, id)
	if err != nil {
		return err
	}
	if !canEditReading(actor, existing.RecordedByUserID) {
		return fmt.Errorf("record %s: %w", id, domain.ErrForbidden)
	}
	return s.store.DeleteReceiptRecord(ctx, id)
}
