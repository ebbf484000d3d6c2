package service

import (
	"context"
	"fmt"

	"meterdesk/internal/domain"
)

// MeterService covers registry maintenance. Every authenticated role may
// read the registry; only administrators mutate it.
type MeterService struct {
	meters MeterStore
}

func (s *MeterService) List(ctx context.Context, actor domain.Actor) ([]domain.Meter, error) {
	return s.meters.ListMeters(ctx)
}

func (s *MeterService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Meter, error) {
	return s.meters.GetMeter(ctx, id)
}

func (s *MeterService) Create(ctx context.Context, actor domain.Actor, m *domain.Meter) (*domain.Meter, error) {
	if !canManageMeters(actor) {
		return nil, fmt.Errorf("only administrators manage meters: %w", domain.ErrForbidden)
	}
	if m.AccountNumber == "" || m.MeterNumber == "" || m.SubscriberName == "" {
		return nil, fmt.Errorf("account number, meter number and subscriber name are required: %w", domain.ErrValidation)
	}
	return s.meters.InsertMeter(ctx, m)
}

func (s *MeterService) Update(ctx context.Context, actor domain.Actor, m *domain.Meter) error {
	if !canManageMeters(actor) {
		return fmt.Errorf("only administrators manage meters: %w", domain.ErrForbidden)
	}
	if m.AccountNumber == "" || m.MeterNumber == "" || m.SubscriberName == "" {
		return fmt.Errorf("account number, meter number and subscriber name are required: %w", domain.ErrValidation)
	}
	return s.meters.UpdateMeter(ctx, m)
}

func (s *MeterService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !canManageMeters(actor) {
		return fmt.Errorf("only administrators manage meters: %w", domain.ErrForbidden)
	}
	return s.meters.DeleteMeter(ctx, id)
}

// BulkImport inserts a batch of meters from a spreadsheet import. Rows
// are validated up front; a bad row rejects the whole import so a re-run
// never duplicates the good half.
func (s *MeterService) BulkImport(ctx context.Context, actor domain.Actor, meters []domain.Meter) (int, error) {
	if !canManageMeters(actor) {
		return 0, fmt.Errorf("only administrators manage meters: %w", domain.ErrForbidden)
	}
	if len(meters) == 0 {
		return 0, fmt.Errorf("no rows to import: %w", domain.ErrValidation)
	}
	for i := range meters {
		if meters[i].AccountNumber == "" || meters[i].MeterNumber == "" || meters[i].SubscriberName == "" {
			return 0, fmt.Errorf("row %d is missing required fields: %w", i+1, domain.ErrValidation)
		}
	}
	count := 0
	for i := range meters {
		if _, err := s.meters.InsertMeter(ctx, &meters[i]); err != nil {
			return count, fmt.Errorf("row %d: %w", i+1, err)
		}
		count++
	}
	return count, nil
}
