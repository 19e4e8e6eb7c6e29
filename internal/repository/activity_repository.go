package repository

import (
	"context"
	"fmt"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

type ActivityRepository interface {
	LoadEvents(ctx context.Context, userID string) ([]entity.ActivityEvent, error)
	SaveEvents(ctx context.Context, userID string, events []entity.ActivityEvent) error
	// LoadPermissions returns nil, nil when the user never stored permissions.
	LoadPermissions(ctx context.Context, userID string) (*entity.MonitoringPermissions, error)
	SavePermissions(ctx context.Context, userID string, permissions entity.MonitoringPermissions) error
}

type activityRepository struct {
	store DocumentStore
}

func NewActivityRepository(store DocumentStore) ActivityRepository {
	return &activityRepository{store: store}
}

func (r *activityRepository) LoadEvents(ctx context.Context, userID string) ([]entity.ActivityEvent, error) {
	var events []entity.ActivityEvent
	if _, err := load(ctx, r.store, keyActivityEvents+userID, &events); err != nil {
		return nil, fmt.Errorf("failed to load activity events: %w", err)
	}
	return events, nil
}

func (r *activityRepository) SaveEvents(ctx context.Context, userID string, events []entity.ActivityEvent) error {
	if err := r.store.Put(ctx, keyActivityEvents+userID, events); err != nil {
		return fmt.Errorf("failed to save activity events: %w", err)
	}
	return nil
}

func (r *activityRepository) LoadPermissions(ctx context.Context, userID string) (*entity.MonitoringPermissions, error) {
	var permissions entity.MonitoringPermissions
	found, err := load(ctx, r.store, keyActivityPermissions+userID, &permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &permissions, nil
}

func (r *activityRepository) SavePermissions(ctx context.Context, userID string, permissions entity.MonitoringPermissions) error {
	if err := r.store.Put(ctx, keyActivityPermissions+userID, permissions); err != nil {
		return fmt.Errorf("failed to save permissions: %w", err)
	}
	return nil
}
