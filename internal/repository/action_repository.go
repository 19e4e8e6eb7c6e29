package repository

import (
	"context"
	"fmt"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

type ActionRepository interface {
	LoadActions(ctx context.Context, userID string) ([]entity.UserAction, error)
	SaveActions(ctx context.Context, userID string, actions []entity.UserAction) error
	// LoadIntegrity returns nil, nil when no score was stored yet.
	LoadIntegrity(ctx context.Context, userID string) (*int, error)
	SaveIntegrity(ctx context.Context, userID string, score int) error
}

type actionRepository struct {
	store DocumentStore
}

func NewActionRepository(store DocumentStore) ActionRepository {
	return &actionRepository{store: store}
}

func (r *actionRepository) LoadActions(ctx context.Context, userID string) ([]entity.UserAction, error) {
	var actions []entity.UserAction
	if _, err := load(ctx, r.store, keyActionLog+userID, &actions); err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	return actions, nil
}

func (r *actionRepository) SaveActions(ctx context.Context, userID string, actions []entity.UserAction) error {
	if err := r.store.Put(ctx, keyActionLog+userID, actions); err != nil {
		return fmt.Errorf("failed to save actions: %w", err)
	}
	return nil
}

func (r *actionRepository) LoadIntegrity(ctx context.Context, userID string) (*int, error) {
	var score int
	found, err := load(ctx, r.store, keyActionIntegrity+userID, &score)
	if err != nil {
		return nil, fmt.Errorf("failed to load integrity score: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &score, nil
}

func (r *actionRepository) SaveIntegrity(ctx context.Context, userID string, score int) error {
	if err := r.store.Put(ctx, keyActionIntegrity+userID, score); err != nil {
		return fmt.Errorf("failed to save integrity score: %w", err)
	}
	return nil
}
