package repository

import (
	"context"
	"fmt"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

const MaxFocusSessions = 100

type FocusRepository interface {
	// AppendSession stores record, keeping only the most recent MaxFocusSessions.
	AppendSession(ctx context.Context, userID string, record entity.FocusSessionRecord) error
	// ListSessions returns stored sessions newest first.
	ListSessions(ctx context.Context, userID string) ([]entity.FocusSessionRecord, error)
}

type focusRepository struct {
	store DocumentStore
}

func NewFocusRepository(store DocumentStore) FocusRepository {
	return &focusRepository{store: store}
}

func (r *focusRepository) AppendSession(ctx context.Context, userID string, record entity.FocusSessionRecord) error {
	var sessions []entity.FocusSessionRecord
	if _, err := load(ctx, r.store, keyFocusSessions+userID, &sessions); err != nil {
		return fmt.Errorf("failed to load focus sessions: %w", err)
	}

	sessions = append(sessions, record)
	if len(sessions) > MaxFocusSessions {
		sessions = sessions[len(sessions)-MaxFocusSessions:]
	}

	if err := r.store.Put(ctx, keyFocusSessions+userID, sessions); err != nil {
		return fmt.Errorf("failed to save focus sessions: %w", err)
	}
	return nil
}

func (r *focusRepository) ListSessions(ctx context.Context, userID string) ([]entity.FocusSessionRecord, error) {
	var sessions []entity.FocusSessionRecord
	if _, err := load(ctx, r.store, keyFocusSessions+userID, &sessions); err != nil {
		return nil, fmt.Errorf("failed to load focus sessions: %w", err)
	}

	out := make([]entity.FocusSessionRecord, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		out = append(out, sessions[i])
	}
	return out, nil
}
