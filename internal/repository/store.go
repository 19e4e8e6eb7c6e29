package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// DocumentStore keeps JSON documents under string keys.
type DocumentStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Put(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

const (
	keyActivityEvents      = "activity:events:"
	keyActivityPermissions = "activity:permissions:"
	keyActionLog           = "actions:log:"
	keyActionIntegrity     = "actions:integrity:"
	keyInsights            = "insights:"
	keyRecommendations     = "recommendations:"
	keyFocusSessions       = "focus:sessions:"
)

// load reads key into dest and reports whether the document existed.
func load(ctx context.Context, store DocumentStore, key string, dest interface{}) (bool, error) {
	err := store.Get(ctx, key, dest)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
