package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dinerozz/nudge-engine/config"
	"github.com/supabase-community/supabase-go"
)

type supabaseDocument struct {
	Key       string          `json:"doc_key"`
	Body      json.RawMessage `json:"body"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SupabaseStore keeps documents in a PostgREST table with the same shape as
// the migrated engine_documents table.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

func NewSupabaseStore(cfg config.SupabaseConfig) (*SupabaseStore, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.Key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, table: cfg.Table}, nil
}

func (s *SupabaseStore) Get(ctx context.Context, key string, dest interface{}) error {
	resp, _, err := s.client.From(s.table).
		Select("doc_key, body, updated_at", "", false).
		Eq("doc_key", key).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to get document %s: %w", key, err)
	}

	var rows []supabaseDocument
	if err := json.Unmarshal(resp, &rows); err != nil {
		return fmt.Errorf("failed to decode rows for %s: %w", key, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}

	if err := json.Unmarshal(rows[0].Body, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) Put(ctx context.Context, key string, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	row := supabaseDocument{Key: key, Body: body, UpdatedAt: time.Now().UTC()}
	_, _, err = s.client.From(s.table).
		Upsert(row, "doc_key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to put document %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) Delete(ctx context.Context, key string) error {
	_, _, err := s.client.From(s.table).
		Delete("minimal", "").
		Eq("doc_key", key).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}
