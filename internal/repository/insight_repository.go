package repository

import (
	"context"
	"fmt"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

type InsightRepository interface {
	LoadInsights(ctx context.Context, userID string) ([]entity.PredictiveInsight, error)
	SaveInsights(ctx context.Context, userID string, insights []entity.PredictiveInsight) error
	LoadRecommendations(ctx context.Context, userID string) ([]entity.PersonalizedRecommendation, error)
	SaveRecommendations(ctx context.Context, userID string, recs []entity.PersonalizedRecommendation) error
}

type insightRepository struct {
	store DocumentStore
}

func NewInsightRepository(store DocumentStore) InsightRepository {
	return &insightRepository{store: store}
}

func (r *insightRepository) LoadInsights(ctx context.Context, userID string) ([]entity.PredictiveInsight, error) {
	var insights []entity.PredictiveInsight
	if _, err := load(ctx, r.store, keyInsights+userID, &insights); err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}
	return insights, nil
}

func (r *insightRepository) SaveInsights(ctx context.Context, userID string, insights []entity.PredictiveInsight) error {
	if err := r.store.Put(ctx, keyInsights+userID, insights); err != nil {
		return fmt.Errorf("failed to save insights: %w", err)
	}
	return nil
}

func (r *insightRepository) LoadRecommendations(ctx context.Context, userID string) ([]entity.PersonalizedRecommendation, error) {
	var recs []entity.PersonalizedRecommendation
	if _, err := load(ctx, r.store, keyRecommendations+userID, &recs); err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	return recs, nil
}

func (r *insightRepository) SaveRecommendations(ctx context.Context, userID string, recs []entity.PersonalizedRecommendation) error {
	if err := r.store.Put(ctx, keyRecommendations+userID, recs); err != nil {
		return fmt.Errorf("failed to save recommendations: %w", err)
	}
	return nil
}
