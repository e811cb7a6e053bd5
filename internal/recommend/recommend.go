// Package recommend turns the recommendation service's raw prediction
// scores into ranked event lists.
package recommend

import (
	"context"
	"sort"

	"github.com/gather-social/gather-client/internal/models"
)

// API is the slice of the gateway client recommendations consume.
type API interface {
	RecommendedEvents(ctx context.Context, t models.EventType) ([]models.Recommendation, error)
	GroupRecommendedEvents(ctx context.Context, t models.EventType, userIDs []int) ([]models.Recommendation, error)
	EventsByID(ctx context.Context, t models.EventType, ids []int) ([]models.EventSummary, error)
}

// TopEventIDs ranks scores descending by prediction and extracts the
// event ids. The sort is stable so equal scores keep the service's
// order. The input slice is not modified.
func TopEventIDs(recs []models.Recommendation) []int {
	ranked := make([]models.Recommendation, len(recs))
	copy(ranked, recs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Prediction > ranked[j].Prediction
	})
	ids := make([]int, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	return ids
}

// Events fetches the current user's recommendations for one event type
// and resolves them into summaries, best score first. No scores means
// no batch lookup and an empty result.
func Events(ctx context.Context, gw API, t models.EventType) ([]models.EventSummary, error) {
	recs, err := gw.RecommendedEvents(ctx, t)
	if err != nil {
		return nil, err
	}
	return resolve(ctx, gw, t, recs)
}

// GroupEvents is Events for a group of users scored together.
func GroupEvents(ctx context.Context, gw API, t models.EventType, userIDs []int) ([]models.EventSummary, error) {
	recs, err := gw.GroupRecommendedEvents(ctx, t, userIDs)
	if err != nil {
		return nil, err
	}
	return resolve(ctx, gw, t, recs)
}

func resolve(ctx context.Context, gw API, t models.EventType, recs []models.Recommendation) ([]models.EventSummary, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	return gw.EventsByID(ctx, t, TopEventIDs(recs))
}
