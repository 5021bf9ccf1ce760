// Package reviews handles star-rating submission and the running
// review list for a roadmap.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/storage"
)

// Error taxonomy: validation failures are rejected before any storage
// call; unauthorized submissions are distinguishable from generic
// failures so the caller can show "please log in" vs a retry message.
var (
	ErrRatingRequired = errors.New("reviews: rating must be between 1 and 5")
	ErrUnauthorized   = errors.New("reviews: authentication required")
)

// Aggregator submits reviews and maintains the server-computed
// aggregate rating on the roadmap record
type Aggregator struct {
	repo storage.Repository
}

// NewAggregator creates a review aggregator over a repository
func NewAggregator(repo storage.Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// Submit validates and stores a review, then refreshes the roadmap's
// aggregate rating. An unset rating (0) never reaches storage.
func (a *Aggregator) Submit(ctx context.Context, roadmapID string, user *models.User, rating int, text string) (*models.ReviewEntry, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrRatingRequired
	}
	if user == nil || !user.Active {
		return nil, ErrUnauthorized
	}

	entry := &models.ReviewEntry{
		ID:        uuid.New().String(),
		RoadmapID: roadmapID,
		Username:  user.Username,
		Rating:    rating,
		Review:    strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
	}

	if err := a.repo.CreateReview(ctx, entry); err != nil {
		return nil, fmt.Errorf("reviews: submit: %w", err)
	}

	// Aggregate rating is server-computed, never client-derived
	if err := a.refreshRating(ctx, roadmapID); err != nil {
		return nil, fmt.Errorf("reviews: refresh aggregate: %w", err)
	}

	return entry, nil
}

// List returns the review collection in storage order; no client-side
// re-sort is applied.
func (a *Aggregator) List(ctx context.Context, roadmapID string) ([]*models.ReviewEntry, error) {
	entries, err := a.repo.ListReviews(ctx, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("reviews: list: %w", err)
	}
	return entries, nil
}

func (a *Aggregator) refreshRating(ctx context.Context, roadmapID string) error {
	entries, err := a.repo.ListReviews(ctx, roadmapID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return a.repo.SetRoadmapRating(ctx, roadmapID, 0, 0)
	}

	sum := 0
	for _, e := range entries {
		sum += e.Rating
	}
	avg := math.Round(float64(sum)/float64(len(entries))*10) / 10
	return a.repo.SetRoadmapRating(ctx, roadmapID, avg, len(entries))
}

// AvatarInitial derives the one-letter avatar badge from a username
func AvatarInitial(username string) string {
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "?"
}
