package storage

import (
	"context"
	"errors"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

var ErrRoadmapNotFound = errors.New("storage: roadmap not found")

// Counter names accepted by IncrementCounter
const (
	CounterDownloads = "downloads"
	CounterShares    = "shares"
	CounterEnrolled  = "enrolled"
)

// Repository defines the interface for roadmap persistence
type Repository interface {
	// Roadmaps
	CreateRoadmap(ctx context.Context, r *models.Roadmap) error
	GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error)
	ListRoadmaps(ctx context.Context, filters models.ListFilters) ([]*models.Roadmap, error)
	SetRoadmapRating(ctx context.Context, id string, rating float64, count int) error
	IncrementCounter(ctx context.Context, id, counter string) error

	// Reviews
	CreateReview(ctx context.Context, review *models.ReviewEntry) error
	ListReviews(ctx context.Context, roadmapID string) ([]*models.ReviewEntry, error)

	// Users
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	UpdateUserLastSeen(ctx context.Context, token string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
