package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// MemoryRepository implements Repository over in-process maps.
// It backs single-instance deployments and tests; no durability.
type MemoryRepository struct {
	mu       sync.RWMutex
	roadmaps map[string]*models.Roadmap
	reviews  map[string][]*models.ReviewEntry
	users    map[string]*models.User // keyed by token
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		roadmaps: make(map[string]*models.Roadmap),
		reviews:  make(map[string][]*models.ReviewEntry),
		users:    make(map[string]*models.User),
	}
}

// CreateRoadmap stores a roadmap record
func (m *MemoryRepository) CreateRoadmap(ctx context.Context, r *models.Roadmap) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.roadmaps[r.ID]; exists {
		return fmt.Errorf("roadmap already exists: %s", r.ID)
	}
	clone := *r
	m.roadmaps[r.ID] = &clone
	return nil
}

// GetRoadmap returns a roadmap by id, nil when missing
func (m *MemoryRepository) GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.roadmaps[id]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

// ListRoadmaps returns roadmaps matching filters, newest first
func (m *MemoryRepository) ListRoadmaps(ctx context.Context, filters models.ListFilters) ([]*models.Roadmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Roadmap
	for _, r := range m.roadmaps {
		if filters.Difficulty != "" && r.Difficulty != filters.Difficulty {
			continue
		}
		if filters.Technology != "" && !hasTechnology(r, filters.Technology) {
			continue
		}
		clone := *r
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return nil, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(result) {
		result = result[:filters.Limit]
	}
	return result, nil
}

// SetRoadmapRating stores the server-computed aggregate rating
func (m *MemoryRepository) SetRoadmapRating(ctx context.Context, id string, rating float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.roadmaps[id]
	if !ok {
		return ErrRoadmapNotFound
	}
	r.Rating = rating
	r.ReviewCount = count
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// IncrementCounter bumps a telemetry counter on the roadmap record
func (m *MemoryRepository) IncrementCounter(ctx context.Context, id, counter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.roadmaps[id]
	if !ok {
		return ErrRoadmapNotFound
	}

	switch counter {
	case CounterDownloads:
		r.Downloads++
	case CounterShares:
		r.Shares++
	case CounterEnrolled:
		r.EnrolledCount++
	default:
		return fmt.Errorf("unknown counter: %s", counter)
	}
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateReview appends a review to the roadmap's collection
func (m *MemoryRepository) CreateReview(ctx context.Context, review *models.ReviewEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roadmaps[review.RoadmapID]; !ok {
		return ErrRoadmapNotFound
	}
	clone := *review
	m.reviews[review.RoadmapID] = append(m.reviews[review.RoadmapID], &clone)
	return nil
}

// ListReviews returns reviews in insertion order
func (m *MemoryRepository) ListReviews(ctx context.Context, roadmapID string) ([]*models.ReviewEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.reviews[roadmapID]
	result := make([]*models.ReviewEntry, 0, len(entries))
	for _, e := range entries {
		clone := *e
		result = append(result, &clone)
	}
	return result, nil
}

// PutUser registers a user session (seeding and tests)
func (m *MemoryRepository) PutUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *u
	m.users[u.Token] = &clone
}

// GetUserByToken returns the user owning a session token, nil when unknown
func (m *MemoryRepository) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[token]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

// UpdateUserLastSeen stamps the user's last activity
func (m *MemoryRepository) UpdateUserLastSeen(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[token]; ok {
		now := time.Now().UTC()
		u.LastSeen = &now
	}
	return nil
}

// Ping always succeeds for the in-memory store
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *MemoryRepository) Close() error {
	return nil
}

func hasTechnology(r *models.Roadmap, tech string) bool {
	for _, t := range r.Technologies {
		if strings.EqualFold(t, tech) {
			return true
		}
	}
	return false
}
