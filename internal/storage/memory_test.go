package storage

import (
	"context"
	"testing"
	"time"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

func TestMemoryRepositoryRoadmapLifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	roadmap := &models.Roadmap{
		ID:           "go-backend",
		Title:        "Go Backend Developer",
		Difficulty:   "medium",
		Technologies: []string{"go", "postgresql"},
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateRoadmap(ctx, roadmap); err != nil {
		t.Fatalf("CreateRoadmap failed: %v", err)
	}
	if err := repo.CreateRoadmap(ctx, roadmap); err == nil {
		t.Error("duplicate create should fail")
	}

	got, err := repo.GetRoadmap(ctx, "go-backend")
	if err != nil {
		t.Fatalf("GetRoadmap failed: %v", err)
	}
	if got == nil || got.Title != "Go Backend Developer" {
		t.Fatalf("unexpected roadmap: %+v", got)
	}

	// Missing id is nil, nil rather than an error
	missing, err := repo.GetRoadmap(ctx, "nope")
	if err != nil {
		t.Fatalf("GetRoadmap for missing id errored: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing roadmap")
	}

	// Returned records are clones; mutating them must not leak back
	got.Title = "mutated"
	again, _ := repo.GetRoadmap(ctx, "go-backend")
	if again.Title != "Go Backend Developer" {
		t.Error("repository state leaked through a returned clone")
	}
}

func TestMemoryRepositoryListFilters(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []*models.Roadmap{
		{ID: "a", Title: "A", Difficulty: "easy", Technologies: []string{"go"}, CreatedAt: base},
		{ID: "b", Title: "B", Difficulty: "medium", Technologies: []string{"Go", "docker"}, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Title: "C", Difficulty: "easy", Technologies: []string{"rust"}, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range seed {
		if err := repo.CreateRoadmap(ctx, r); err != nil {
			t.Fatalf("seed %s: %v", r.ID, err)
		}
	}

	all, err := repo.ListRoadmaps(ctx, models.ListFilters{})
	if err != nil {
		t.Fatalf("ListRoadmaps failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 roadmaps, got %d", len(all))
	}
	// Newest first
	if all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	easy, _ := repo.ListRoadmaps(ctx, models.ListFilters{Difficulty: "easy"})
	if len(easy) != 2 {
		t.Errorf("expected 2 easy roadmaps, got %d", len(easy))
	}

	// Technology match is case-insensitive
	goTech, _ := repo.ListRoadmaps(ctx, models.ListFilters{Technology: "GO"})
	if len(goTech) != 2 {
		t.Errorf("expected 2 go roadmaps, got %d", len(goTech))
	}

	paged, _ := repo.ListRoadmaps(ctx, models.ListFilters{Offset: 1, Limit: 1})
	if len(paged) != 1 || paged[0].ID != "b" {
		t.Errorf("unexpected page: %+v", paged)
	}

	past, _ := repo.ListRoadmaps(ctx, models.ListFilters{Offset: 10})
	if len(past) != 0 {
		t.Errorf("offset past end should be empty, got %d", len(past))
	}
}

func TestMemoryRepositoryCounters(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.CreateRoadmap(ctx, &models.Roadmap{ID: "r", Title: "R"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementCounter(ctx, "r", CounterDownloads); err != nil {
			t.Fatalf("IncrementCounter failed: %v", err)
		}
	}
	if err := repo.IncrementCounter(ctx, "r", CounterShares); err != nil {
		t.Fatalf("IncrementCounter failed: %v", err)
	}
	if err := repo.IncrementCounter(ctx, "r", CounterEnrolled); err != nil {
		t.Fatalf("IncrementCounter failed: %v", err)
	}

	got, _ := repo.GetRoadmap(ctx, "r")
	if got.Downloads != 3 || got.Shares != 1 || got.EnrolledCount != 1 {
		t.Errorf("unexpected counters: downloads=%d shares=%d enrolled=%d",
			got.Downloads, got.Shares, got.EnrolledCount)
	}

	if err := repo.IncrementCounter(ctx, "r", "bogus"); err == nil {
		t.Error("unknown counter should fail")
	}
	if err := repo.IncrementCounter(ctx, "missing", CounterShares); err != ErrRoadmapNotFound {
		t.Errorf("expected ErrRoadmapNotFound, got %v", err)
	}
}

func TestMemoryRepositoryReviews(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.CreateRoadmap(ctx, &models.Roadmap{ID: "r", Title: "R"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.CreateReview(ctx, &models.ReviewEntry{ID: "1", RoadmapID: "missing"}); err != ErrRoadmapNotFound {
		t.Errorf("review for missing roadmap: expected ErrRoadmapNotFound, got %v", err)
	}

	first := &models.ReviewEntry{ID: "1", RoadmapID: "r", Username: "gopher", Rating: 5}
	second := &models.ReviewEntry{ID: "2", RoadmapID: "r", Username: "newbie", Rating: 3}
	if err := repo.CreateReview(ctx, first); err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if err := repo.CreateReview(ctx, second); err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}

	entries, err := repo.ListReviews(ctx, "r")
	if err != nil {
		t.Fatalf("ListReviews failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(entries))
	}
	if entries[0].ID != "1" || entries[1].ID != "2" {
		t.Error("reviews must come back in insertion order")
	}

	if err := repo.SetRoadmapRating(ctx, "r", 4.0, 2); err != nil {
		t.Fatalf("SetRoadmapRating failed: %v", err)
	}
	got, _ := repo.GetRoadmap(ctx, "r")
	if got.Rating != 4.0 || got.ReviewCount != 2 {
		t.Errorf("unexpected aggregate: rating=%v count=%d", got.Rating, got.ReviewCount)
	}
}

func TestMemoryRepositoryUsers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	repo.PutUser(&models.User{ID: "u-1", Username: "gopher", Token: "tok-abcdef123456", Active: true})

	user, err := repo.GetUserByToken(ctx, "tok-abcdef123456")
	if err != nil {
		t.Fatalf("GetUserByToken failed: %v", err)
	}
	if user == nil || user.Username != "gopher" {
		t.Fatalf("unexpected user: %+v", user)
	}

	unknown, err := repo.GetUserByToken(ctx, "nope")
	if err != nil {
		t.Fatalf("unknown token errored: %v", err)
	}
	if unknown != nil {
		t.Error("expected nil for unknown token")
	}

	if err := repo.UpdateUserLastSeen(ctx, "tok-abcdef123456"); err != nil {
		t.Fatalf("UpdateUserLastSeen failed: %v", err)
	}
	user, _ = repo.GetUserByToken(ctx, "tok-abcdef123456")
	if user.LastSeen == nil {
		t.Error("expected last seen to be stamped")
	}
}
