// Package sessions persists explicitly saved learner progress in redis.
// Progress is not synced per toggle; the learner saves deliberately,
// and entries expire on their own after the configured TTL.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

const keyPrefix = "progress:"

// Store is a redis-backed progress session store
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to redis and verifies connectivity
func NewStore(address, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &Store{client: client, ttl: ttl}, nil
}

func sessionKey(roadmapID, userID string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, roadmapID, userID)
}

// Save writes a progress session, resetting its TTL
func (s *Store) Save(ctx context.Context, session *models.ProgressSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(session.RoadmapID, session.UserID)
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the saved session for a learner and roadmap, nil when
// none exists (or it expired).
func (s *Store) Load(ctx context.Context, roadmapID, userID string) (*models.ProgressSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(roadmapID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.ProgressSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a saved session
func (s *Store) Delete(ctx context.Context, roadmapID, userID string) error {
	if err := s.client.Del(ctx, sessionKey(roadmapID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RoadmapIDs returns the distinct roadmap ids with saved sessions,
// walking the keyspace with SCAN.
func (s *Store) RoadmapIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}

		for _, key := range keys {
			rest := strings.TrimPrefix(key, keyPrefix)
			if i := strings.LastIndex(rest, ":"); i > 0 {
				seen[rest[:i]] = struct{}{}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// PurgeRoadmap deletes every saved session for a roadmap, returning
// the number of keys removed
func (s *Store) PurgeRoadmap(ctx context.Context, roadmapID string) (int, error) {
	pattern := fmt.Sprintf("%s%s:*", keyPrefix, roadmapID)
	var cursor uint64
	deleted := 0

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan sessions: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("failed to delete sessions: %w", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

// HealthCheck verifies redis connectivity
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
