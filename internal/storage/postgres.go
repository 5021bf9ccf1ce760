package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const roadmapColumns = `id, title, description, content, difficulty, estimated_time, technologies, steps, rating, review_count, enrolled_count, downloads, shares, image, flowchart_data, created_at, updated_at`

// CreateRoadmap inserts a roadmap record
func (r *PostgresRepository) CreateRoadmap(ctx context.Context, rm *models.Roadmap) error {
	technologiesJSON, err := json.Marshal(rm.Technologies)
	if err != nil {
		return fmt.Errorf("failed to marshal technologies: %w", err)
	}
	stepsJSON, err := json.Marshal(rm.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	query := `
		INSERT INTO roadmaps (` + roadmapColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.pool.Exec(ctx, query,
		rm.ID,
		rm.Title,
		rm.Description,
		nullString(rm.Content),
		rm.Difficulty,
		nullString(rm.EstimatedTime),
		technologiesJSON,
		stepsJSON,
		rm.Rating,
		rm.ReviewCount,
		rm.EnrolledCount,
		rm.Downloads,
		rm.Shares,
		nullString(rm.Image),
		nullBytes(rm.FlowchartData),
		rm.CreatedAt,
		rm.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create roadmap: %w", err)
	}
	return nil
}

// GetRoadmap retrieves a roadmap by ID, nil when missing
func (r *PostgresRepository) GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error) {
	query := `SELECT ` + roadmapColumns + ` FROM roadmaps WHERE id = $1`

	rm, err := scanRoadmap(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return rm, nil
}

// ListRoadmaps returns roadmaps matching filters, newest first
func (r *PostgresRepository) ListRoadmaps(ctx context.Context, filters models.ListFilters) ([]*models.Roadmap, error) {
	query := `SELECT ` + roadmapColumns + ` FROM roadmaps WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Difficulty != "" {
		query += fmt.Sprintf(" AND difficulty = $%d", argNum)
		args = append(args, filters.Difficulty)
		argNum++
	}

	if filters.Technology != "" {
		query += fmt.Sprintf(" AND technologies @> $%d", argNum)
		techJSON, err := json.Marshal([]string{filters.Technology})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal technology filter: %w", err)
		}
		args = append(args, techJSON)
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	defer rows.Close()

	var roadmaps []*models.Roadmap
	for rows.Next() {
		rm, err := scanRoadmap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap: %w", err)
		}
		roadmaps = append(roadmaps, rm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roadmaps: %w", err)
	}
	return roadmaps, nil
}

// SetRoadmapRating stores the server-computed aggregate rating
func (r *PostgresRepository) SetRoadmapRating(ctx context.Context, id string, rating float64, count int) error {
	query := `UPDATE roadmaps SET rating = $2, review_count = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, rating, count)
	if err != nil {
		return fmt.Errorf("failed to set roadmap rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRoadmapNotFound
	}
	return nil
}

// IncrementCounter bumps a telemetry counter on the roadmap record
func (r *PostgresRepository) IncrementCounter(ctx context.Context, id, counter string) error {
	var column string
	switch counter {
	case CounterDownloads:
		column = "downloads"
	case CounterShares:
		column = "shares"
	case CounterEnrolled:
		column = "enrolled_count"
	default:
		return fmt.Errorf("unknown counter: %s", counter)
	}

	query := fmt.Sprintf(`UPDATE roadmaps SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	if result.RowsAffected() == 0 {
		return ErrRoadmapNotFound
	}
	return nil
}

// CreateReview appends a review
func (r *PostgresRepository) CreateReview(ctx context.Context, review *models.ReviewEntry) error {
	query := `
		INSERT INTO reviews (id, roadmap_id, username, rating, review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.RoadmapID,
		review.Username,
		review.Rating,
		nullString(review.Review),
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListReviews returns reviews in submission order
func (r *PostgresRepository) ListReviews(ctx context.Context, roadmapID string) ([]*models.ReviewEntry, error) {
	query := `
		SELECT id, roadmap_id, username, rating, review, created_at
		FROM reviews
		WHERE roadmap_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.ReviewEntry
	for rows.Next() {
		var entry models.ReviewEntry
		var reviewText sql.NullString

		if err := rows.Scan(&entry.ID, &entry.RoadmapID, &entry.Username, &entry.Rating, &reviewText, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		entry.Review = reviewText.String
		reviews = append(reviews, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// GetUserByToken returns the user owning a session token, nil when unknown
func (r *PostgresRepository) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT id, username, token, active, created_at, last_seen_at
		FROM users
		WHERE token = $1
	`

	var u models.User
	var lastSeen sql.NullTime

	err := r.pool.QueryRow(ctx, query, token).Scan(
		&u.ID,
		&u.Username,
		&u.Token,
		&u.Active,
		&u.CreatedAt,
		&lastSeen,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastSeen.Valid {
		u.LastSeen = &lastSeen.Time
	}
	return &u, nil
}

// UpdateUserLastSeen stamps the user's last activity
func (r *PostgresRepository) UpdateUserLastSeen(ctx context.Context, token string) error {
	query := `UPDATE users SET last_seen_at = NOW() WHERE token = $1`

	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to update user last_seen_at: %w", err)
	}
	return nil
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoadmap(row rowScanner) (*models.Roadmap, error) {
	var rm models.Roadmap
	var content, estimatedTime, image sql.NullString
	var technologiesJSON, stepsJSON, flowchartJSON []byte

	err := row.Scan(
		&rm.ID,
		&rm.Title,
		&rm.Description,
		&content,
		&rm.Difficulty,
		&estimatedTime,
		&technologiesJSON,
		&stepsJSON,
		&rm.Rating,
		&rm.ReviewCount,
		&rm.EnrolledCount,
		&rm.Downloads,
		&rm.Shares,
		&image,
		&flowchartJSON,
		&rm.CreatedAt,
		&rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rm.Content = content.String
	rm.EstimatedTime = estimatedTime.String
	rm.Image = image.String

	if technologiesJSON != nil {
		if err := json.Unmarshal(technologiesJSON, &rm.Technologies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal technologies: %w", err)
		}
	}
	if stepsJSON != nil {
		if err := json.Unmarshal(stepsJSON, &rm.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}
	rm.FlowchartData = flowchartJSON

	return &rm, nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
