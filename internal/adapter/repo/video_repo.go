package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipvault/internal/domain"
	"clipvault/internal/sqlinline"
)

// VideoRepositoryPG implements domain.VideoRepository using PostgreSQL.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoRepository constructs a new video repository instance.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

// EnsureSchema creates the videos table and its indexes when missing.
func (r *VideoRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, sqlinline.QEnsureVideosTable); err != nil {
		return fmt.Errorf("ensure videos schema: %w", err)
	}
	return nil
}

// Create persists a record and fills in its database timestamps.
func (r *VideoRepositoryPG) Create(ctx context.Context, record *domain.VideoRecord) error {
	row := r.pool.QueryRow(ctx, sqlinline.QInsertVideo,
		record.ID, record.Title, record.FileName, record.FileKey, record.FileSize,
		record.MimeType, record.DurationSeconds, string(record.Status), record.Platform, record.OriginalURL)
	if err := row.Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRepositoryPG) GetByID(ctx context.Context, id string) (*domain.VideoRecord, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectVideoByID, id)
	record, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select video: %w", err)
	}
	return record, nil
}

// List returns up to limit records, most recent first.
func (r *VideoRepositoryPG) List(ctx context.Context, limit int) ([]domain.VideoRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, sqlinline.QListVideos, limit)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var records []domain.VideoRecord
	for rows.Next() {
		record, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return records, nil
}

func (r *VideoRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, sqlinline.QDeleteVideo, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping measures a database round trip for the health probe.
func (r *VideoRepositoryPG) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.pool.Ping(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func scanVideo(row pgx.Row) (*domain.VideoRecord, error) {
	var record domain.VideoRecord
	var status string
	if err := row.Scan(&record.ID, &record.Title, &record.FileName, &record.FileKey,
		&record.FileSize, &record.MimeType, &record.DurationSeconds, &status,
		&record.Platform, &record.OriginalURL, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.Status = domain.VideoStatus(status)
	return &record, nil
}

var _ domain.VideoRepository = (*VideoRepositoryPG)(nil)
