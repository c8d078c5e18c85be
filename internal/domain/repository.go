package domain

import (
	"context"
	"time"
)

// VideoRepository defines persistence for video records.
type VideoRepository interface {
	Create(ctx context.Context, record *VideoRecord) error
	GetByID(ctx context.Context, id string) (*VideoRecord, error)
	List(ctx context.Context, limit int) ([]VideoRecord, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) (time.Duration, error)
}
