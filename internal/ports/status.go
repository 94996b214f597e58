package ports

import (
	"context"
	"errors"
	"time"
)

// ErrStatusNotFound indicates no status record exists for a request.
var ErrStatusNotFound = errors.New("status not found")

// StatusRecord tracks the lifecycle of one video request.
type StatusRecord struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	VideoPath string    `json:"video_path,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusStore persists per-request status records.
type StatusStore interface {
	Set(ctx context.Context, requestID string, record StatusRecord) error
	Get(ctx context.Context, requestID string) (StatusRecord, error)
	Delete(ctx context.Context, requestID string) error
}
