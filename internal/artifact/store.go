package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"videoforge/internal/ports"
)

// VideoInfo describes one finished video in the final directory.
type VideoInfo struct {
	RequestID string    `json:"request_id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages finished videos in the final directory.
type Store struct {
	finalDir string
	storage  ports.ObjectStorage
	logger   ports.Logger
	metrics  ports.Metrics
}

func NewStore(finalDir string, storage ports.ObjectStorage, logger ports.Logger, metrics ports.Metrics) (*Store, error) {
	if err := os.MkdirAll(finalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create final dir: %w", err)
	}
	return &Store{
		finalDir: finalDir,
		storage:  storage,
		logger:   logger.WithFields(map[string]interface{}{"component": "artifact_store"}),
		metrics:  metrics.WithTags(map[string]string{"component": "artifact_store"}),
	}, nil
}

// Path returns the final video path for a request, or ErrNotFound.
func (s *Store) Path(requestID string) (string, error) {
	path := filepath.Join(s.finalDir, requestID+".mp4")
	if !fileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, requestID)
	}
	return path, nil
}

// List returns every finished video in directory order.
func (s *Store) List() ([]VideoInfo, error) {
	matches, err := filepath.Glob(filepath.Join(s.finalDir, "*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	var videos []VideoInfo
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		videos = append(videos, VideoInfo{
			RequestID: strings.TrimSuffix(filepath.Base(path), ".mp4"),
			Path:      path,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return videos, nil
}

// Delete removes the video and its sidecars, locally and from storage.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	videoPath := filepath.Join(s.finalDir, requestID+".mp4")
	if !fileExists(videoPath) {
		return fmt.Errorf("%w: %s", ErrNotFound, requestID)
	}

	matches, err := filepath.Glob(filepath.Join(s.finalDir, requestID+".*"))
	if err != nil {
		return fmt.Errorf("failed to glob artifacts: %w", err)
	}

	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove artifact", "path", path, "error", err)
			continue
		}
		key := "final_videos/" + filepath.Base(path)
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to remove mirrored artifact", "key", key, "error", err)
		}
	}

	s.metrics.IncrementCounter("artifact.deleted", nil)
	s.logger.Info("Video deleted", "request_id", requestID)
	return nil
}

// CleanupOlderThan removes finished videos, with their sidecars, whose
// modification time is older than the given age. Returns how many videos
// were removed.
func (s *Store) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	videos, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, video := range videos {
		if video.CreatedAt.After(cutoff) {
			continue
		}
		if err := s.Delete(ctx, video.RequestID); err != nil {
			s.logger.Warn("Cleanup failed for video", "request_id", video.RequestID, "error", err)
			continue
		}
		removed++
	}

	s.logger.Info("Cleanup finished", "removed", removed)
	return removed, nil
}
