package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"videoforge/internal/ports"
)

// Storage implements ObjectStorage using the local filesystem
type Storage struct {
	basePath string
	logger   ports.Logger
	metrics  ports.Metrics
}

// NewStorage creates a new filesystem-based object storage
func NewStorage(basePath string, logger ports.Logger, metrics ports.Metrics) (ports.ObjectStorage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Error("Failed to create base path", "path", basePath, "error", err)
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	logger.Info("Filesystem storage initialized", "base_path", basePath)
	metrics.IncrementCounter("storage.filesystem.initialized", nil)

	return &Storage{
		basePath: basePath,
		logger:   logger.WithFields(map[string]interface{}{"component": "filesystem_storage"}),
		metrics:  metrics.WithTags(map[string]string{"storage": "filesystem"}),
	}, nil
}

// Put stores an object
func (s *Storage) Put(ctx context.Context, key string, reader io.Reader, metadata ports.ObjectMetadata) error {
	startTime := time.Now()
	s.logger.Debug("Storing object", "key", key)
	s.metrics.IncrementCounter("storage.put.attempts", nil)

	objectPath := s.getObjectPath(key)

	if err := os.MkdirAll(filepath.Dir(objectPath), 0755); err != nil {
		s.logger.Error("Failed to create object directory", "key", key, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "mkdir"})
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	file, err := os.Create(objectPath)
	if err != nil {
		s.logger.Error("Failed to create file", "path", objectPath, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "create"})
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bytesWritten, err := io.Copy(file, reader)
	if err != nil {
		s.logger.Error("Failed to write data", "key", key, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "write"})
		return fmt.Errorf("failed to write data: %w", err)
	}

	duration := time.Since(startTime)
	s.logger.Info("Object stored successfully",
		"key", key,
		"bytes", bytesWritten,
		"duration_ms", duration.Milliseconds())

	s.metrics.IncrementCounter("storage.put.success", nil)
	s.metrics.RecordHistogram("storage.put.bytes", float64(bytesWritten), nil)
	s.metrics.RecordHistogram("storage.put.duration_ms", float64(duration.Milliseconds()), nil)

	return nil
}

// Get retrieves an object
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.metrics.IncrementCounter("storage.get.attempts", nil)

	objectPath := s.getObjectPath(key)

	file, err := os.Open(objectPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.metrics.IncrementCounter("storage.get.errors", map[string]string{"error": "not_found"})
			return nil, fmt.Errorf("%w: %s", ports.ErrObjectNotFound, key)
		}
		s.logger.Error("Failed to open file", "path", objectPath, "error", err)
		s.metrics.IncrementCounter("storage.get.errors", map[string]string{"error": "open"})
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	s.metrics.IncrementCounter("storage.get.success", nil)
	return file, nil
}

// Delete removes an object
func (s *Storage) Delete(ctx context.Context, key string) error {
	s.logger.Info("Deleting object", "key", key)
	s.metrics.IncrementCounter("storage.delete.attempts", nil)

	objectPath := s.getObjectPath(key)

	if err := os.Remove(objectPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete object", "path", objectPath, "error", err)
		s.metrics.IncrementCounter("storage.delete.errors", nil)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.metrics.IncrementCounter("storage.delete.success", nil)
	return nil
}

// Exists checks if an object exists
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	s.metrics.IncrementCounter("storage.exists.calls", nil)

	_, err := os.Stat(s.getObjectPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	s.logger.Error("Failed to check object existence", "key", key, "error", err)
	return false, err
}

// List returns objects whose keys start with prefix
func (s *Storage) List(ctx context.Context, prefix string) ([]ports.ObjectInfo, error) {
	startTime := time.Now()
	s.metrics.IncrementCounter("storage.list.attempts", nil)

	var objects []ports.ObjectInfo

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			return nil
		}

		relPath, _ := filepath.Rel(s.basePath, path)
		key := filepath.ToSlash(relPath) // Use forward slashes

		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}

		objects = append(objects, ports.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})

		return nil
	})

	if err != nil {
		s.logger.Error("Failed to list objects", "error", err)
		s.metrics.IncrementCounter("storage.list.errors", nil)
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	duration := time.Since(startTime)
	s.logger.Debug("Listed objects",
		"prefix", prefix,
		"count", len(objects),
		"duration_ms", duration.Milliseconds())

	s.metrics.IncrementCounter("storage.list.success", nil)
	s.metrics.RecordHistogram("storage.list.count", float64(len(objects)), nil)

	return objects, nil
}

// getObjectPath resolves a key inside the base path. Rooting the key
// before cleaning collapses any ".." segments, so keys cannot escape
// the base directory.
func (s *Storage) getObjectPath(key string) string {
	key = filepath.FromSlash(key)
	key = filepath.Clean(string(filepath.Separator) + key)
	return filepath.Join(s.basePath, key)
}
