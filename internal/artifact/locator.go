package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"videoforge/internal/ports"
)

// ErrNotFound marks a render whose output video could not be located.
var ErrNotFound = errors.New("video artifact not found")

// qualitySubdirs are probed in preference order before falling back to globs.
var qualitySubdirs = []string{"1080p60", "720p30", "480p15"}

// sidecarExtensions are companion files copied alongside the video.
var sidecarExtensions = []string{".srt", ".wav", ".txt", ".json", ".mp3", ".aac"}

// Locator finds rendered videos in the media output tree and promotes
// them to the final directory, mirroring into object storage.
type Locator struct {
	outputDir string
	finalDir  string
	storage   ports.ObjectStorage
	logger    ports.Logger
	metrics   ports.Metrics
}

func NewLocator(outputDir, finalDir string, storage ports.ObjectStorage, logger ports.Logger, metrics ports.Metrics) (*Locator, error) {
	if err := os.MkdirAll(finalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create final dir: %w", err)
	}
	return &Locator{
		outputDir: outputDir,
		finalDir:  finalDir,
		storage:   storage,
		logger:    logger.WithFields(map[string]interface{}{"component": "artifact"}),
		metrics:   metrics.WithTags(map[string]string{"component": "artifact"}),
	}, nil
}

// Locate finds the rendered video for a request and copies it, plus any
// sidecar files, into the final directory. Returns the final video path.
// Calling it again for the same request overwrites the previous copies.
func (l *Locator) Locate(ctx context.Context, requestID string) (string, error) {
	found, err := l.findVideo(requestID)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(l.finalDir, requestID+".mp4")
	if err := copyFile(found, finalPath); err != nil {
		return "", fmt.Errorf("failed to promote video: %w", err)
	}
	l.logger.Info("Video promoted", "from", found, "to", finalPath)

	l.copySidecars(found, finalPath)
	l.mirror(ctx, requestID, finalPath)

	l.metrics.IncrementCounter("artifact.located", nil)
	return finalPath, nil
}

func (l *Locator) findVideo(requestID string) (string, error) {
	videoBase := filepath.Join(l.outputDir, "videos")

	direct := []string{
		filepath.Join(videoBase, qualitySubdirs[0], requestID+".mp4"),
		filepath.Join(videoBase, qualitySubdirs[1], requestID+".mp4"),
		filepath.Join(videoBase, qualitySubdirs[2], requestID+".mp4"),
		filepath.Join(l.outputDir, requestID+".mp4"),
	}
	for _, path := range direct {
		if fileExists(path) {
			l.logger.Info("Found video", "path", path)
			return path, nil
		}
	}

	patterns := []string{
		filepath.Join(videoBase, "*", requestID+".mp4"),
		filepath.Join(videoBase, "*", "*", requestID+".mp4"),
		filepath.Join(l.outputDir, "*"+requestID+"*.mp4"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			l.logger.Info("Found video via glob", "path", matches[0])
			return matches[0], nil
		}
	}

	l.logger.Error("Video file not found", "request_id", requestID)
	l.metrics.IncrementCounter("artifact.not_found", nil)
	return "", fmt.Errorf("%w: %s", ErrNotFound, requestID)
}

// copySidecars copies subtitle and audio companions next to the final
// video. Missing sidecars are skipped, copy failures only warn.
func (l *Locator) copySidecars(sourceVideo, targetVideo string) {
	sourceBase := trimExt(sourceVideo)
	targetBase := trimExt(targetVideo)

	for _, ext := range sidecarExtensions {
		source := sourceBase + ext
		if !fileExists(source) {
			continue
		}
		target := targetBase + ext
		if err := copyFile(source, target); err != nil {
			l.logger.Warn("Failed to copy sidecar", "source", source, "error", err)
			continue
		}
		l.logger.Info("Sidecar copied", "source", source, "target", target)
	}
}

// mirror uploads the final video and its sidecars to object storage.
// Mirroring is best effort, the local copy is authoritative.
func (l *Locator) mirror(ctx context.Context, requestID, finalPath string) {
	paths := []string{finalPath}
	base := trimExt(finalPath)
	for _, ext := range sidecarExtensions {
		if fileExists(base + ext) {
			paths = append(paths, base+ext)
		}
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			l.logger.Warn("Failed to open artifact for mirroring", "path", path, "error", err)
			continue
		}

		key := "final_videos/" + filepath.Base(path)
		err = l.storage.Put(ctx, key, f, ports.ObjectMetadata{
			ContentType:  contentTypeFor(path),
			UserMetadata: map[string]string{"request-id": requestID},
		})
		f.Close()
		if err != nil {
			l.logger.Warn("Failed to mirror artifact", "key", key, "error", err)
			continue
		}
	}
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".mp4":
		return "video/mp4"
	case ".srt", ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
