package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

// commandRunner abstracts process execution so tests can stub the tools.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// audioExtensions are probed next to the video when it has no audio track.
var audioExtensions = []string{".wav", ".mp3", ".aac", ".m4a"}

// Fixer guarantees a rendered video carries an audio track. When the
// track is missing it searches for a separately written voiceover file
// and muxes it in.
type Fixer struct {
	ffmpegBin    string
	ffprobeBin   string
	audioCodec   string
	audioBitrate string
	voiceoverDir string
	timeout      time.Duration
	run          commandRunner
	logger       ports.Logger
	metrics      ports.Metrics

	// rename is swapped in tests to simulate swap failures.
	rename func(oldpath, newpath string) error
}

func NewFixer(cfg *config.Config, logger ports.Logger, metrics ports.Metrics) *Fixer {
	return &Fixer{
		ffmpegBin:    cfg.Media.FFmpegBin,
		ffprobeBin:   cfg.Media.FFprobeBin,
		audioCodec:   cfg.Media.AudioCodec,
		audioBitrate: cfg.Media.AudioBitrate,
		voiceoverDir: cfg.Video.VoiceoverDir,
		timeout:      cfg.Media.Timeout,
		run:          execRunner{},
		logger:       logger.WithFields(map[string]interface{}{"component": "media"}),
		metrics:      metrics.WithTags(map[string]string{"component": "media"}),
		rename:       os.Rename,
	}
}

// EnsureAudio checks the video for an audio stream and muxes a found
// voiceover file in when it is missing. Failures never fail the pipeline,
// the original video path is returned with a warning instead.
func (f *Fixer) EnsureAudio(ctx context.Context, videoPath string) string {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	f.logger.Info("Checking audio in video", "path", videoPath)

	hasAudio, err := f.probeAudio(ctx, videoPath)
	if err != nil {
		f.logger.Warn("Audio probe failed, returning original video", "error", err)
		return videoPath
	}
	if hasAudio {
		f.logger.Info("Video already has audio")
		return videoPath
	}

	f.logger.Warn("Video has no audio, looking for separate audio files")
	f.metrics.IncrementCounter("media.missing_audio", nil)

	audioFile := f.findAudioFile(videoPath)
	if audioFile == "" {
		f.logger.Warn("No audio files found, returning video without audio")
		return videoPath
	}

	if err := f.mux(ctx, videoPath, audioFile); err != nil {
		f.logger.Error("Audio merge failed, returning original video", "error", err)
		f.metrics.IncrementCounter("media.mux_errors", nil)
		return videoPath
	}

	f.metrics.IncrementCounter("media.mux_success", nil)
	f.logger.Info("Successfully merged video with audio", "audio", audioFile)
	return videoPath
}

// probeAudio reports whether the video has at least one audio stream.
func (f *Fixer) probeAudio(ctx context.Context, videoPath string) (bool, error) {
	stdout, _, err := f.run.Run(ctx, f.ffprobeBin,
		"-v", "quiet",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name",
		"-of", "csv=p=0",
		videoPath,
	)
	if err != nil {
		return false, fmt.Errorf("ffprobe failed: %w", err)
	}
	return strings.TrimSpace(string(stdout)) != "", nil
}

// findAudioFile returns the best audio candidate for the video: files
// sharing the video's base name first, then voiceover cache files. The
// largest file wins, it is usually the full track.
func (f *Fixer) findAudioFile(videoPath string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))

	var candidates []string
	for _, ext := range audioExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			f.logger.Info("Found audio file", "path", candidate)
			candidates = append(candidates, candidate)
		}
	}

	if f.voiceoverDir != "" {
		matches, err := filepath.Glob(filepath.Join(f.voiceoverDir, "*.mp3"))
		if err == nil {
			for _, match := range matches {
				f.logger.Info("Found voiceover audio", "path", match)
				candidates = append(candidates, match)
			}
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	best := candidates[0]
	bestSize := int64(-1)
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = candidate
			bestSize = info.Size()
		}
	}
	return best
}

// mux merges the audio file into the video. The merge writes to a side
// file first and replaces the original only on success.
func (f *Fixer) mux(ctx context.Context, videoPath, audioPath string) error {
	ext := filepath.Ext(videoPath)
	sideFile := strings.TrimSuffix(videoPath, ext) + "_with_audio" + ext

	_, stderr, err := f.run.Run(ctx, f.ffmpegBin,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", f.audioCodec,
		"-b:a", f.audioBitrate,
		"-shortest",
		sideFile,
	)
	if err != nil {
		os.Remove(sideFile)
		return fmt.Errorf("ffmpeg failed: %w: %s", err, string(stderr))
	}

	if info, statErr := os.Stat(sideFile); statErr != nil || info.Size() == 0 {
		os.Remove(sideFile)
		return fmt.Errorf("merged output missing or empty")
	}

	// Rename over the existing video so the canonical path is never
	// empty, even if the swap fails mid-way.
	if err := f.rename(sideFile, videoPath); err != nil {
		os.Remove(sideFile)
		return fmt.Errorf("failed to rename merged video: %w", err)
	}
	return nil
}
