package render

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

//go:embed driver.py
var driverScript []byte

const stderrTailBytes = 2000

// commandRunner abstracts process execution so tests can stub renders.
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

// Runner renders generated scene code in a separate Python process. The
// scene is written to a temp file, the embedded driver loads it, renders
// the Solution class and writes media under the output directory.
type Runner struct {
	pythonBin  string
	tempDir    string
	outputDir  string
	quality    string
	timeout    time.Duration
	driverPath string
	run        commandRunner
	logger     ports.Logger
	metrics    ports.Metrics
}

func NewRunner(cfg *config.Config, logger ports.Logger, metrics ports.Metrics) (*Runner, error) {
	if err := os.MkdirAll(cfg.Video.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Video.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	driverPath := filepath.Join(cfg.Video.TempDir, "render_driver.py")
	if err := os.WriteFile(driverPath, driverScript, 0755); err != nil {
		return nil, fmt.Errorf("failed to write render driver: %w", err)
	}

	return &Runner{
		pythonBin:  cfg.Render.PythonBin,
		tempDir:    cfg.Video.TempDir,
		outputDir:  cfg.Video.OutputDir,
		quality:    cfg.Render.Quality,
		timeout:    cfg.Render.Timeout,
		driverPath: driverPath,
		run:        execRunner{},
		logger:     logger.WithFields(map[string]interface{}{"component": "render"}),
		metrics:    metrics.WithTags(map[string]string{"component": "render"}),
	}, nil
}

// Render writes the scene code to a temp file and runs the driver on it.
// The temp file is removed when the run finishes, pass or fail.
func (r *Runner) Render(ctx context.Context, requestID, code string) error {
	sceneFile := filepath.Join(r.tempDir, fmt.Sprintf("%s_scene.py", requestID))
	if err := os.WriteFile(sceneFile, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	defer os.Remove(sceneFile)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.logger.Info("Rendering scene", "request_id", requestID, "quality", r.quality)
	r.metrics.IncrementCounter("render.attempts", nil)
	start := time.Now()

	_, stderr, err := r.run.Run(ctx, r.pythonBin, r.driverPath,
		"--scene-file", sceneFile,
		"--request-id", requestID,
		"--media-dir", r.outputDir,
		"--quality", r.quality,
	)
	if err != nil {
		r.metrics.IncrementCounter("render.errors", nil)
		r.logger.Error("Render failed", "request_id", requestID, "error", err)
		return &RenderError{
			RequestID: requestID,
			Stderr:    tail(stderr, stderrTailBytes),
			Err:       err,
		}
	}

	r.metrics.IncrementCounter("render.success", nil)
	r.metrics.RecordHistogram("render.duration_ms", float64(time.Since(start).Milliseconds()), nil)
	r.logger.Info("Render completed", "request_id", requestID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
