package creator

import (
	"context"
	"fmt"
	"time"

	"videoforge/internal/agent"
	"videoforge/internal/config"
	"videoforge/internal/ports"
)

// Status values a request moves through.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusRendering  = "rendering"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// solutionAgent, topicAgent and codeAgent narrow the agent types to what
// the creator calls, so tests can stub generation.
type solutionAgent interface {
	Process(ctx context.Context, question string, image, pdf []byte) (string, error)
}

type topicAgent interface {
	Process(ctx context.Context, topic string) (string, error)
}

type codeAgent interface {
	Process(ctx context.Context, content string, image []byte, sceneType string) (string, error)
	CombineScenes(ctx context.Context, scenes []agent.Scene) (string, error)
	FixCode(ctx context.Context, brokenCode, errorMessage string) (string, error)
}

type renderer interface {
	Render(ctx context.Context, requestID, code string) error
}

type locator interface {
	Locate(ctx context.Context, requestID string) (string, error)
}

type audioFixer interface {
	EnsureAudio(ctx context.Context, videoPath string) string
}

// Creator orchestrates the full pipeline: content generation, code
// synthesis, rendering with bounded repair retries, artifact promotion
// and audio recovery. Failures at the render stage feed a code repair
// loop before the whole generation is retried from scratch.
type Creator struct {
	solution solutionAgent
	topic    topicAgent
	code     codeAgent
	renderer renderer
	locator  locator
	audio    audioFixer
	statuses ports.StatusStore
	retry    config.RetryConfig
	logger   ports.Logger
	metrics  ports.Metrics

	// sleep is swapped in tests to skip real regeneration delays.
	sleep func(ctx context.Context, d time.Duration) error
}

type Deps struct {
	Solution solutionAgent
	Topic    topicAgent
	Code     codeAgent
	Renderer renderer
	Locator  locator
	Audio    audioFixer
	Statuses ports.StatusStore
}

func New(deps Deps, retry config.RetryConfig, logger ports.Logger, metrics ports.Metrics) *Creator {
	return &Creator{
		solution: deps.Solution,
		topic:    deps.Topic,
		code:     deps.Code,
		renderer: deps.Renderer,
		locator:  deps.Locator,
		audio:    deps.Audio,
		statuses: deps.Statuses,
		retry:    retry,
		logger:   logger.WithFields(map[string]interface{}{"component": "creator"}),
		metrics:  metrics.WithTags(map[string]string{"component": "creator"}),
		sleep:    sleepCtx,
	}
}

// CreateVideo runs the pipeline for one request and returns the final
// video path. The status store is updated at every stage transition, so
// clients polling the request see progress in Turkish.
func (c *Creator) CreateVideo(ctx context.Context, requestID, content, videoType string, image, pdf []byte) (string, error) {
	c.updateStatus(ctx, requestID, StatusProcessing, "Video oluşturma başladı", "")
	c.metrics.IncrementCounter("creator.requests", map[string]string{"video_type": videoType})
	start := time.Now()

	var videoPath string
	var err error
	switch videoType {
	case "full":
		videoPath, err = c.createFullVideo(ctx, requestID, content, image, pdf)
	case "topic":
		videoPath, err = c.createTopicVideo(ctx, requestID, content)
	default:
		videoPath, err = c.createSolutionVideo(ctx, requestID, content, image, pdf)
	}

	if err != nil {
		c.logger.Error("Video creation error", "request_id", requestID, "error", err)
		c.metrics.IncrementCounter("creator.failures", map[string]string{"video_type": videoType})
		c.updateStatus(ctx, requestID, StatusFailed, fmt.Sprintf("Video oluşturulamadı: %s", err), "")
		return "", err
	}

	c.metrics.IncrementCounter("creator.completed", map[string]string{"video_type": videoType})
	c.metrics.RecordHistogram("creator.duration_ms", float64(time.Since(start).Milliseconds()),
		map[string]string{"video_type": videoType})
	c.updateStatus(ctx, requestID, StatusCompleted, "Video hazır", videoPath)
	return videoPath, nil
}

// createSolutionVideo regenerates the whole solution pipeline when a
// render, including its repair attempts, fails completely.
func (c *Creator) createSolutionVideo(ctx context.Context, requestID, content string, image, pdf []byte) (string, error) {
	c.logger.Info("Creating solution video", "request_id", requestID)

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxRegenerateAttempts; attempt++ {
		c.updateStatus(ctx, requestID, StatusProcessing,
			fmt.Sprintf("Kod oluşturuluyor (Deneme %d/%d)", attempt+1, c.retry.MaxRegenerateAttempts), "")

		videoPath, err := func() (string, error) {
			solution, err := c.solution.Process(ctx, content, image, pdf)
			if err != nil {
				return "", err
			}
			code, err := c.code.Process(ctx, solution, image, "solution")
			if err != nil {
				return "", err
			}
			return c.renderWithRetry(ctx, requestID, code)
		}()
		if err == nil {
			return videoPath, nil
		}

		lastErr = err
		c.logger.Warn("Regeneration attempt failed", "attempt", attempt+1, "error", err)
		if attempt == c.retry.MaxRegenerateAttempts-1 {
			break
		}
		if err := c.sleep(ctx, c.retry.RegenerateDelay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("tüm denemeler başarısız: %w", lastErr)
}

func (c *Creator) createTopicVideo(ctx context.Context, requestID, content string) (string, error) {
	c.logger.Info("Creating topic video", "request_id", requestID)

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxRegenerateAttempts; attempt++ {
		c.updateStatus(ctx, requestID, StatusProcessing,
			fmt.Sprintf("Konu anlatımı oluşturuluyor (Deneme %d/%d)", attempt+1, c.retry.MaxRegenerateAttempts), "")

		videoPath, err := func() (string, error) {
			explanation, err := c.topic.Process(ctx, content)
			if err != nil {
				return "", err
			}
			code, err := c.code.Process(ctx, explanation, nil, "topic")
			if err != nil {
				return "", err
			}
			return c.renderWithRetry(ctx, requestID, code)
		}()
		if err == nil {
			return videoPath, nil
		}

		lastErr = err
		c.logger.Warn("Topic generation attempt failed", "attempt", attempt+1, "error", err)
		if attempt == c.retry.MaxRegenerateAttempts-1 {
			break
		}
		if err := c.sleep(ctx, c.retry.RegenerateDelay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("tüm konu anlatımı denemeleri başarısız: %w", lastErr)
}

// createFullVideo builds intro, content and outro scenes and renders the
// combined animation.
func (c *Creator) createFullVideo(ctx context.Context, requestID, content string, image, pdf []byte) (string, error) {
	c.logger.Info("Creating full video", "request_id", requestID)

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxRegenerateAttempts; attempt++ {
		c.updateStatus(ctx, requestID, StatusProcessing,
			fmt.Sprintf("Tam video oluşturuluyor (Deneme %d/%d)", attempt+1, c.retry.MaxRegenerateAttempts), "")

		videoPath, err := func() (string, error) {
			solution, err := c.solution.Process(ctx, content, image, pdf)
			if err != nil {
				return "", err
			}

			combined, err := c.buildFullScenes(ctx, content, solution, image)
			if err != nil {
				return "", err
			}

			return c.renderWithRetry(ctx, requestID, combined)
		}()
		if err == nil {
			return videoPath, nil
		}

		lastErr = err
		c.logger.Warn("Full video attempt failed", "attempt", attempt+1, "error", err)
		if attempt == c.retry.MaxRegenerateAttempts-1 {
			break
		}
		if err := c.sleep(ctx, c.retry.RegenerateDelay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("tüm tam video denemeleri başarısız: %w", lastErr)
}

// buildFullScenes assembles intro, content and outro scenes through a
// fresh scene manager and returns the combined animation code.
func (c *Creator) buildFullScenes(ctx context.Context, content, solution string, image []byte) (string, error) {
	scenes := agent.NewSceneManager(c.code, c.logger)

	if _, err := scenes.CreateIntroScene(ctx, "Matematik Çözümü", truncate(content, 50)); err != nil {
		return "", err
	}
	if _, err := scenes.CreateContentScene(ctx, solution, "solution", image); err != nil {
		return "", err
	}
	summary := fmt.Sprintf("Bu videoda %s problemini çözdük.", truncate(content, 100))
	if _, err := scenes.CreateOutroScene(ctx, summary); err != nil {
		return "", err
	}

	return scenes.CombineAllScenes(ctx)
}

// renderWithRetry renders the code, repairing it between attempts. When a
// repair request itself fails, or the attempts run out, the render error
// that started the cycle is returned, not the repair error. That keeps
// the reported failure pointing at the code that actually broke.
func (c *Creator) renderWithRetry(ctx context.Context, requestID, initialCode string) (string, error) {
	currentCode := initialCode

	for attempt := 0; attempt < c.retry.MaxFixAttempts; attempt++ {
		c.updateStatus(ctx, requestID, StatusRendering,
			fmt.Sprintf("Video renderleniyor (Düzeltme denemesi %d/%d)", attempt+1, c.retry.MaxFixAttempts), "")

		videoPath, renderErr := c.renderOnce(ctx, requestID, currentCode)
		if renderErr == nil {
			c.logger.Info("Video successfully rendered", "request_id", requestID, "attempt", attempt+1)
			return videoPath, nil
		}

		c.logger.Warn("Render attempt failed", "attempt", attempt+1, "error", renderErr)
		c.metrics.IncrementCounter("creator.render_failures", nil)

		if attempt == c.retry.MaxFixAttempts-1 {
			c.logger.Error("All fix attempts failed", "request_id", requestID, "error", renderErr)
			return "", renderErr
		}

		c.updateStatus(ctx, requestID, StatusProcessing,
			fmt.Sprintf("Kod düzeltiliyor... (Hata: %s)", truncate(renderErr.Error(), 100)), "")

		fixed, fixErr := c.code.FixCode(ctx, currentCode, renderErr.Error())
		if fixErr != nil {
			c.logger.Error("Code fix failed", "error", fixErr)
			return "", renderErr
		}
		currentCode = fixed
		c.logger.Info("Code fixed", "next_attempt", attempt+2)
	}

	return "", fmt.Errorf("tüm düzeltme denemeleri başarısız")
}

// renderOnce runs a single render, promotes the artifact and recovers
// missing audio. A missing artifact counts as a render failure so the
// repair loop gets a chance at it.
func (c *Creator) renderOnce(ctx context.Context, requestID, code string) (string, error) {
	if err := c.renderer.Render(ctx, requestID, code); err != nil {
		return "", err
	}

	videoPath, err := c.locator.Locate(ctx, requestID)
	if err != nil {
		return "", err
	}

	c.updateStatus(ctx, requestID, StatusRendering, "Video ses ile birlikte işleniyor...", "")
	return c.audio.EnsureAudio(ctx, videoPath), nil
}

func (c *Creator) updateStatus(ctx context.Context, requestID, status, message, videoPath string) {
	record := ports.StatusRecord{
		Status:    status,
		Message:   message,
		VideoPath: videoPath,
		UpdatedAt: time.Now(),
	}
	if err := c.statuses.Set(ctx, requestID, record); err != nil {
		c.logger.Warn("Failed to update status", "request_id", requestID, "error", err)
	}
	c.logger.Info("Status updated", "request_id", requestID, "status", status, "message", message)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
