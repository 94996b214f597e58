package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"videoforge/internal/llm"
	"videoforge/internal/ports"
)

var (
	fencedPythonBlock = regexp.MustCompile("(?s)```python\n(.*?)```")
	fencedBlock       = regexp.MustCompile("(?s)```\n(.*?)```")
)

// CodeAgent turns solution or topic text into Manim animation code.
type CodeAgent struct {
	gen    Generator
	logger ports.Logger
}

func NewCodeAgent(gen Generator, logger ports.Logger) *CodeAgent {
	return &CodeAgent{
		gen:    gen,
		logger: logger.WithFields(map[string]interface{}{"agent": "code"}),
	}
}

// Process generates animation code for the given content. The scene type
// selects the framing (solution, topic, intro, outro).
func (a *CodeAgent) Process(ctx context.Context, content string, image []byte, sceneType string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty content", ErrInvalidInput)
	}

	a.logger.Info("Generating animation code", "scene_type", sceneType)

	response, err := a.gen.Generate(ctx, llm.Message{
		Text:  renderPrompt(manimPrompt, promptData{Content: content}),
		Image: image,
	})
	if err != nil {
		return "", err
	}

	code := extractPythonCode(response)

	ok, failed := ValidateManimCode(code)
	if !ok {
		a.logger.Error("Generated code validation failed", "failed_checks", failed)
		return "", &CodeValidationError{FailedChecks: failed}
	}
	if len(failed) > 0 {
		a.logger.Warn("Code passed with warnings", "failed_checks", failed)
	}

	return code, nil
}

// Scene pairs a scene type with its generated code.
type Scene struct {
	Type string
	Code string
}

// CombineScenes asks the model to merge individual scenes into one
// animation with consistent transitions.
func (a *CodeAgent) CombineScenes(ctx context.Context, scenes []Scene) (string, error) {
	if len(scenes) == 0 {
		return "", fmt.Errorf("%w: no scenes to combine", ErrInvalidInput)
	}

	a.logger.Info("Combining scenes", "count", len(scenes))

	var descriptions []string
	for _, scene := range scenes {
		descriptions = append(descriptions, fmt.Sprintf("Sahne Tipi: %s\nKod:\n%s\n", scene.Type, scene.Code))
	}

	response, err := a.gen.Generate(ctx, llm.Message{
		Text: renderPrompt(sceneCombinationPrompt, promptData{Scenes: strings.Join(descriptions, "\n---\n")}),
	})
	if err != nil {
		return "", err
	}

	code := extractPythonCode(response)

	ok, failed := ValidateManimCode(code)
	if !ok {
		a.logger.Error("Combined code validation failed", "failed_checks", failed)
		return "", &CodeValidationError{FailedChecks: failed}
	}
	if len(failed) > 0 {
		a.logger.Warn("Combined code passed with warnings", "failed_checks", failed)
	}

	return code, nil
}

// FixCode asks the model to repair code that failed to render. The render
// error message is embedded in the prompt after sanitization. When the
// extracted fix looks truncated the raw response is returned instead, so
// a downstream validation can still reject it.
func (a *CodeAgent) FixCode(ctx context.Context, brokenCode, errorMessage string) (string, error) {
	a.logger.Info("Attempting to fix animation code")

	response, err := a.gen.Generate(ctx, llm.Message{
		Text: renderPrompt(errorFixPrompt, promptData{
			Code:  brokenCode,
			Error: sanitizeErrorMessage(errorMessage),
		}),
	})
	if err != nil {
		return "", err
	}

	fixed := extractPythonCode(response)
	if len(fixed) < 100 {
		fixed = response
	}

	a.logger.Info("Code fix generated", "length", len(fixed))
	return fixed, nil
}

// extractPythonCode pulls the first fenced python block out of a model
// response, then the first bare fenced block, falling back to the trimmed
// response when no fence is found.
func extractPythonCode(response string) string {
	if match := fencedPythonBlock.FindStringSubmatch(response); match != nil {
		return strings.TrimSpace(match[1])
	}
	if match := fencedBlock.FindStringSubmatch(response); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(response)
}
