package agent

import (
	"context"
	"fmt"

	"videoforge/internal/ports"
)

// sceneCoder narrows the code agent to what scene assembly needs.
type sceneCoder interface {
	Process(ctx context.Context, content string, image []byte, sceneType string) (string, error)
	CombineScenes(ctx context.Context, scenes []Scene) (string, error)
}

// SceneManager assembles multi-scene videos from intro, content and outro
// parts, delegating code generation to the code agent.
type SceneManager struct {
	codeAgent sceneCoder
	logger    ports.Logger
	scenes    []Scene
}

func NewSceneManager(codeAgent sceneCoder, logger ports.Logger) *SceneManager {
	return &SceneManager{
		codeAgent: codeAgent,
		logger:    logger.WithFields(map[string]interface{}{"component": "scene_manager"}),
	}
}

// CreateIntroScene generates an opening scene for the given title.
func (m *SceneManager) CreateIntroScene(ctx context.Context, title, subtitle string) (string, error) {
	m.logger.Info("Creating intro scene", "title", title)

	content := fmt.Sprintf(
		"Başlık: %s\nAlt Başlık: %s\nBu bir giriş sahnesi. Logo animasyonu, başlık efektleri ve yumuşak geçişler kullan.",
		title, subtitle)

	code, err := m.codeAgent.Process(ctx, content, nil, "intro")
	if err != nil {
		return "", err
	}
	m.scenes = append(m.scenes, Scene{Type: "intro", Code: code})
	return code, nil
}

// CreateContentScene generates the main scene for solution or topic content.
func (m *SceneManager) CreateContentScene(ctx context.Context, content, sceneType string, image []byte) (string, error) {
	m.logger.Info("Creating content scene", "scene_type", sceneType)

	code, err := m.codeAgent.Process(ctx, content, image, sceneType)
	if err != nil {
		return "", err
	}
	m.scenes = append(m.scenes, Scene{Type: sceneType, Code: code})
	return code, nil
}

// CreateOutroScene generates a closing scene.
func (m *SceneManager) CreateOutroScene(ctx context.Context, summary string) (string, error) {
	m.logger.Info("Creating outro scene")

	if summary == "" {
		summary = "Bu videoda öğrendiklerimiz..."
	}
	content := fmt.Sprintf(
		"Video Özeti: %s\nTeşekkür mesajı ve logo ile bitir.", summary)

	code, err := m.codeAgent.Process(ctx, content, nil, "outro")
	if err != nil {
		return "", err
	}
	m.scenes = append(m.scenes, Scene{Type: "outro", Code: code})
	return code, nil
}

// CombineAllScenes merges every scene created so far into one animation.
func (m *SceneManager) CombineAllScenes(ctx context.Context) (string, error) {
	if len(m.scenes) == 0 {
		return "", fmt.Errorf("%w: no scenes to combine", ErrInvalidInput)
	}
	return m.codeAgent.CombineScenes(ctx, m.scenes)
}

// Scenes returns the scenes created so far, in creation order.
func (m *SceneManager) Scenes() []Scene {
	return m.scenes
}
