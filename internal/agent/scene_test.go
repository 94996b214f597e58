package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoforge/internal/observability/adapters/stdout"
)

func newTestSceneManager(gen *stubGenerator) *SceneManager {
	logger := stdout.NewLogger("error")
	return NewSceneManager(NewCodeAgent(gen, logger), logger)
}

func TestSceneManager_AccumulatesScenesInOrder(t *testing.T) {
	gen := &stubGenerator{responses: []string{"```python\n" + validSceneCode + "```"}}
	m := newTestSceneManager(gen)

	_, err := m.CreateIntroScene(context.Background(), "Matematik Çözümü", "üçgen sorusu")
	require.NoError(t, err)
	_, err = m.CreateContentScene(context.Background(), "çözüm metni", "solution", nil)
	require.NoError(t, err)
	_, err = m.CreateOutroScene(context.Background(), "özet")
	require.NoError(t, err)

	scenes := m.Scenes()
	require.Len(t, scenes, 3)
	assert.Equal(t, "intro", scenes[0].Type)
	assert.Equal(t, "solution", scenes[1].Type)
	assert.Equal(t, "outro", scenes[2].Type)
	assert.Equal(t, validSceneCode, scenes[0].Code+"\n")

	// Scene framing reaches the model prompts.
	assert.Contains(t, gen.prompts[0], "Başlık: Matematik Çözümü")
	assert.Contains(t, gen.prompts[2], "Video Özeti: özet")
}

func TestSceneManager_OutroDefaultSummary(t *testing.T) {
	gen := &stubGenerator{responses: []string{"```python\n" + validSceneCode + "```"}}
	m := newTestSceneManager(gen)

	_, err := m.CreateOutroScene(context.Background(), "")
	require.NoError(t, err)

	assert.Contains(t, gen.prompts[0], "Bu videoda öğrendiklerimiz...")
}

func TestSceneManager_CombineAllScenes(t *testing.T) {
	gen := &stubGenerator{responses: []string{"```python\n" + validSceneCode + "```"}}
	m := newTestSceneManager(gen)

	_, err := m.CreateIntroScene(context.Background(), "Başlık", "alt başlık")
	require.NoError(t, err)

	combined, err := m.CombineAllScenes(context.Background())
	require.NoError(t, err)
	assert.Contains(t, combined, "class Solution(VoiceoverScene)")
}

func TestSceneManager_CombineWithoutScenes(t *testing.T) {
	m := newTestSceneManager(&stubGenerator{})

	_, err := m.CombineAllScenes(context.Background())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
