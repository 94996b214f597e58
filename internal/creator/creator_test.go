package creator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoforge/internal/agent"
	"videoforge/internal/config"
	"videoforge/internal/observability/adapters/stdout"
	"videoforge/internal/ports"
	"videoforge/internal/status/adapters/memory"
)

type stubSolutionAgent struct {
	result string
	err    error
	calls  int
}

func (s *stubSolutionAgent) Process(_ context.Context, _ string, _, _ []byte) (string, error) {
	s.calls++
	return s.result, s.err
}

type stubTopicAgent struct {
	result string
	err    error
	calls  int
}

func (s *stubTopicAgent) Process(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.result, s.err
}

type stubCodeAgent struct {
	code          string
	processErr    error
	fixResult     string
	fixErr        error
	fixCalls      int
	fixInputs     []string
	sceneTypes    []string
	combineResult string
	combineCalls  int
	combined      []agent.Scene
}

func (s *stubCodeAgent) Process(_ context.Context, _ string, _ []byte, sceneType string) (string, error) {
	s.sceneTypes = append(s.sceneTypes, sceneType)
	return s.code, s.processErr
}

func (s *stubCodeAgent) CombineScenes(_ context.Context, scenes []agent.Scene) (string, error) {
	s.combineCalls++
	s.combined = scenes
	if s.combineResult != "" {
		return s.combineResult, s.processErr
	}
	return s.code, s.processErr
}

func (s *stubCodeAgent) FixCode(_ context.Context, brokenCode, _ string) (string, error) {
	s.fixCalls++
	s.fixInputs = append(s.fixInputs, brokenCode)
	if s.fixErr != nil {
		return "", s.fixErr
	}
	return s.fixResult, nil
}

// stubRenderer fails the first n renders and records the code it saw.
type stubRenderer struct {
	failures int
	calls    int
	codes    []string
	err      error
}

func (s *stubRenderer) Render(_ context.Context, _, code string) error {
	s.calls++
	s.codes = append(s.codes, code)
	if s.calls <= s.failures {
		if s.err != nil {
			return s.err
		}
		return fmt.Errorf("render boom %d", s.calls)
	}
	return nil
}

type stubLocator struct {
	path string
	err  error
}

func (s *stubLocator) Locate(_ context.Context, _ string) (string, error) {
	return s.path, s.err
}

type stubAudio struct{}

func (stubAudio) EnsureAudio(_ context.Context, path string) string { return path }

type fixture struct {
	creator  *Creator
	solution *stubSolutionAgent
	topic    *stubTopicAgent
	code     *stubCodeAgent
	renderer *stubRenderer
	statuses *memory.Store
}

func newFixture(renderer *stubRenderer, code *stubCodeAgent) *fixture {
	solution := &stubSolutionAgent{result: "çözüm metni"}
	topic := &stubTopicAgent{result: "konu anlatımı"}
	statuses := memory.NewStore()

	c := New(Deps{
		Solution: solution,
		Topic:    topic,
		Code:     code,
		Renderer: renderer,
		Locator:  &stubLocator{path: "/videos/test.mp4"},
		Audio:    stubAudio{},
		Statuses: statuses,
	}, config.RetryConfig{
		MaxFixAttempts:        3,
		MaxRegenerateAttempts: 2,
		RegenerateDelay:       time.Millisecond,
	}, stdout.NewLogger("error"), stdout.NewMetrics())
	c.sleep = func(context.Context, time.Duration) error { return nil }

	return &fixture{creator: c, solution: solution, topic: topic, code: code, renderer: renderer, statuses: statuses}
}

func (f *fixture) status(t *testing.T, requestID string) ports.StatusRecord {
	t.Helper()
	record, err := f.statuses.Get(context.Background(), requestID)
	require.NoError(t, err)
	return record
}

func TestCreateVideo_SolutionFirstTry(t *testing.T) {
	f := newFixture(&stubRenderer{}, &stubCodeAgent{code: "scene code"})

	path, err := f.creator.CreateVideo(context.Background(), "req-1", "soru", "solution", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "/videos/test.mp4", path)
	assert.Equal(t, 1, f.renderer.calls)
	assert.Zero(t, f.code.fixCalls)

	record := f.status(t, "req-1")
	assert.Equal(t, StatusCompleted, record.Status)
	assert.Equal(t, "Video hazır", record.Message)
	assert.Equal(t, "/videos/test.mp4", record.VideoPath)
}

func TestCreateVideo_SucceedsAfterOneRepair(t *testing.T) {
	renderer := &stubRenderer{failures: 1}
	code := &stubCodeAgent{code: "broken code", fixResult: "fixed code"}
	f := newFixture(renderer, code)

	path, err := f.creator.CreateVideo(context.Background(), "req-2", "soru", "solution", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "/videos/test.mp4", path)
	assert.Equal(t, 2, renderer.calls)
	assert.Equal(t, 1, code.fixCalls)
	// The second render runs the repaired code, not the original.
	assert.Equal(t, []string{"broken code", "fixed code"}, renderer.codes)
}

func TestCreateVideo_RepairFailurePropagatesRenderError(t *testing.T) {
	renderErr := errors.New("render exploded")
	renderer := &stubRenderer{failures: 10, err: renderErr}
	code := &stubCodeAgent{code: "broken code", fixErr: errors.New("fix exploded")}
	f := newFixture(renderer, code)

	_, err := f.creator.CreateVideo(context.Background(), "req-3", "soru", "solution", nil, nil)

	// The render error, not the repair error, surfaces.
	require.ErrorIs(t, err, renderErr)
	assert.NotContains(t, err.Error(), "fix exploded")

	// One render per regeneration attempt, each aborted by the failed fix.
	assert.Equal(t, 2, renderer.calls)

	record := f.status(t, "req-3")
	assert.Equal(t, StatusFailed, record.Status)
	assert.Contains(t, record.Message, "Video oluşturulamadı")
}

func TestCreateVideo_FixAttemptBound(t *testing.T) {
	renderer := &stubRenderer{failures: 100}
	code := &stubCodeAgent{code: "broken code", fixResult: "still broken"}
	f := newFixture(renderer, code)

	_, err := f.creator.CreateVideo(context.Background(), "req-4", "soru", "solution", nil, nil)

	require.Error(t, err)
	// 3 fix attempts per regeneration, 2 regenerations.
	assert.Equal(t, 6, renderer.calls)
	// The last attempt of each cycle does not request a repair.
	assert.Equal(t, 4, code.fixCalls)
}

func TestCreateVideo_RegeneratesWholePipeline(t *testing.T) {
	// First regeneration exhausts its fix attempts, second succeeds at once.
	renderer := &stubRenderer{failures: 3}
	code := &stubCodeAgent{code: "scene code", fixResult: "scene code v2"}
	f := newFixture(renderer, code)

	path, err := f.creator.CreateVideo(context.Background(), "req-5", "soru", "solution", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "/videos/test.mp4", path)
	assert.Equal(t, 2, f.solution.calls, "solution is regenerated from scratch")
	assert.Equal(t, 4, renderer.calls)
}

func TestCreateVideo_TopicPipeline(t *testing.T) {
	f := newFixture(&stubRenderer{}, &stubCodeAgent{code: "scene code"})

	path, err := f.creator.CreateVideo(context.Background(), "req-6", "türev", "topic", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "/videos/test.mp4", path)
	assert.Equal(t, 1, f.topic.calls)
	assert.Zero(t, f.solution.calls)
}

func TestCreateVideo_FullPipelineAssemblesScenes(t *testing.T) {
	code := &stubCodeAgent{code: "scene code", combineResult: "combined code"}
	f := newFixture(&stubRenderer{}, code)

	path, err := f.creator.CreateVideo(context.Background(), "req-7", "integral sorusu", "full", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "/videos/test.mp4", path)
	assert.Equal(t, 1, f.solution.calls)
	assert.Equal(t, []string{"intro", "solution", "outro"}, code.sceneTypes)

	require.Equal(t, 1, code.combineCalls)
	require.Len(t, code.combined, 3)
	assert.Equal(t, "intro", code.combined[0].Type)
	assert.Equal(t, "solution", code.combined[1].Type)
	assert.Equal(t, "outro", code.combined[2].Type)

	// The combined animation is what gets rendered.
	assert.Equal(t, []string{"combined code"}, f.renderer.codes)
}

func TestCreateVideo_GenerationFailureFailsRequest(t *testing.T) {
	f := newFixture(&stubRenderer{}, &stubCodeAgent{code: "scene code"})
	f.solution.err = errors.New("provider quota exceeded")

	_, err := f.creator.CreateVideo(context.Background(), "req-7", "soru", "solution", nil, nil)

	require.Error(t, err)
	assert.Equal(t, 2, f.solution.calls, "generation retried per regeneration attempt")
	assert.Zero(t, f.renderer.calls)

	record := f.status(t, "req-7")
	assert.Equal(t, StatusFailed, record.Status)
}

func TestCreateVideo_MissingArtifactTriggersRepair(t *testing.T) {
	code := &stubCodeAgent{code: "scene code", fixResult: "scene code v2"}
	solution := &stubSolutionAgent{result: "çözüm metni"}
	statuses := memory.NewStore()
	renderer := &stubRenderer{}

	locateErr := errors.New("video artifact not found: req-8")
	calls := 0
	loc := &flakyLocator{err: locateErr, succeedAfter: 1, calls: &calls}

	c := New(Deps{
		Solution: solution,
		Topic:    &stubTopicAgent{},
		Code:     code,
		Renderer: renderer,
		Locator:  loc,
		Audio:    stubAudio{},
		Statuses: statuses,
	}, config.RetryConfig{MaxFixAttempts: 3, MaxRegenerateAttempts: 2, RegenerateDelay: time.Millisecond},
		stdout.NewLogger("error"), stdout.NewMetrics())
	c.sleep = func(context.Context, time.Duration) error { return nil }

	path, err := c.CreateVideo(context.Background(), "req-8", "soru", "solution", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "/videos/found.mp4", path)
	assert.Equal(t, 1, code.fixCalls, "locate miss feeds the repair loop")
}

type flakyLocator struct {
	err          error
	succeedAfter int
	calls        *int
}

func (l *flakyLocator) Locate(_ context.Context, _ string) (string, error) {
	*l.calls++
	if *l.calls <= l.succeedAfter {
		return "", l.err
	}
	return "/videos/found.mp4", nil
}
