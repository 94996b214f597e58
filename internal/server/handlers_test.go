package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoforge/internal/agent"
	"videoforge/internal/artifact"
	"videoforge/internal/config"
	"videoforge/internal/creator"
	"videoforge/internal/observability/adapters/stdout"
	"videoforge/internal/ports"
	"videoforge/internal/status/adapters/memory"
)

type noopSolution struct{}

func (noopSolution) Process(context.Context, string, []byte, []byte) (string, error) {
	return "", errors.New("not generating in tests")
}

type noopTopic struct{}

func (noopTopic) Process(context.Context, string) (string, error) {
	return "", errors.New("not generating in tests")
}

type noopCode struct{}

func (noopCode) Process(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("not generating in tests")
}
func (noopCode) CombineScenes(context.Context, []agent.Scene) (string, error) {
	return "", errors.New("not generating in tests")
}
func (noopCode) FixCode(context.Context, string, string) (string, error) {
	return "", errors.New("not generating in tests")
}

type noopRenderer struct{}

func (noopRenderer) Render(context.Context, string, string) error { return nil }

type noopLocator struct{}

func (noopLocator) Locate(context.Context, string) (string, error) { return "", artifact.ErrNotFound }

type noopAudio struct{}

func (noopAudio) EnsureAudio(_ context.Context, p string) string { return p }

// nullStorage satisfies the object storage port without persisting.
type nullStorage struct{}

func (nullStorage) Put(context.Context, string, io.Reader, ports.ObjectMetadata) error { return nil }
func (nullStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, ports.ErrObjectNotFound
}
func (nullStorage) Delete(context.Context, string) error       { return nil }
func (nullStorage) Exists(context.Context, string) (bool, error) { return false, nil }
func (nullStorage) List(context.Context, string) ([]ports.ObjectInfo, error) {
	return nil, nil
}

type fixture struct {
	server   *Server
	mux      *http.ServeMux
	statuses *memory.Store
	finalDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Video.MinTextLength = 10
	cfg.Video.MaxTextLength = 5000
	finalDir := t.TempDir()

	statuses := memory.NewStore()
	logger := stdout.NewLogger("error")
	metrics := stdout.NewMetrics()

	videos, err := artifact.NewStore(finalDir, nullStorage{}, logger, metrics)
	require.NoError(t, err)

	pipeline := creator.New(creator.Deps{
		Solution: noopSolution{},
		Topic:    noopTopic{},
		Code:     noopCode{},
		Renderer: noopRenderer{},
		Locator:  noopLocator{},
		Audio:    noopAudio{},
		Statuses: statuses,
	}, config.RetryConfig{MaxFixAttempts: 1, MaxRegenerateAttempts: 1, RegenerateDelay: time.Millisecond},
		logger, metrics)

	srv := New(cfg, pipeline, statuses, videos, logger, metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/create_video", srv.handleCreateVideo)
	mux.HandleFunc("GET /api/status/{request_id}", srv.handleStatus)
	mux.HandleFunc("GET /api/video/{request_id}", srv.handleGetVideo)
	mux.HandleFunc("GET /api/videos", srv.handleListVideos)
	mux.HandleFunc("DELETE /api/video/{request_id}", srv.handleDeleteVideo)
	mux.HandleFunc("POST /api/cleanup", srv.handleCleanup)
	mux.HandleFunc("GET /healthz", srv.handleHealth)

	return &fixture{server: srv, mux: mux, statuses: statuses, finalDir: finalDir}
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("files", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestCreateVideo_Accepted(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartBody(t, map[string]string{
		"text":       "Bir üçgenin alanını hesaplayın",
		"video_type": "solution",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create_video", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["request_id"])
	assert.Equal(t, "/api/status/"+resp["request_id"], resp["check_status_url"])

	// The status record is seeded before the response returns.
	_, err := f.statuses.Get(context.Background(), resp["request_id"])
	assert.NoError(t, err)
}

func TestCreateVideo_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		fields  map[string]string
		wantMsg string
	}{
		{"missing text", map[string]string{"video_type": "solution"}, "Text alanı zorunludur"},
		{"short text", map[string]string{"text": "kısa"}, "Text en az 10 karakter olmalıdır"},
		{"bad type", map[string]string{"text": "yeterince uzun bir soru metni", "video_type": "gif"},
			"Geçersiz video tipi. Geçerli tipler: solution, topic, full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, "", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/create_video", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp["error"])
		})
	}
}

func TestCreateVideo_RejectsUnsupportedFileType(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartBody(t, map[string]string{
		"text": "yeterince uzun bir soru metni",
	}, "malware.exe", []byte{0x4d, 0x5a})

	req := httptest.NewRequest(http.MethodPost, "/api/create_video", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Desteklenmeyen dosya tipi")
}

func TestStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status/unknown", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "İstek bulunamadı")
}

func TestStatus_CompletedCarriesURLs(t *testing.T) {
	f := newFixture(t)

	record := ports.StatusRecord{
		Status:    creator.StatusCompleted,
		Message:   "Video hazır",
		VideoPath: "/videos/req-1.mp4",
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.statuses.Set(context.Background(), "req-1", record))

	req := httptest.NewRequest(http.MethodGet, "/api/status/req-1", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])

	urls, ok := resp["video_urls"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/api/video/req-1", urls["api"])
}

func TestGetVideo_ServesFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.finalDir, "req-2.mp4"), []byte("video data"), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/video/req-2", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video data", rec.Body.String())
}

func TestGetVideo_NotFound(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/video/missing", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVideos(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.finalDir, "a.mp4"), []byte("aa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(f.finalDir, "b.mp4"), []byte("bb"), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Videos []artifact.VideoInfo `json:"videos"`
		Count  int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestDeleteVideo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.finalDir, "req-3.mp4"), []byte("vv"), 0644))

	req := httptest.NewRequest(http.MethodDelete, "/api/video/req-3", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoFileExists(t, filepath.Join(f.finalDir, "req-3.mp4"))
}

func TestCleanup_InvalidDays(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/cleanup?days=zero", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestServer_AppliesConfiguredTimeouts(t *testing.T) {
	f := newFixture(t)
	f.server.cfg.HTTP.ReadTimeout = 17 * time.Second
	f.server.cfg.HTTP.WriteTimeout = 23 * time.Second

	hs := f.server.newHTTPServer()

	assert.Equal(t, 17*time.Second, hs.ReadTimeout)
	assert.Equal(t, 23*time.Second, hs.WriteTimeout)
}
