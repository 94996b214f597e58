package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"videoforge/internal/agent"
	"videoforge/internal/artifact"
	"videoforge/internal/creator"
	"videoforge/internal/ports"
)

const maxUploadMemory = 32 << 20

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".bmp": true, ".webp": true,
}

type createResponse struct {
	RequestID      string `json:"request_id"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	CheckStatusURL string `json:"check_status_url"`
	VideoURL       string `json:"video_url"`
}

// handleCreateVideo accepts a multipart form with the question or topic
// text, the pipeline type and optional image or PDF attachments. The
// pipeline runs in the background, the response carries the request id
// to poll.
func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncrementCounter("http.create_video.requests", nil)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "Geçersiz form verisi")
		return
	}

	text := r.FormValue("text")
	videoType := r.FormValue("video_type")
	if videoType == "" {
		videoType = "solution"
	}

	if ok, msg := agent.ValidateRequest(text, videoType, s.cfg.Video.MinTextLength, s.cfg.Video.MaxTextLength); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	image, pdf, err := s.readAttachments(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.New().String()
	s.logger.Info("New video request", "request_id", requestID, "video_type", videoType)

	record := ports.StatusRecord{
		Status:    creator.StatusQueued,
		Message:   "Video oluşturma işlemi başlatıldı",
		UpdatedAt: time.Now(),
	}
	if err := s.statuses.Set(r.Context(), requestID, record); err != nil {
		s.logger.Error("Failed to seed status", "request_id", requestID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "Video oluşturma hatası")
		return
	}

	// The pipeline outlives the HTTP request, so it gets its own context.
	go func() {
		if _, err := s.creator.CreateVideo(context.Background(), requestID, text, videoType, image, pdf); err != nil {
			s.logger.Error("Background video creation failed", "request_id", requestID, "error", err)
		}
	}()

	s.respondJSON(w, http.StatusAccepted, createResponse{
		RequestID:      requestID,
		Status:         creator.StatusProcessing,
		Message:        "Video oluşturma işlemi başlatıldı",
		CheckStatusURL: "/api/status/" + requestID,
		VideoURL:       "/api/video/" + requestID,
	})
}

// readAttachments pulls the first image and first PDF out of the upload.
func (s *Server) readAttachments(r *http.Request) (image, pdf []byte, err error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}

	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			ext := strings.ToLower(filepath.Ext(header.Filename))
			switch {
			case imageExtensions[ext]:
				if image == nil {
					image, err = readUpload(header)
					if err != nil {
						return nil, nil, err
					}
				}
			case ext == ".pdf":
				if pdf == nil {
					pdf, err = readUpload(header)
					if err != nil {
						return nil, nil, err
					}
				}
			default:
				return nil, nil, fmt.Errorf("Desteklenmeyen dosya tipi: %s", header.Filename)
			}
		}
	}
	return image, pdf, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("Dosya okunamadı: %s", header.Filename)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleStatus returns the current status record. Completed requests
// carry the download URLs.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("request_id")

	record, err := s.statuses.Get(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, ports.ErrStatusNotFound) {
			s.respondError(w, http.StatusNotFound, "İstek bulunamadı")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "Durum okunamadı")
		return
	}

	response := map[string]interface{}{
		"status":     record.Status,
		"message":    record.Message,
		"video_path": record.VideoPath,
		"updated_at": record.UpdatedAt,
	}
	if record.Status == creator.StatusCompleted {
		response["video_urls"] = map[string]string{
			"api": "/api/video/" + requestID,
		}
	}

	s.respondJSON(w, http.StatusOK, response)
}

// handleGetVideo serves the finished video file.
func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("request_id")

	path, err := s.videos.Path(requestID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Video bulunamadı: %s", requestID))
		return
	}

	// Large videos over slow links can outlast the server write
	// timeout, so the deadline is lifted for the transfer.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

// handleListVideos lists finished videos.
func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.videos.List()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Videolar listelenemedi")
		return
	}
	if videos == nil {
		videos = []artifact.VideoInfo{}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"videos": videos,
		"count":  len(videos),
	})
}

// handleDeleteVideo removes a finished video and its sidecars.
func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("request_id")

	if err := s.videos.Delete(r.Context(), requestID); err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Video bulunamadı")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "Video silme hatası")
		return
	}

	if err := s.statuses.Delete(r.Context(), requestID); err != nil {
		s.logger.Warn("Failed to delete status", "request_id", requestID, "error", err)
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Video silindi",
		"request_id": requestID,
	})
}

// handleCleanup removes videos older than the requested day count.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.respondError(w, http.StatusBadRequest, "Geçersiz gün değeri")
			return
		}
		days = parsed
	}

	removed, err := s.videos.CleanupOlderThan(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Temizlik hatası")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       fmt.Sprintf("%d günden eski videolar temizlendi", days),
		"cleaned_count": removed,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"service":     s.cfg.ServiceName,
		"version":     s.cfg.Version,
		"environment": s.cfg.Environment,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.metrics.IncrementCounter("http.errors", map[string]string{"status": strconv.Itoa(status)})
	s.respondJSON(w, status, map[string]string{"error": message})
}
