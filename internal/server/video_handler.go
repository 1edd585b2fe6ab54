// internal/server/video_handler.go
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/database"
)

var ErrInvalidFileType = errors.New("invalid file type")

const maxVideoSize = 80 << 20 // 80 MB

var allowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/ogg":       true,
	"application/ogg": true,
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// VideoHandler manages the gallery video uploads shown on the public site.
type VideoHandler struct {
	db        *database.DB
	logger    *log.Logger
	csrf      *CSRF
	uploadDir string
}

func NewVideoHandler(db *database.DB, logger *log.Logger, csrf *CSRF, uploadDir string) (*VideoHandler, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create video directory %s: %w", uploadDir, err)
	}
	return &VideoHandler{
		db:        db,
		logger:    logger,
		csrf:      csrf,
		uploadDir: uploadDir,
	}, nil
}

// sanitizeName keeps only filesystem-safe characters from a client filename.
func sanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(path.Base(name), "_")
}

// validateVideo sniffs the real content type from the file header. The
// client-sent Content-Type is not trusted.
func (h *VideoHandler) validateVideo(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > maxVideoSize {
		return "", fmt.Errorf("file too large (max %d MB)", maxVideoSize/(1<<20))
	}
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type detection: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}
	detected := http.DetectContentType(buffer[:n])
	if !allowedVideoTypes[detected] {
		h.logger.Printf("Invalid video content type '%s' for file '%s' (client-sent: '%s')",
			detected, header.Filename, header.Header.Get("Content-Type"))
		return "", ErrInvalidFileType
	}
	return detected, nil
}

// List returns the stored videos newest first with their public URLs.
func (h *VideoHandler) List(ctx context.Context) ([]videoInfo, error) {
	media, err := h.db.ListMedia(ctx, "video")
	if err != nil {
		return nil, err
	}
	videos := make([]videoInfo, 0, len(media))
	for _, m := range media {
		videos = append(videos, videoInfo{
			Name:       m.Filename,
			URL:        "/static/videos/" + m.Filename,
			SizeBytes:  m.SizeBytes,
			UploadedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return videos, nil
}

// HandleVideos serves GET (list) and POST (upload) on /admin/videos.
func (h *VideoHandler) HandleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		videos, err := h.List(r.Context())
		if err != nil {
			h.logger.Printf("Error listing videos: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]any{"videos": videos})

	case http.MethodPost:
		h.handleUpload(w, r)

	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *VideoHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.csrf.Validate(w, r) {
		return
	}
	if err := r.ParseMultipartForm(maxVideoSize); err != nil {
		RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("File too large (max %d MB)", maxVideoSize/(1<<20)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer file.Close()

	contentType, err := h.validateVideo(file, header)
	if err != nil {
		if errors.Is(err, ErrInvalidFileType) {
			RespondWithError(w, http.StatusBadRequest, "Only mp4, webm and ogg videos are accepted")
			return
		}
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := uuid.NewString()[:8] + "-" + sanitizeName(header.Filename)
	destPath := filepath.Join(h.uploadDir, filename)

	dest, err := os.Create(destPath)
	if err != nil {
		h.logger.Printf("Error creating video file %s: %v", destPath, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save video")
		return
	}
	written, err := io.Copy(dest, file)
	closeErr := dest.Close()
	if err != nil || closeErr != nil {
		os.Remove(destPath)
		h.logger.Printf("Error writing video file %s: copy=%v close=%v", destPath, err, closeErr)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save video")
		return
	}

	if err := h.db.AddMedia(r.Context(), filename, "video", contentType, written); err != nil {
		os.Remove(destPath)
		h.logger.Printf("Error recording video metadata for %s: %v", filename, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save video")
		return
	}

	RespondWithJSON(w, http.StatusCreated, videoInfo{
		Name:      filename,
		URL:       "/static/videos/" + filename,
		SizeBytes: written,
	})
}

// HandleVideoDelete serves DELETE /admin/videos/{name}.
func (h *VideoHandler) HandleVideoDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !h.csrf.Validate(w, r) {
		return
	}

	name := sanitizeName(strings.TrimPrefix(r.URL.Path, "/admin/videos/"))
	if name == "" || name == "." {
		RespondWithError(w, http.StatusBadRequest, "Video name required")
		return
	}

	if err := h.db.DeleteMedia(r.Context(), name); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Video not found")
			return
		}
		h.logger.Printf("Error deleting video %s: %v", name, err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := os.Remove(filepath.Join(h.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		h.logger.Printf("Error removing video file %s: %v", name, err)
	}

	RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
