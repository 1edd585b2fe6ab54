package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mp4Header is a minimal ftyp box that http.DetectContentType sniffs as
// video/mp4.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2',
	0x00, 0x00, 0x00, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '2',
}

func buildUpload(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestVideoLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)
	token, csrfCookie := s.csrfPair(t)

	// Upload.
	body, contentType := buildUpload(t, "video", "mon clip!.mp4", mp4Header)
	w := s.do(t, testRequest{
		method:  http.MethodPost,
		path:    "/admin/videos",
		raw:     body,
		cookies: []*http.Cookie{cookie, csrfCookie},
		headers: map[string]string{"Content-Type": contentType, "X-CSRF-Token": token},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	var uploaded videoInfo
	decodeJSONBody(t, w, &uploaded)
	if strings.ContainsAny(uploaded.Name, "! ") {
		t.Errorf("stored name %q contains unsafe characters", uploaded.Name)
	}
	if !strings.HasSuffix(uploaded.Name, ".mp4") {
		t.Errorf("stored name %q lost its extension", uploaded.Name)
	}

	savedPath := filepath.Join(s.videos.uploadDir, uploaded.Name)
	if _, err := os.Stat(savedPath); err != nil {
		t.Errorf("uploaded file not on disk: %v", err)
	}

	// List.
	w = s.do(t, testRequest{method: http.MethodGet, path: "/admin/videos", cookies: []*http.Cookie{cookie}})
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listing struct {
		Videos []videoInfo `json:"videos"`
	}
	decodeJSONBody(t, w, &listing)
	if len(listing.Videos) != 1 || listing.Videos[0].Name != uploaded.Name {
		t.Fatalf("listing = %+v, want the uploaded video", listing.Videos)
	}
	if listing.Videos[0].URL != "/static/videos/"+uploaded.Name {
		t.Errorf("video URL = %q", listing.Videos[0].URL)
	}

	// Delete.
	w = s.do(t, testRequest{
		method:  http.MethodDelete,
		path:    "/admin/videos/" + uploaded.Name,
		cookies: []*http.Cookie{cookie, csrfCookie},
		headers: map[string]string{"X-CSRF-Token": token},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(savedPath); !os.IsNotExist(err) {
		t.Error("deleted video still on disk")
	}

	// Deleting again is a 404.
	w = s.do(t, testRequest{
		method:  http.MethodDelete,
		path:    "/admin/videos/" + uploaded.Name,
		cookies: []*http.Cookie{cookie, csrfCookie},
		headers: map[string]string{"X-CSRF-Token": token},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestVideoUploadRejectsNonVideo(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)
	token, csrfCookie := s.csrfPair(t)

	body, contentType := buildUpload(t, "video", "notes.txt", []byte("plain text, not a video"))
	w := s.do(t, testRequest{
		method:  http.MethodPost,
		path:    "/admin/videos",
		raw:     body,
		cookies: []*http.Cookie{cookie, csrfCookie},
		headers: map[string]string{"Content-Type": contentType, "X-CSRF-Token": token},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("text upload status = %d, want 400", w.Code)
	}
}

func TestVideoEndpointsRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, testRequest{method: http.MethodGet, path: "/admin/videos"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("list without session status = %d, want 401", w.Code)
	}
	w = s.do(t, testRequest{method: http.MethodDelete, path: "/admin/videos/some.mp4"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("delete without session status = %d, want 401", w.Code)
	}
}

func TestSanitizeName(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"clip.mp4", "clip.mp4"},
		{"mon clip!.mp4", "mon_clip_.mp4"},
		{"../../etc/passwd", "passwd"},
		{"vidéo finale.webm", "vid_o_finale.webm"},
	}
	for _, tc := range testCases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
