package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akbgmi35-maker/Vhist/internal/config"
	"github.com/akbgmi35-maker/Vhist/internal/entities"
)

type fakeUseCase struct {
	uploaded   entities.Video
	uploadErr  error
	uploadSeen int

	playback    Playback
	playbackErr error
}

func (f *fakeUseCase) UploadVideo(context.Context, multipart.File, *multipart.FileHeader, UploadVideoParams) (entities.Video, error) {
	f.uploadSeen++
	return f.uploaded, f.uploadErr
}

func (f *fakeUseCase) ResolvePlayback(context.Context, string) (Playback, error) {
	return f.playback, f.playbackErr
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Upload.MaxRequestBodyMB = 64
	cfg.Upload.MaxMultipartMemoryMB = 8
	return cfg
}

// Minimal ISO BMFF header so content sniffing sees video/mp4.
func mp4Bytes() []byte {
	buf := []byte{0x00, 0x00, 0x00, 0x20}
	buf = append(buf, []byte("ftypisom")...)
	buf = append(buf, []byte("\x00\x00\x02\x00isomiso2avc1mp41")...)
	return append(buf, make([]byte, 64)...)
}

func multipartBody(t *testing.T, fileField, filename, userID string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
	}
	if userID != "" {
		require.NoError(t, mw.WriteField("userId", userID))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadVideoReturnsSlug(t *testing.T) {
	uc := &fakeUseCase{uploaded: entities.Video{Slug: "abc123de"}}
	h := New(uc, testConfig())

	body, contentType := multipartBody(t, "video", "sample.mp4", "u1", mp4Bytes())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadVideo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadVideoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "abc123de", resp.Slug)
	assert.Equal(t, 1, uc.uploadSeen)
}

func TestUploadVideoWithDefaultedConfig(t *testing.T) {
	// A config.json with no upload block must still accept uploads:
	// the defaulted limits may not collapse MaxBytesReader to zero.
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o644))
	cfg := config.NewConfig()
	require.NoError(t, cfg.Read(file))

	uc := &fakeUseCase{uploaded: entities.Video{Slug: "abc123de"}}
	h := New(uc, cfg)

	body, contentType := multipartBody(t, "video", "sample.mp4", "u1", mp4Bytes())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadVideo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, 1, uc.uploadSeen)
}

func TestUploadVideoMissingFile(t *testing.T) {
	uc := &fakeUseCase{}
	h := New(uc, testConfig())

	body, contentType := multipartBody(t, "", "", "u1", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadVideo(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, uc.uploadSeen, "no side effect on invalid input")
}

func TestUploadVideoMissingOwner(t *testing.T) {
	uc := &fakeUseCase{}
	h := New(uc, testConfig())

	body, contentType := multipartBody(t, "video", "sample.mp4", "", mp4Bytes())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadVideo(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, uc.uploadSeen)
}

func TestUploadVideoRejectsNonVideo(t *testing.T) {
	uc := &fakeUseCase{}
	h := New(uc, testConfig())

	body, contentType := multipartBody(t, "video", "notes.txt", "u1", []byte("plain text, no video here"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadVideo(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, uc.uploadSeen)
}

func TestUploadVideoStoreFailure(t *testing.T) {
	uc := &fakeUseCase{uploadErr: errors.New("insert failed")}
	h := New(uc, testConfig())

	body, contentType := multipartBody(t, "video", "sample.mp4", "u1", mp4Bytes())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadVideo(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func playbackRequest(slug string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/playback/"+slug, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", slug)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPlaybackReady(t *testing.T) {
	uc := &fakeUseCase{playback: Playback{
		Title:       "sample",
		ManifestURL: "https://vhist.example/videos/abc123de/master.m3u8",
	}}
	h := New(uc, testConfig())

	rec := httptest.NewRecorder()
	h.Playback(rec, playbackRequest("abc123de"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "https://vhist.example/videos/abc123de/master.m3u8")
	assert.Contains(t, rec.Body.String(), "hls.js")
}

func TestPlaybackNotAvailable(t *testing.T) {
	uc := &fakeUseCase{playbackErr: errors.New("video not available")}
	h := New(uc, testConfig())

	rec := httptest.NewRecorder()
	h.Playback(rec, playbackRequest("nosuchsl"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Video not available")
}
