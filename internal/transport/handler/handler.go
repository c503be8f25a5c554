package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/akbgmi35-maker/Vhist/internal/config"
	"github.com/akbgmi35-maker/Vhist/internal/entities"
)

type UseCase interface {
	UploadVideo(ctx context.Context, file multipart.File, fh *multipart.FileHeader, params UploadVideoParams) (entities.Video, error)
	ResolvePlayback(ctx context.Context, slug string) (Playback, error)
}

type Handler struct {
	useCase   UseCase
	cfg       *config.Config
	validator *validator.Validate
}

func New(useCase UseCase, cfg *config.Config) *Handler {
	return &Handler{
		useCase:   useCase,
		cfg:       cfg,
		validator: validator.New(),
	}
}

// UploadVideo is the intake endpoint. Validation happens before any
// side effect; once the use-case returns, the job record and its
// launch intent are durable and the response carries the slug the
// caller polls against. The response never waits on the transcode.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxRequestBodyMB<<20)

	maxMultipartMem := h.cfg.Upload.MaxMultipartMemoryMB
	if err := r.ParseMultipartForm(maxMultipartMem << 20); err != nil {
		writeMultipartError(w, err)
		return
	}

	file, fh, err := r.FormFile("video")
	if err != nil {
		if strings.Contains(err.Error(), "no such file") {
			writeJSONError(w, `missing video file: form field key should be "video"`, http.StatusBadRequest)
		} else {
			writeJSONError(w, "an error occurred while uploading the file: "+err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	params := UploadVideoParams{
		UserID: r.Form.Get("userId"),
	}

	if err := h.validator.Struct(params); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(validationErrorsToMap(err))
		return
	}

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = file.Seek(0, 0)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fileType := mime.String()
	if err := validateMimeType(fileType); err != nil {
		writeJSONError(w, fmt.Sprintf("unsupported file type: %s", fileType), http.StatusBadRequest)
		return
	}

	v, err := h.useCase.UploadVideo(r.Context(), file, fh, params)
	if err != nil {
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(UploadVideoResponse{Success: true, Slug: v.Slug}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Playback serves the embed page for a ready video. Unknown,
// processing and errored slugs all get the same 404 body.
func (h *Handler) Playback(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")

	playback, err := h.useCase.ResolvePlayback(r.Context(), s)
	if err != nil {
		http.Error(w, "Video not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := embedPage.Execute(w, playback); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
