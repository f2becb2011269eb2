package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/orange-clock/internal/audio"
)

// maxUploadBytes caps the multipart form size accepted for audio uploads.
const maxUploadBytes = 20 << 20

type audioLibrary interface {
	List(ctx context.Context) ([]audio.Asset, error)
	Save(ctx context.Context, filename string, r io.Reader) (audio.Asset, error)
	Rename(ctx context.Context, ref, newName string) (audio.Asset, error)
	Delete(ctx context.Context, ref string) error
	Path(ref string) (string, error)
}

type AudioHandler struct {
	library   audioLibrary
	responder responder
}

func NewAudioHandler(library audioLibrary, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{library: library, responder: newResponder(logger)}
}

func (h *AudioHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.library == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assets, err := h.library.List(r.Context())
	if err != nil {
		h.responder.handleAudioError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAudiosResponse{Audios: assets})
}

func (h *AudioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.library == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	file, header, err := r.FormFile("archivo")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingUploadFile)
		return
	}
	defer file.Close()

	asset, err := h.library.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.responder.handleAudioError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "audios", "upload").
		InfoContext(r.Context(), "audio uploaded", "ref", asset.Ref)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, audioResponse{Audio: asset})
}

func (h *AudioHandler) Rename(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.library == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := AudioNameFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAudioName)
		return
	}

	var req renameAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	asset, err := h.library.Rename(r.Context(), name, strings.TrimSpace(req.NewName))
	if err != nil {
		h.responder.handleAudioError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, audioResponse{Audio: asset})
}

func (h *AudioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.library == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := AudioNameFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAudioName)
		return
	}

	if err := h.library.Delete(r.Context(), name); err != nil {
		h.responder.handleAudioError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AudioHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.library == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := AudioNameFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAudioName)
		return
	}

	path, err := h.library.Path(name)
	if err != nil {
		h.responder.handleAudioError(r.Context(), w, err)
		return
	}

	http.ServeFile(w, r, path)
}

type renameAudioRequest struct {
	NewName string `json:"nuevo_nombre"`
}

type audioResponse struct {
	Audio audio.Asset `json:"audio"`
}

type listAudiosResponse struct {
	Audios []audio.Asset `json:"audios"`
}
