package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/orange-clock/internal/application"
	"github.com/example/orange-clock/internal/audio"
	"github.com/example/orange-clock/internal/recurrence"
)

var (
	errBadRequestBody    = errors.New("El formato de la solicitud no es válido.")
	errInvalidAlarmID    = errors.New("El identificador de alarma no es válido.")
	errInvalidAudioName  = errors.New("El nombre del audio no es válido.")
	errInvalidHorizon    = errors.New("El horizonte indicado no es válido.")
	errMissingUploadFile = errors.New("Debe adjuntarse un archivo de audio.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "La alarma indicada no existe."})
	case errors.Is(err, application.ErrUnknownAudioAsset):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "El audio indicado no existe en la biblioteca."})
	case errors.Is(err, recurrence.ErrUnrecognized):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "La repetición de la alarma no se reconoce."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Los datos de la alarma no son válidos.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Se ha producido un error interno."})
	}
}

func (r responder) handleAudioError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, audio.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "El archivo de audio no existe."})
	case errors.Is(err, audio.ErrInvalidName):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "El nombre del archivo no es válido."})
	case errors.Is(err, audio.ErrUnsupportedFormat):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "Solo se admiten archivos .mp3 y .wav."})
	case errors.Is(err, audio.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Ya existe un audio con ese nombre."})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Se ha producido un error interno."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "El contenido de la solicitud no es correcto."
	case http.StatusNotFound:
		return "El recurso indicado no existe."
	case http.StatusConflict:
		return "La solicitud entra en conflicto con el estado actual del recurso."
	case http.StatusUnprocessableEntity:
		return "Los datos enviados no son válidos."
	default:
		return "Se ha producido un error interno."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "time must be HH:MM (24-hour)":
		return "La hora debe tener el formato HH:MM (24 horas)."
	case "weekly days are invalid":
		return "Los días de la semana no son válidos."
	case "annual date is invalid":
		return "La fecha anual no es válida."
	case "date must be YYYY-MM-DD":
		return "La fecha debe tener el formato AAAA-MM-DD."
	case "only one recurrence mode may be set":
		return "Solo puede indicarse un modo de repetición."
	case "recurrence is not recognized":
		return "La repetición no se reconoce."
	case "audio reference is required":
		return "Debe indicarse un audio."
	default:
		return message
	}
}

type errorResponse struct {
	Message string            `json:"error"`
	Errors  map[string]string `json:"detalles,omitempty"`
}
