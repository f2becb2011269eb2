package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/orange-clock/internal/application"
	"github.com/example/orange-clock/internal/recurrence"
)

type alarmService interface {
	CreateAlarm(ctx context.Context, input application.AlarmInput) (application.Alarm, []application.ConflictWarning, error)
	UpdateAlarm(ctx context.Context, id string, input application.AlarmInput) (application.Alarm, []application.ConflictWarning, error)
	DeleteAlarm(ctx context.Context, id string) error
	DuplicateAlarm(ctx context.Context, id string) (application.Alarm, []application.ConflictWarning, error)
	ListAlarms(ctx context.Context) ([]application.Alarm, []application.InvalidAlarm, error)
	ListUpcoming(ctx context.Context, params application.ListUpcomingParams) ([]application.UpcomingAlarm, []application.InvalidAlarm, error)
}

type AlarmHandler struct {
	service   alarmService
	responder responder
}

func NewAlarmHandler(service alarmService, logger *slog.Logger) *AlarmHandler {
	return &AlarmHandler{service: service, responder: newResponder(logger)}
}

func (h *AlarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, ok := h.resolveRequest(r.Context(), w, req)
	if !ok {
		return
	}

	alarm, warnings, err := h.service.CreateAlarm(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderAlarm(r.Context(), w, alarm, warnings, http.StatusCreated)
}

func (h *AlarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, ok := h.resolveRequest(r.Context(), w, req)
	if !ok {
		return
	}

	alarm, warnings, err := h.service.UpdateAlarm(r.Context(), alarmID, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderAlarm(r.Context(), w, alarm, warnings, http.StatusOK)
}

func (h *AlarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	if err := h.service.DeleteAlarm(r.Context(), alarmID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AlarmHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	alarm, warnings, err := h.service.DuplicateAlarm(r.Context(), alarmID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderAlarm(r.Context(), w, alarm, warnings, http.StatusCreated)
}

func (h *AlarmHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarms, invalid, err := h.service.ListAlarms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := listAlarmsResponse{
		Alarms:  toAlarmDTOs(alarms),
		Invalid: toInvalidAlarmDTOs(invalid),
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *AlarmHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params := application.ListUpcomingParams{}
	if raw := strings.TrimSpace(r.URL.Query().Get("horizonte")); raw != "" {
		horizon, err := time.ParseDuration(raw)
		if err != nil || horizon <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHorizon)
			return
		}
		params.Horizon = horizon
	}

	upcoming, invalid, err := h.service.ListUpcoming(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := listUpcomingResponse{
		Upcoming: toUpcomingAlarmDTOs(upcoming),
		Invalid:  toInvalidAlarmDTOs(invalid),
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

// resolveRequest maps the wire payload to service input, rejecting unknown
// recurrence tags before the service sees them. A false return means the
// response has already been written.
func (h *AlarmHandler) resolveRequest(ctx context.Context, w http.ResponseWriter, req alarmRequest) (application.AlarmInput, bool) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		h.responder.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "Los datos de la alarma no son válidos.",
			Errors:  map[string]string{"tipo": "El tipo de repetición no es válido."},
		})
		return application.AlarmInput{}, false
	}

	return application.AlarmInput{
		Time:       strings.TrimSpace(req.Time),
		AudioRef:   strings.TrimSpace(req.AudioRef),
		Kind:       kind,
		Repetition: strings.TrimSpace(req.Repetition),
		Date:       strings.TrimSpace(req.Date),
	}, true
}

func (h *AlarmHandler) renderAlarm(ctx context.Context, w http.ResponseWriter, alarm application.Alarm, warnings []application.ConflictWarning, status int) {
	if len(warnings) > 0 {
		handlerLogger(ctx, h.responder.logger, "alarms", "conflict_warning", "alarm_id", alarm.ID).
			WarnContext(ctx, "alarm shares a firing time", "conflicts", len(warnings))
	}

	payload := alarmResponse{
		Alarm:    toAlarmDTO(alarm),
		Warnings: toWarningDTOs(warnings),
	}
	h.responder.writeJSON(ctx, w, status, payload)
}

type alarmRequest struct {
	Time       string `json:"hora"`
	AudioRef   string `json:"audio"`
	Kind       string `json:"tipo"`
	Repetition string `json:"repeticion"`
	Date       string `json:"fecha"`
}

const (
	kindLabelWeekly = "semanal"
	kindLabelAnnual = "anual"
	kindLabelOneOff = "fecha"
)

func parseKind(label string) (recurrence.Kind, error) {
	switch strings.TrimSpace(label) {
	case "":
		return recurrence.KindUnspecified, nil
	case kindLabelWeekly:
		return recurrence.KindWeekly, nil
	case kindLabelAnnual:
		return recurrence.KindAnnual, nil
	case kindLabelOneOff:
		return recurrence.KindOneOff, nil
	default:
		return recurrence.KindUnspecified, fmt.Errorf("unknown recurrence tag %q", label)
	}
}

func kindLabel(kind recurrence.Kind) string {
	switch kind {
	case recurrence.KindWeekly:
		return kindLabelWeekly
	case recurrence.KindAnnual:
		return kindLabelAnnual
	case recurrence.KindOneOff:
		return kindLabelOneOff
	default:
		return ""
	}
}

type alarmResponse struct {
	Alarm    alarmDTO             `json:"alarma"`
	Warnings []conflictWarningDTO `json:"advertencias,omitempty"`
}

type listAlarmsResponse struct {
	Alarms  []alarmDTO        `json:"alarmas"`
	Invalid []invalidAlarmDTO `json:"alarmas_invalidas,omitempty"`
}

type listUpcomingResponse struct {
	Upcoming []upcomingAlarmDTO `json:"alarmas_proximas"`
	Invalid  []invalidAlarmDTO  `json:"alarmas_invalidas,omitempty"`
}

type alarmDTO struct {
	ID          string `json:"id"`
	Time        string `json:"hora"`
	AudioRef    string `json:"audio"`
	Kind        string `json:"tipo"`
	Repetition  string `json:"repeticion,omitempty"`
	Date        string `json:"fecha,omitempty"`
	DisplayText string `json:"repeticion_texto"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type upcomingAlarmDTO struct {
	alarmDTO
	NextAt string `json:"proxima"`
}

type invalidAlarmDTO struct {
	ID         string `json:"id"`
	Time       string `json:"hora"`
	AudioRef   string `json:"audio"`
	Repetition string `json:"repeticion,omitempty"`
	Date       string `json:"fecha,omitempty"`
	Reason     string `json:"motivo"`
}

type conflictWarningDTO struct {
	AlarmID string `json:"alarma_id"`
	Time    string `json:"hora"`
}

// weekdayDisplayNames maps weekdays to the names shown in the alarm list.
var weekdayDisplayNames = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

func displayText(alarm application.Alarm) string {
	switch alarm.Rule.Kind {
	case recurrence.KindWeekly:
		names := make([]string, 0, len(alarm.Rule.Weekdays))
		for _, day := range alarm.Rule.Weekdays {
			names = append(names, weekdayDisplayNames[day])
		}
		return strings.Join(names, ", ")
	case recurrence.KindAnnual:
		return "Cada año (" + alarm.Repetition + ")"
	case recurrence.KindOneOff:
		return "Una vez (" + alarm.Date + ")"
	default:
		return ""
	}
}

func toAlarmDTO(alarm application.Alarm) alarmDTO {
	return alarmDTO{
		ID:          alarm.ID,
		Time:        alarm.Time.String(),
		AudioRef:    alarm.AudioRef,
		Kind:        kindLabel(alarm.Rule.Kind),
		Repetition:  alarm.Repetition,
		Date:        alarm.Date,
		DisplayText: displayText(alarm),
		CreatedAt:   alarm.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   alarm.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toAlarmDTOs(alarms []application.Alarm) []alarmDTO {
	if len(alarms) == 0 {
		return nil
	}
	out := make([]alarmDTO, 0, len(alarms))
	for _, alarm := range alarms {
		out = append(out, toAlarmDTO(alarm))
	}
	return out
}

func toUpcomingAlarmDTOs(upcoming []application.UpcomingAlarm) []upcomingAlarmDTO {
	if len(upcoming) == 0 {
		return nil
	}
	out := make([]upcomingAlarmDTO, 0, len(upcoming))
	for _, entry := range upcoming {
		out = append(out, upcomingAlarmDTO{
			alarmDTO: toAlarmDTO(entry.Alarm),
			NextAt:   entry.NextAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func toInvalidAlarmDTOs(invalid []application.InvalidAlarm) []invalidAlarmDTO {
	if len(invalid) == 0 {
		return nil
	}
	out := make([]invalidAlarmDTO, 0, len(invalid))
	for _, entry := range invalid {
		out = append(out, invalidAlarmDTO{
			ID:         entry.ID,
			Time:       entry.Time,
			AudioRef:   entry.AudioRef,
			Repetition: entry.Repetition,
			Date:       entry.Date,
			Reason:     entry.Reason,
		})
	}
	return out
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, conflictWarningDTO{AlarmID: warning.AlarmID, Time: warning.Time})
	}
	return out
}
