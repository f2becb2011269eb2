package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orange-clock/internal/application"
	"github.com/example/orange-clock/internal/audio"
	"github.com/example/orange-clock/internal/persistence"
	"github.com/example/orange-clock/internal/recurrence"
	"github.com/example/orange-clock/internal/testfixtures"
)

type handlerFixture struct {
	handler http.Handler
	store   *testfixtures.AlarmStore
	dir     string
}

func newHandlerFixture(t *testing.T) handlerFixture {
	t.Helper()

	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	store := testfixtures.NewAlarmStore(testfixtures.NewIDGenerator(""), clock)

	dir := t.TempDir()
	library, err := audio.NewLibrary(dir)
	require.NoError(t, err)
	writeClip(t, dir, "campana.mp3")

	service := application.NewAlarmService(
		store,
		library,
		recurrence.NewCodec(time.UTC),
		recurrence.NewEvaluator(time.UTC),
		clock.NowFunc(),
		24*time.Hour,
		nil,
	)

	handler := NewRouter(RouterConfig{
		Alarms: NewAlarmHandler(service, nil),
		Audios: NewAudioHandler(library, nil),
	})
	return handlerFixture{handler: handler, store: store, dir: dir}
}

func writeClip(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF-stub"), 0o644))
}

func (fx handlerFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	fx.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func TestAlarmHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns the stored alarm", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon-wed"}`)

		require.Equal(t, http.StatusCreated, recorder.Code)
		response := decodeBody[alarmResponse](t, recorder)
		assert.NotEmpty(t, response.Alarm.ID)
		assert.Equal(t, "07:30", response.Alarm.Time)
		assert.Equal(t, "campana.mp3", response.Alarm.AudioRef)
		assert.Equal(t, "semanal", response.Alarm.Kind)
		assert.Equal(t, "mon-wed", response.Alarm.Repetition)
		assert.Equal(t, "Lunes, Miércoles", response.Alarm.DisplayText)
		assert.Empty(t, response.Warnings)
	})

	t.Run("create reports alarms sharing the firing time", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		first := decodeBody[alarmResponse](t, fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`))
		recorder := fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"fecha","fecha":"2025-12-24"}`)

		require.Equal(t, http.StatusCreated, recorder.Code)
		response := decodeBody[alarmResponse](t, recorder)
		require.Len(t, response.Warnings, 1)
		assert.Equal(t, first.Alarm.ID, response.Warnings[0].AlarmID)
		assert.Equal(t, "07:30", response.Warnings[0].Time)
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPost, "/alarmas", `{"hora":`)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		response := decodeBody[errorResponse](t, recorder)
		assert.Equal(t, "El formato de la solicitud no es válido.", response.Message)
	})

	t.Run("unknown recurrence tag yields 422", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"mensual","repeticion":"05"}`)

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		response := decodeBody[errorResponse](t, recorder)
		assert.Equal(t, "El tipo de repetición no es válido.", response.Errors["tipo"])
	})

	t.Run("validation details come back in Spanish", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"7h30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`)

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		response := decodeBody[errorResponse](t, recorder)
		assert.Equal(t, "Los datos de la alarma no son válidos.", response.Message)
		assert.Equal(t, "La hora debe tener el formato HH:MM (24 horas).", response.Errors["hora"])
	})

	t.Run("unknown audio reference yields 422", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"inexistente.mp3","tipo":"semanal","repeticion":"mon"}`)

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		response := decodeBody[errorResponse](t, recorder)
		assert.Equal(t, "El audio indicado no existe en la biblioteca.", response.Message)
	})

	t.Run("update replaces the alarm in place", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		created := decodeBody[alarmResponse](t, fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`))

		recorder := fx.do(t, http.MethodPut, "/alarmas/"+created.Alarm.ID,
			`{"hora":"09:15","audio":"campana.mp3","tipo":"fecha","fecha":"2025-12-24"}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		response := decodeBody[alarmResponse](t, recorder)
		assert.Equal(t, created.Alarm.ID, response.Alarm.ID)
		assert.Equal(t, "09:15", response.Alarm.Time)
		assert.Equal(t, "fecha", response.Alarm.Kind)
		assert.Empty(t, response.Alarm.Repetition)
		assert.Equal(t, "2025-12-24", response.Alarm.Date)
	})

	t.Run("missing alarms map to 404", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPut, "/alarmas/desconocida",
			`{"hora":"09:15","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`)
		require.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = fx.do(t, http.MethodDelete, "/alarmas/desconocida", "")
		require.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = fx.do(t, http.MethodPost, "/alarmas/desconocida/duplicar", "")
		require.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("delete removes the alarm", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		created := decodeBody[alarmResponse](t, fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`))

		recorder := fx.do(t, http.MethodDelete, "/alarmas/"+created.Alarm.ID, "")
		require.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, 0, fx.store.Len())
	})

	t.Run("duplicate copies the alarm under a new id", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		created := decodeBody[alarmResponse](t, fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon-fri"}`))

		recorder := fx.do(t, http.MethodPost, "/alarmas/"+created.Alarm.ID+"/duplicar", "")

		require.Equal(t, http.StatusCreated, recorder.Code)
		response := decodeBody[alarmResponse](t, recorder)
		assert.NotEqual(t, created.Alarm.ID, response.Alarm.ID)
		assert.Equal(t, created.Alarm.Time, response.Alarm.Time)
		assert.Equal(t, created.Alarm.Repetition, response.Alarm.Repetition)
		assert.Equal(t, 2, fx.store.Len())
	})

	t.Run("list surfaces undecodable records separately", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"07:30","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`)
		fx.store.Seed(persistence.Alarm{ID: "corrupt-1", Time: "05:00", AudioRef: "campana.mp3", Repetition: "cada-lunes"})

		recorder := fx.do(t, http.MethodGet, "/alarmas", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		response := decodeBody[listAlarmsResponse](t, recorder)
		require.Len(t, response.Alarms, 1)
		require.Len(t, response.Invalid, 1)
		assert.Equal(t, "corrupt-1", response.Invalid[0].ID)
		assert.NotEmpty(t, response.Invalid[0].Reason)
	})

	t.Run("upcoming listing honors the horizonte parameter", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		// Reference clock is Monday 2025-03-03 07:00 UTC.
		fx.do(t, http.MethodPost, "/alarmas",
			`{"hora":"08:00","audio":"campana.mp3","tipo":"semanal","repeticion":"mon"}`)

		recorder := fx.do(t, http.MethodGet, "/alarmas/proximas", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		response := decodeBody[listUpcomingResponse](t, recorder)
		require.Len(t, response.Upcoming, 1)
		assert.Equal(t, "2025-03-03T08:00:00Z", response.Upcoming[0].NextAt)

		recorder = fx.do(t, http.MethodGet, "/alarmas/proximas?horizonte=30m", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		response = decodeBody[listUpcomingResponse](t, recorder)
		assert.Empty(t, response.Upcoming)
	})

	t.Run("invalid horizonte yields 400", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodGet, "/alarmas/proximas?horizonte=pronto", "")
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unsupported methods yield 405 with Allow header", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPatch, "/alarmas", "")
		require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
		assert.Equal(t, "GET, POST", recorder.Header().Get("Allow"))
	})
}

func TestAudioHandlers(t *testing.T) {
	t.Parallel()

	t.Run("upload stores the clip and lists it", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.doUpload(t, "gong.wav")

		require.Equal(t, http.StatusCreated, recorder.Code)
		response := decodeBody[audioResponse](t, recorder)
		assert.Equal(t, "gong", response.Audio.Name)
		assert.Equal(t, "gong.wav", response.Audio.Ref)

		listRecorder := fx.do(t, http.MethodGet, "/audios", "")
		require.Equal(t, http.StatusOK, listRecorder.Code)
		listResponse := decodeBody[listAudiosResponse](t, listRecorder)
		refs := make([]string, 0, len(listResponse.Audios))
		for _, asset := range listResponse.Audios {
			refs = append(refs, asset.Ref)
		}
		assert.Equal(t, []string{"campana.mp3", "gong.wav"}, refs)
	})

	t.Run("unsupported formats are rejected", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.doUpload(t, "documento.pdf")

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		response := decodeBody[errorResponse](t, recorder)
		assert.Equal(t, "Solo se admiten archivos .mp3 y .wav.", response.Message)
	})

	t.Run("rename keeps the extension", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPut, "/audios/campana.mp3", `{"nuevo_nombre":"timbre"}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		response := decodeBody[audioResponse](t, recorder)
		assert.Equal(t, "timbre.mp3", response.Audio.Ref)
	})

	t.Run("missing files map to 404", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodPut, "/audios/inexistente.mp3", `{"nuevo_nombre":"timbre"}`)
		require.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = fx.do(t, http.MethodDelete, "/audios/inexistente.mp3", "")
		require.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("delete removes the clip", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodDelete, "/audios/campana.mp3", "")
		require.Equal(t, http.StatusNoContent, recorder.Code)

		_, err := os.Stat(filepath.Join(fx.dir, "campana.mp3"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("serves the raw file for playback", func(t *testing.T) {
		t.Parallel()
		fx := newHandlerFixture(t)

		recorder := fx.do(t, http.MethodGet, "/audios/archivos/campana.mp3", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "RIFF-stub", recorder.Body.String())
	})
}

func (fx handlerFixture) doUpload(t *testing.T, filename string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("archivo", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("clip-data"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/audios", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	fx.handler.ServeHTTP(recorder, req)
	return recorder
}
