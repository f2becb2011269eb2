// Package http provides HTTP handlers and middleware for the alarm clock API.
//
// The router exposes the following endpoints:
//   - GET /alarmas, POST /alarmas, PUT /alarmas/{id}, DELETE /alarmas/{id}:
//     alarm registry endpoints exchanging the `alarmDTO` payload defined in
//     alarm_handler.go. Mutating responses include warnings for alarms that
//     share a firing time, and listings flag stored records whose recurrence
//     can no longer be decoded.
//   - POST /alarmas/{id}/duplicar: copies an existing alarm under a fresh
//     identifier, returning the copy with status 201.
//   - GET /alarmas/proximas: lists alarms firing within the evaluation window,
//     ordered by their next firing instant. The optional `horizonte` query
//     parameter overrides the window as a Go duration, e.g. `horizonte=48h`.
//   - GET /audios, POST /audios, PUT /audios/{nombre}, DELETE /audios/{nombre}:
//     audio library endpoints. Uploads are multipart forms with the clip in the
//     `archivo` field; renames send `{"nuevo_nombre": "..."}`.
//   - GET /audios/archivos/{nombre}: serves the raw audio file for playback.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth. User-facing error messages are
// Spanish; field-level validation details come back under `detalles`.
package http
