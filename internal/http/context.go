package http

import "context"

type contextKey string

const (
	alarmIDContextKey   contextKey = "alarm_id"
	audioNameContextKey contextKey = "audio_name"
)

// ContextWithAlarmID injects the alarm identifier resolved from the request path.
func ContextWithAlarmID(ctx context.Context, alarmID string) context.Context {
	return context.WithValue(ctx, alarmIDContextKey, alarmID)
}

// AlarmIDFromContext extracts an alarm identifier previously associated with the context.
func AlarmIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(alarmIDContextKey).(string)
	return id, ok
}

// ContextWithAudioName injects the audio file name resolved from the request path.
func ContextWithAudioName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, audioNameContextKey, name)
}

// AudioNameFromContext extracts an audio file name previously associated with the context.
func AudioNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(audioNameContextKey).(string)
	return name, ok
}
