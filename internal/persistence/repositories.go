package persistence

import "context"

// AlarmRepository exposes CRUD operations for alarm records. CreateAlarm
// assigns the record identity and returns the stored row; ListAlarms returns
// rows in insertion order.
type AlarmRepository interface {
	CreateAlarm(ctx context.Context, alarm Alarm) (Alarm, error)
	GetAlarm(ctx context.Context, id string) (Alarm, error)
	UpdateAlarm(ctx context.Context, alarm Alarm) (Alarm, error)
	ListAlarms(ctx context.Context) ([]Alarm, error)
	DeleteAlarm(ctx context.Context, id string) error
}
