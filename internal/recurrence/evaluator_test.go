package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-03 is a Monday.
func mondayAt(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, time.March, 3, hour, minute, 0, 0, time.UTC)
}

func TestEvaluator_NextOccurrenceWeekly(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(time.UTC)
	at := TimeOfDay{Hour: 8}

	t.Run("before today's firing time fires today", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Weekly(time.Monday), at, mondayAt(t, 7, 0))
		require.True(t, ok)
		assert.Equal(t, mondayAt(t, 8, 0), next)
	})

	t.Run("after today's firing time advances a full week", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Weekly(time.Monday), at, mondayAt(t, 9, 0))
		require.True(t, ok)
		assert.Equal(t, mondayAt(t, 8, 0).AddDate(0, 0, 7), next)
	})

	t.Run("exactly at the firing instant keeps today", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Weekly(time.Monday), at, mondayAt(t, 8, 0))
		require.True(t, ok)
		assert.Equal(t, mondayAt(t, 8, 0), next)
	})

	t.Run("minimum across selected weekdays wins", func(t *testing.T) {
		t.Parallel()

		// From Monday 09:00 the Monday slot moved to next week, so
		// Thursday is the nearest selection.
		next, ok := eval.NextOccurrence(Weekly(time.Monday, time.Thursday), at, mondayAt(t, 9, 0))
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.March, 6, 8, 0, 0, 0, time.UTC), next)
	})

	t.Run("crosses into the next week", func(t *testing.T) {
		t.Parallel()

		// Sunday is six days after the Monday reference.
		next, ok := eval.NextOccurrence(Weekly(time.Sunday), at, mondayAt(t, 12, 0))
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.March, 9, 8, 0, 0, 0, time.UTC), next)
	})
}

func TestEvaluator_NextOccurrenceAnnual(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(time.UTC)
	at := TimeOfDay{Hour: 9}

	t.Run("later this year", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Annual(time.March, 15), at, mondayAt(t, 0, 0))
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("date already passed rolls to next year", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Annual(time.January, 10), at, mondayAt(t, 0, 0))
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("same day with time passed rolls to next year", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
		next, ok := eval.NextOccurrence(Annual(time.March, 15), at, now)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("instant equal to now rolls to next year", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
		next, ok := eval.NextOccurrence(Annual(time.March, 15), at, now)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("leap day in a non-leap year resolves to the next leap year", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Annual(time.February, 29), at, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, time.Date(2028, time.February, 29, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("leap day in a leap year before February fires that year", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Annual(time.February, 29), at, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("leap day just passed skips to the following leap year", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.NextOccurrence(Annual(time.February, 29), at, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, time.Date(2028, time.February, 29, 9, 0, 0, 0, time.UTC), next)
	})
}

func TestEvaluator_NextOccurrenceOneOff(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(time.UTC)
	at := TimeOfDay{Hour: 6, Minute: 30}

	t.Run("future date fires once", func(t *testing.T) {
		t.Parallel()

		rule := OneOff(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
		next, ok := eval.NextOccurrence(rule, at, mondayAt(t, 0, 0))
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.March, 10, 6, 30, 0, 0, time.UTC), next)
	})

	t.Run("past instant is expired", func(t *testing.T) {
		t.Parallel()

		rule := OneOff(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
		_, ok := eval.NextOccurrence(rule, at, mondayAt(t, 0, 0))
		assert.False(t, ok)
	})

	t.Run("instant equal to now is not expired", func(t *testing.T) {
		t.Parallel()

		rule := OneOff(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))
		now := mondayAt(t, 6, 30)
		next, ok := eval.NextOccurrence(rule, at, now)
		require.True(t, ok)
		assert.Equal(t, now, next)
	})

	t.Run("same day with time still ahead fires today", func(t *testing.T) {
		t.Parallel()

		rule := OneOff(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))
		next, ok := eval.NextOccurrence(rule, at, mondayAt(t, 5, 0))
		require.True(t, ok)
		assert.Equal(t, mondayAt(t, 6, 30), next)
	})
}

func TestEvaluator_NextOccurrenceInvalidRule(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(time.UTC)

	for name, rule := range map[string]Rule{
		"kind not set":    {},
		"empty weekdays":  {Kind: KindWeekly},
		"annual bad day":  Annual(time.February, 31),
		"one-off no date": {Kind: KindOneOff},
	} {
		rule := rule
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, ok := eval.NextOccurrence(rule, TimeOfDay{Hour: 8}, mondayAt(t, 0, 0))
			assert.False(t, ok)
		})
	}
}

func TestEvaluator_WithinHorizon(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(time.UTC)
	now := mondayAt(t, 7, 0)
	horizon := 24 * time.Hour

	t.Run("occurrence inside the window", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.WithinHorizon(Weekly(time.Monday), TimeOfDay{Hour: 8}, now, horizon)
		require.True(t, ok)
		assert.Equal(t, mondayAt(t, 8, 0), next)
	})

	t.Run("occurrence exactly at now is included", func(t *testing.T) {
		t.Parallel()

		next, ok := eval.WithinHorizon(Weekly(time.Monday), TimeOfDay{Hour: 7}, now, horizon)
		require.True(t, ok)
		assert.Equal(t, now, next)
	})

	t.Run("occurrence exactly at the horizon edge is excluded", func(t *testing.T) {
		t.Parallel()

		// Tuesday 07:00 is now+24h, the open end of the window.
		_, ok := eval.WithinHorizon(Weekly(time.Tuesday), TimeOfDay{Hour: 7}, now, horizon)
		assert.False(t, ok)
	})

	t.Run("occurrence beyond the window", func(t *testing.T) {
		t.Parallel()

		_, ok := eval.WithinHorizon(Weekly(time.Friday), TimeOfDay{Hour: 8}, now, horizon)
		assert.False(t, ok)
	})

	t.Run("expired one-off never enters any window", func(t *testing.T) {
		t.Parallel()

		rule := OneOff(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
		_, ok := eval.WithinHorizon(rule, TimeOfDay{Hour: 8}, now, 365*24*time.Hour)
		assert.False(t, ok)
	})
}
