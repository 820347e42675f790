package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuarterOf(t *testing.T) {
	t.Run("march belongs to the first quarter", func(t *testing.T) {
		q := QuarterOf(time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC))
		assert.Equal(t, Quarter{Year: 2026, Index: 0}, q)
	})

	t.Run("april belongs to the second quarter", func(t *testing.T) {
		q := QuarterOf(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, Quarter{Year: 2026, Index: 1}, q)
	})

	t.Run("december belongs to the fourth quarter", func(t *testing.T) {
		q := QuarterOf(time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, Quarter{Year: 2025, Index: 3}, q)
	})
}

func TestQuarterWindow(t *testing.T) {
	q := Quarter{Year: 2026, Index: 1}

	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), q.Start())
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), q.End())

	assert.True(t, q.Contains(q.Start()))
	assert.True(t, q.Contains(time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC)))
	assert.False(t, q.Contains(q.End()))
	assert.False(t, q.Contains(time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)))
}

func TestIsFirstDay(t *testing.T) {
	assert.True(t, IsFirstDay(time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, IsFirstDay(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsFirstDay(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsFirstDay(time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)))
}
