package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateAddDaysCrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, Date("2024-03-01"), Date("2024-02-28").AddDays(2))
	assert.Equal(t, Date("2025-01-13"), Date("2024-12-30").AddDays(14))
	assert.Equal(t, Date("2024-12-29"), Date("2024-12-30").AddDays(-1))
}

func TestDateComparisons(t *testing.T) {
	a := Date("2024-05-09")
	b := Date("2024-05-10")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.Equal(t, 14, a.DaysUntil(a.AddDays(14)))
	assert.Equal(t, -3, a.DaysUntil(a.AddDays(-3)))
}

func TestFixedClockToday(t *testing.T) {
	c := Fixed("2024-05-10")
	assert.Equal(t, Date("2024-05-10"), Today(c))

	late := FixedClock{At: time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC)}
	assert.Equal(t, Date("2024-05-10"), Today(late))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-02-29"), d)

	_, err = ParseDate("2023-02-29")
	require.Error(t, err)
	_, err = ParseDate("tomorrow")
	require.Error(t, err)
}
