package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointInTimeConstructors(t *testing.T) {
	a := DateOf(2025, time.February, 3)
	b := FromTime(time.Date(2025, time.February, 3, 23, 59, 0, 0, time.FixedZone("COT", -5*3600)))
	c, err := ParseISO("2025-02-03")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.Equal(t, SourceCalendar, a.Source())
	assert.Equal(t, SourceTimestamp, b.Source())
	assert.Equal(t, SourceText, c.Source())
	assert.Equal(t, "2025-02-03", a.String())
	assert.Equal(t, time.Monday, a.Weekday())

	_, err = ParseISO("03/02/2025")
	assert.Error(t, err)
}

func TestPointInTimeZeroAndArithmetic(t *testing.T) {
	var zero PointInTime
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", zero.String())
	assert.True(t, FromTime(time.Time{}).IsZero())

	d := DateOf(2024, time.December, 31)
	assert.Equal(t, "2025-01-01", d.AddDays(1).String())
	assert.Equal(t, "2019-12-31", d.AddDate(-5, 0, 0).String())
	assert.Equal(t, -1, d.Compare(d.AddDays(1)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(2024, time.February, 29))
	assert.False(t, Valid(2025, time.February, 29))
	assert.False(t, Valid(2025, time.Month(13), 1))
	assert.False(t, Valid(2025, time.April, 31))
	assert.False(t, Valid(2025, time.January, 0))
}
