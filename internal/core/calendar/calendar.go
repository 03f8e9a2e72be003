// Package calendar implements business-day arithmetic over a fixed
// holiday set.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
)

// maxWalkDays bounds AddBusinessDays so a holiday file that blocks out
// every weekday cannot loop forever.
const maxWalkDays = 20 * 366

var ErrNegativeDays = errors.New("business days must not be negative")

// Calendar is immutable after construction and safe for concurrent use.
type Calendar struct {
	holidays map[string]struct{}
}

// New builds a Calendar over the given holidays. Zero dates are ignored.
func New(holidays []dates.PointInTime) *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		if h.IsZero() {
			continue
		}
		c.holidays[h.String()] = struct{}{}
	}
	return c
}

// DefaultHolidays is the holiday set used when no holiday file is configured.
func DefaultHolidays() []dates.PointInTime {
	return []dates.PointInTime{
		dates.DateOf(2025, time.January, 1),
		dates.DateOf(2025, time.May, 1),
		dates.DateOf(2025, time.July, 20),
		dates.DateOf(2025, time.August, 7),
		dates.DateOf(2025, time.December, 8),
		dates.DateOf(2025, time.December, 25),
	}
}

// Default returns a Calendar over DefaultHolidays.
func Default() *Calendar {
	return New(DefaultHolidays())
}

// Holidays returns the configured holidays in ascending order.
func (c *Calendar) Holidays() []dates.PointInTime {
	out := make([]dates.PointInTime, 0, len(c.holidays))
	for k := range c.holidays {
		p, err := dates.ParseISO(k)
		if err == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (c *Calendar) IsHoliday(d dates.PointInTime) bool {
	_, ok := c.holidays[d.String()]
	return ok
}

// IsBusinessDay is false on Saturdays, Sundays and holidays.
func (c *Calendar) IsBusinessDay(d dates.PointInTime) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(d)
}

// AddBusinessDays walks forward from start (exclusive) one calendar day at
// a time and returns the nth business day found. n == 0 returns start.
func (c *Calendar) AddBusinessDays(start dates.PointInTime, n int) (dates.PointInTime, error) {
	if start.IsZero() {
		return dates.PointInTime{}, errors.New("start date is required")
	}
	if n < 0 {
		return dates.PointInTime{}, fmt.Errorf("%w: %d", ErrNegativeDays, n)
	}
	cur := start
	for counted, walked := 0, 0; counted < n; {
		cur = cur.AddDays(1)
		walked++
		if walked > maxWalkDays {
			return dates.PointInTime{}, fmt.Errorf("no %d business days within %d days of %s", n, maxWalkDays, start)
		}
		if c.IsBusinessDay(cur) {
			counted++
		}
	}
	return cur, nil
}
