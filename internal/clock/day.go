package clock

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayFormat is the persisted representation of a Day.
const DayFormat = "2006-01-02"

// Day is a calendar date with no time or zone attached.
type Day struct {
	y int
	m time.Month
	d int
}

// NewDay returns a normalized Day, so NewDay(2025, 1, 32) is February 1st.
func NewDay(year int, month time.Month, day int) Day {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day{t.Year(), t.Month(), t.Day()}
}

// DayOf returns the calendar day of t as observed in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return NewDay(t.In(loc).Date())
}

func (d Day) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

func (d Day) AddDays(n int) Day { return NewDay(d.y, d.m, d.d+n) }

func (d Day) Before(x Day) bool { return d.utc().Before(x.utc()) }

func (d Day) After(x Day) bool { return d.utc().After(x.utc()) }

// Start is local midnight of d in loc.
func (d Day) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

func (d Day) String() string { return d.utc().Format(DayFormat) }

func (d Day) utc() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// ParseDay reads a YYYY-MM-DD date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return NewDay(t.Date()), nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = Day{}
var _ json.Unmarshaler = (*Day)(nil)
