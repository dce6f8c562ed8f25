package booking

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var ErrInvalidWindow = errors.New("end time must be after start time")

// TimeWindow is a calendar date plus a start and end time-of-day, always
// held in UTC. Date and times are kept as separate strings because the
// availability queries compare them independently, and boundaries are
// matched by exact HH:MM:SS equality.
type TimeWindow struct {
	Date  string `json:"date"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

func parseClock(s string) (string, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t.Format(timeLayout), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: use HH:MM or HH:MM:SS", s)
	}
	return t.Format(timeLayout), nil
}

// NormalizeWindow converts a client-local date and start/end times into a
// UTC TimeWindow. An empty timezone means the input is already UTC. The
// window's date is taken from the converted start instant.
func NormalizeWindow(date, start, end, timezone string) (TimeWindow, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("unknown timezone %q", timezone)
	}

	startClock, err := parseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	endClock, err := parseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}

	localStart, err := time.ParseInLocation(dateTimeLayout, date+" "+startClock, loc)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	localEnd, err := time.ParseInLocation(dateTimeLayout, date+" "+endClock, loc)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}

	if !localEnd.After(localStart) {
		return TimeWindow{}, ErrInvalidWindow
	}

	utcStart := localStart.UTC()
	utcEnd := localEnd.UTC()

	return TimeWindow{
		Date:  utcStart.Format(dateLayout),
		Start: utcStart.Format(timeLayout),
		End:   utcEnd.Format(timeLayout),
	}, nil
}

// LocalizeWindow converts a stored UTC window back into the client's
// timezone for display.
func LocalizeWindow(w TimeWindow, timezone string) (TimeWindow, error) {
	if timezone == "" || timezone == "UTC" {
		return w, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("unknown timezone %q", timezone)
	}

	utcStart, err := time.Parse(dateTimeLayout, w.Date+" "+w.Start)
	if err != nil {
		return TimeWindow{}, err
	}
	utcEnd, err := time.Parse(dateTimeLayout, w.Date+" "+w.End)
	if err != nil {
		return TimeWindow{}, err
	}

	localStart := utcStart.In(loc)
	localEnd := utcEnd.In(loc)

	return TimeWindow{
		Date:  localStart.Format(dateLayout),
		Start: localStart.Format(timeLayout),
		End:   localEnd.Format(timeLayout),
	}, nil
}

// StartInstant returns the window's start as a UTC instant, used for the
// cancellation lead-time check.
func (w TimeWindow) StartInstant() (time.Time, error) {
	return time.Parse(dateTimeLayout, w.Date+" "+w.Start)
}

// DurationHours is the wall-clock difference between start and end as
// fractional hours.
func (w TimeWindow) DurationHours() float64 {
	start, err := time.Parse(timeLayout, w.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse(timeLayout, w.End)
	if err != nil {
		return 0
	}
	return end.Sub(start).Hours()
}

func (w TimeWindow) isWeekend() bool {
	d, err := time.Parse(dateLayout, w.Date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
