package state

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeMidnight is the canonical midnight label. Advancing time to or past the
// 24-hour boundary clamps to this label; the presentation layer watches for it
// to show the midnight interaction. It never increments the day by itself.
const TimeMidnight = "00:00"

// TimeMorning is the default day-start time when a node declares none.
const TimeMorning = "08:00"

// IsValidTime reports whether t is a well-formed "HH:MM" label.
func IsValidTime(t string) bool {
	_, _, err := parseTime(t)
	return err == nil
}

// AddHours advances a time-of-day label by a number of hours (fractional
// allowed) within the same day. Reaching or passing the day boundary clamps
// to the midnight label. A malformed input or a non-finite delta returns the
// input unchanged.
func AddHours(t string, hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return t
	}

	h, m, err := parseTime(t)
	if err != nil {
		return t
	}

	total := float64(h*60+m) + hours*60
	if total >= 24*60 {
		return TimeMidnight
	}
	if total < 0 {
		total = 0
	}

	minutes := int(math.Round(total))
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func parseTime(t string) (hour, minute int, err error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time label: %q", t)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("malformed hour in time label: %q", t)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("malformed minute in time label: %q", t)
	}

	return hour, minute, nil
}
