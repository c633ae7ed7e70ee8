// Package wallclock converts between 24-hour "HH:MM" wall-clock strings and
// minute-of-day offsets. It is date-agnostic: arithmetic wraps at midnight and
// callers that care about day boundaries must track the date themselves.
package wallclock

import (
	"errors"
	"fmt"
)

// MinutesPerDay is the number of minutes on a 24-hour clock.
const MinutesPerDay = 24 * 60

// ErrInvalidTimeFormat indicates a string that is not a 24-hour HH:MM value.
var ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")

// ErrInvalidRange indicates a minute offset outside [0, 1440).
var ErrInvalidRange = errors.New("minutes out of range")

// ToMinutes parses a 24-hour "HH:MM" string into a minute-of-day offset.
func ToMinutes(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	hour, ok := parseTwoDigits(value[0], value[1])
	if !ok || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	minute, ok := parseTwoDigits(value[3], value[4])
	if !ok || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	return hour*60 + minute, nil
}

// ToClockString renders a minute-of-day offset as a zero-padded "HH:MM".
func ToClockString(minutes int) (string, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrInvalidRange, minutes)
	}

	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// AddMinutes shifts an "HH:MM" value by delta minutes, wrapping on the 24-hour
// clock. A delta that crosses midnight wraps to the next day's clock value.
func AddMinutes(value string, delta int) (string, error) {
	minutes, err := ToMinutes(value)
	if err != nil {
		return "", err
	}

	shifted := ((minutes+delta)%MinutesPerDay + MinutesPerDay) % MinutesPerDay

	return ToClockString(shifted)
}

// FormatForDisplay renders an "HH:MM" value in the 12-hour "h:mm AM/PM"
// convention: "00:00" becomes "12:00 AM" and "12:00" becomes "12:00 PM".
func FormatForDisplay(value string) (string, error) {
	minutes, err := ToMinutes(value)
	if err != nil {
		return "", err
	}

	return DisplayMinutes(minutes), nil
}

// DisplayMinutes renders a minute-of-day offset in 12-hour notation. Offsets
// outside the valid range wrap, which keeps it safe for computed interval
// endpoints.
func DisplayMinutes(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay

	hour := minutes / 60
	minute := minutes % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}

	hour %= 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

func parseTwoDigits(high, low byte) (int, bool) {
	if high < '0' || high > '9' || low < '0' || low > '9' {
		return 0, false
	}
	return int(high-'0')*10 + int(low-'0'), true
}
