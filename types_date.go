package folio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

const Day = 24 * time.Hour

// Date represents a calendar date with day-level granularity.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// DateOf returns the calendar date of t, in t's own location.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// Today returns the current date.
func Today() Date { return DateOf(time.Now()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in its standard format.
func (d Date) String() string { return d.Time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// Time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// StartOfWeek returns the Sunday opening the week of d.
func (d Date) StartOfWeek() Date { return d.Add(-int(d.Weekday())) }

// EndOfWeek returns the Saturday closing the week of d.
func (d Date) EndOfWeek() Date { return d.Add(int(time.Saturday - d.Weekday())) }

// DaysUntil returns the number of calendar days from d to x (negative when x is before d).
func (d Date) DaysUntil(x Date) int {
	return int(x.Time().Sub(d.Time()) / Day)
}

// relativeDate matches offsets from today such as "-1d", "+2w", "-3m", "-1q" or "+1y".
var relativeDate = regexp.MustCompile(`^([+-])(\d+)([dwmqy])$`)

// shifts moves a date by n units, keyed by the unit letter of relativeDate.
var shifts = map[string]func(d Date, n int) Date{
	"d": func(d Date, n int) Date { return d.Add(n) },
	"w": func(d Date, n int) Date { return d.Add(7 * n) },
	"m": func(d Date, n int) Date { return NewDate(d.y, d.m+time.Month(n), d.d) },
	"q": func(d Date, n int) Date { return NewDate(d.y, d.m+time.Month(3*n), d.d) },
	"y": func(d Date, n int) Date { return NewDate(d.y+n, d.m, d.d) },
}

// ParseDate parses a Date from a string. It is lenient and accepts formats like "2025-7-1",
// and relative dates like "-1d", "+2w", "-3m", "-1q", "-1y" ("0d" being today).
func ParseDate(str string) (Date, error) { return ParseDateAt(str, Today()) }

// ParseDateAt is like ParseDate with relative dates counted from today.
func ParseDateAt(str string, today Date) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "0d" {
		return today, nil
	}
	if m := relativeDate.FindStringSubmatch(str); m != nil {
		n, err := strconv.Atoi(m[1] + m[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid relative date %q: %w", str, err)
		}
		return shifts[m[3]](today, n), nil
	}
	// spreadsheets tend to export full timestamps
	for _, layout := range []string{readDateFormat, time.RFC3339} {
		if on, err := time.Parse(layout, str); err == nil {
			return DateOf(on), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or a relative date such as -1d", str)
}

// MustParse is like ParseDate but panics on error.
func MustParse(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	// Keep this parsing strict, as it's for data files.
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in data file, want format %q: %w", str, DateFormat, err)
	}
	*d = NewDate(on.Date())
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	var str string
	if !d.IsZero() {
		str = d.String()
	}
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
