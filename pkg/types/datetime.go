package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultDateTimePattern is the pattern used by now() and by DateTime values
// constructed without an explicit pattern.
const DefaultDateTimePattern = "yyyy-MM-dd'T'HH:mm:ss"

// ProbePatterns are tried in order by [ProbeDateTime].
var ProbePatterns = []string{
	"yyyy-MM-dd'T'HH:mm",
	"yyyy-MM-dd'T'HH:mm:ss",
	"yyyy-MM-dd HH:mm:ss",
	"yyyy/MM/dd HH:mm:ss",
	"yyyy-MM-dd",
	"yyyy/MM/dd",
	"yyyy.MM.dd",
}

var errNotMatched = errors.New("not matched")

var (
	shortMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	shortDays   = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// patternElem is either a literal (letter == 0) or a field letter repeated
// width times.
type patternElem struct {
	letter rune
	width  int
	text   string
}

// Pattern is a compiled date-time pattern using the letters of
// java.time.format.DateTimeFormatter: y/u year, M month, d day, H hour
// (0-23), h hour (1-12), m minute, s second, S fraction, a AM/PM and
// E day-of-week. Text between single quotes is literal.
type Pattern struct {
	source string
	elems  []patternElem
}

// patternCache holds compiled patterns keyed by source. Entries are never
// removed; patterns come from expression literals and stay few.
var patternCache sync.Map // map[string]*Pattern

// CompilePattern compiles a date-time pattern.
func CompilePattern(src string) (*Pattern, error) {
	if p, ok := patternCache.Load(src); ok {
		return p.(*Pattern), nil
	}
	p, err := compilePattern(src)
	if err != nil {
		return nil, err
	}
	patternCache.Store(src, p)
	return p, nil
}

func compilePattern(src string) (*Pattern, error) {
	p := &Pattern{source: src}
	rs := []rune(src)
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.elems = append(p.elems, patternElem{text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\'':
			if i+1 < len(rs) && rs[i+1] == '\'' {
				lit.WriteRune('\'')
				i++
				continue
			}
			j := i + 1
			for ; j < len(rs); j++ {
				if rs[j] == '\'' {
					if j+1 < len(rs) && rs[j+1] == '\'' {
						lit.WriteRune('\'')
						j++
						continue
					}
					break
				}
				lit.WriteRune(rs[j])
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("pattern %q: unterminated literal", src)
			}
			i = j
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			n := 1
			for i+n < len(rs) && rs[i+n] == r {
				n++
			}
			if err := checkLetter(r, n); err != nil {
				return nil, fmt.Errorf("pattern %q: %w", src, err)
			}
			flush()
			p.elems = append(p.elems, patternElem{letter: r, width: n})
			i += n - 1
		default:
			lit.WriteRune(r)
		}
	}
	flush()
	return p, nil
}

func checkLetter(r rune, n int) error {
	switch r {
	case 'y', 'u', 'S', 'E':
		return nil
	case 'M':
		if n <= 4 {
			return nil
		}
	case 'd', 'H', 'h', 'm', 's':
		if n <= 2 {
			return nil
		}
	case 'a':
		if n == 1 {
			return nil
		}
	default:
		return fmt.Errorf("unsupported pattern letter '%c'", r)
	}
	return fmt.Errorf("too many pattern letters: %c", r)
}

// String returns the source of the pattern.
func (p *Pattern) String() string { return p.source }

// numericBounds returns the minimum and maximum digit counts of a numeric
// element, ok is false for text elements.
func (e patternElem) numericBounds() (lo, hi int, ok bool) {
	switch e.letter {
	case 'y', 'u':
		if e.width == 2 {
			return 2, 2, true
		}
		return e.width, 10, true
	case 'S':
		return e.width, e.width, true
	case 'M':
		if e.width >= 3 {
			return 0, 0, false
		}
		fallthrough
	case 'd', 'H', 'h', 'm', 's':
		if e.width == 2 {
			return 2, 2, true
		}
		return 1, 10, true
	}
	return 0, 0, false
}

// Parse parses s. Missing month and day default to 1, missing time fields to
// zero. The year is required. The result is a wall-clock time in UTC.
func (p *Pattern) Parse(s string) (time.Time, error) {
	var (
		year, month, day  = 0, 1, 1
		hour, minute, sec int
		nanos             int
		haveYear          bool
		hour12            = -1
		pm                = -1
		pos               int
	)
	for idx, e := range p.elems {
		if e.letter == 0 {
			if !strings.HasPrefix(s[pos:], e.text) {
				return time.Time{}, fmt.Errorf("text %q could not be parsed at index %d", s, pos)
			}
			pos += len(e.text)
			continue
		}
		if lo, hi, ok := e.numericBounds(); ok {
			avail := 0
			for pos+avail < len(s) && s[pos+avail] >= '0' && s[pos+avail] <= '9' {
				avail++
			}
			take := min(avail, hi)
			if lo != hi {
				reserved := 0
				for _, next := range p.elems[idx+1:] {
					nlo, nhi, nok := next.numericBounds()
					if !nok || nlo != nhi {
						break
					}
					reserved += nlo
				}
				take = min(avail-reserved, hi)
			}
			if take < lo || take <= 0 {
				return time.Time{}, fmt.Errorf("text %q could not be parsed at index %d", s, pos)
			}
			n, _ := strconv.Atoi(s[pos : pos+take])
			digits := s[pos : pos+take]
			pos += take
			switch e.letter {
			case 'y', 'u':
				if e.width == 2 {
					n += 2000
				}
				year, haveYear = n, true
			case 'M':
				month = n
			case 'd':
				day = n
			case 'H':
				hour = n
			case 'h':
				hour12 = n
			case 'm':
				minute = n
			case 's':
				sec = n
			case 'S':
				for len(digits) < 9 {
					digits += "0"
				}
				nanos, _ = strconv.Atoi(digits[:9])
			}
			continue
		}
		switch e.letter {
		case 'M':
			names := shortMonths
			if e.width == 4 {
				names = nameList(12, func(i int) string { return time.Month(i + 1).String() })
			}
			i, n := matchName(s[pos:], names)
			if i < 0 {
				return time.Time{}, fmt.Errorf("text %q could not be parsed at index %d", s, pos)
			}
			month = i + 1
			pos += n
		case 'E':
			names := shortDays
			if e.width >= 4 {
				names = nameList(7, func(i int) string { return time.Weekday(i).String() })
			}
			i, n := matchName(s[pos:], names)
			if i < 0 {
				return time.Time{}, fmt.Errorf("text %q could not be parsed at index %d", s, pos)
			}
			pos += n
		case 'a':
			i, n := matchName(s[pos:], []string{"AM", "PM"})
			if i < 0 {
				return time.Time{}, fmt.Errorf("text %q could not be parsed at index %d", s, pos)
			}
			pm = i
			pos += n
		}
	}
	if pos != len(s) {
		return time.Time{}, fmt.Errorf("text %q could not be parsed, unparsed text found at index %d", s, pos)
	}
	if !haveYear {
		return time.Time{}, fmt.Errorf("text %q could not be parsed: year is missing", s)
	}
	if hour12 >= 0 {
		if hour12 < 1 || hour12 > 12 {
			return time.Time{}, fmt.Errorf("invalid value for ClockHourOfAmPm: %d", hour12)
		}
		hour = hour12 % 12
		if pm == 1 {
			hour += 12
		}
	}
	switch {
	case month < 1 || month > 12:
		return time.Time{}, fmt.Errorf("invalid value for MonthOfYear: %d", month)
	case day < 1 || day > 31:
		return time.Time{}, fmt.Errorf("invalid value for DayOfMonth: %d", day)
	case hour > 23:
		return time.Time{}, fmt.Errorf("invalid value for HourOfDay: %d", hour)
	case minute > 59:
		return time.Time{}, fmt.Errorf("invalid value for MinuteOfHour: %d", minute)
	case sec > 59:
		return time.Time{}, fmt.Errorf("invalid value for SecondOfMinute: %d", sec)
	}
	day = min(day, daysIn(year, time.Month(month)))
	return time.Date(year, time.Month(month), day, hour, minute, sec, nanos, time.UTC), nil
}

func nameList(n int, name func(int) string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name(i)
	}
	return out
}

// matchName returns the index of the longest name that prefixes s.
func matchName(s string, names []string) (idx, length int) {
	idx = -1
	for i, n := range names {
		if len(n) > length && strings.HasPrefix(s, n) {
			idx, length = i, len(n)
		}
	}
	return idx, length
}

// Format renders t with the pattern.
func (p *Pattern) Format(t time.Time) string {
	var sb strings.Builder
	for _, e := range p.elems {
		switch e.letter {
		case 0:
			sb.WriteString(e.text)
		case 'y', 'u':
			if e.width == 2 {
				sb.WriteString(pad(t.Year()%100, 2))
			} else {
				sb.WriteString(pad(t.Year(), e.width))
			}
		case 'M':
			switch e.width {
			case 1, 2:
				sb.WriteString(pad(int(t.Month()), e.width))
			case 3:
				sb.WriteString(shortMonths[t.Month()-1])
			default:
				sb.WriteString(t.Month().String())
			}
		case 'd':
			sb.WriteString(pad(t.Day(), e.width))
		case 'H':
			sb.WriteString(pad(t.Hour(), e.width))
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			sb.WriteString(pad(h, e.width))
		case 'm':
			sb.WriteString(pad(t.Minute(), e.width))
		case 's':
			sb.WriteString(pad(t.Second(), e.width))
		case 'S':
			frac := pad(t.Nanosecond(), 9)
			for len(frac) < e.width {
				frac += "0"
			}
			sb.WriteString(frac[:e.width])
		case 'a':
			if t.Hour() < 12 {
				sb.WriteString("AM")
			} else {
				sb.WriteString("PM")
			}
		case 'E':
			if e.width >= 4 {
				sb.WriteString(t.Weekday().String())
			} else {
				sb.WriteString(shortDays[t.Weekday()])
			}
		}
	}
	return sb.String()
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDateTime parses s with a pattern given in source form.
func ParseDateTime(s, pattern string) (time.Time, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return time.Time{}, err
	}
	return p.Parse(s)
}

// FormatDateTime formats t with a pattern given in source form.
func FormatDateTime(t time.Time, pattern string) (string, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return "", err
	}
	return p.Format(t), nil
}

// ProbeDateTime parses s with the first of [ProbePatterns] that accepts it
// and returns the time with the matching pattern.
func ProbeDateTime(s string) (time.Time, string, error) {
	for _, src := range ProbePatterns {
		if t, err := ParseDateTime(s, src); err == nil {
			return t, src, nil
		}
	}
	return time.Time{}, "", errNotMatched
}

// Now returns the current local wall-clock time expressed in UTC, the
// representation used by every DateTime value.
func Now() time.Time {
	t := time.Now()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ShiftDateTime moves t by n units, where unit is one of y M d h m s.
// Month and year shifts clamp the day to the end of the target month.
func ShiftDateTime(t time.Time, n int, unit byte) (time.Time, error) {
	switch unit {
	case 'y':
		return addMonths(t, n*12), nil
	case 'M':
		return addMonths(t, n), nil
	case 'd':
		return t.AddDate(0, 0, n), nil
	case 'h':
		return t.Add(time.Duration(n) * time.Hour), nil
	case 'm':
		return t.Add(time.Duration(n) * time.Minute), nil
	case 's':
		return t.Add(time.Duration(n) * time.Second), nil
	}
	return t, fmt.Errorf("unsupported unit %q", unit)
}

func addMonths(t time.Time, n int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 + n
	year, month := total/12, time.Month(total%12+1)
	if total < 0 && total%12 != 0 {
		year--
		month = time.Month(total%12 + 13)
	}
	day := min(t.Day(), daysIn(year, month))
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Until returns the number of whole units from start to end, truncated
// toward zero. Units follow java.time.temporal.ChronoUnit names.
func Until(start, end time.Time, unit string) (int64, error) {
	switch unit {
	case "NANOS", "MICROS", "MILLIS", "SECONDS", "MINUTES", "HOURS", "HALF_DAYS":
		secs := end.Unix() - start.Unix()
		nanos := int64(end.Nanosecond() - start.Nanosecond())
		if secs > 0 && nanos < 0 {
			secs--
			nanos += 1e9
		} else if secs < 0 && nanos > 0 {
			secs++
			nanos -= 1e9
		}
		switch unit {
		case "NANOS":
			return secs*1e9 + nanos, nil
		case "MICROS":
			return secs*1e6 + nanos/1e3, nil
		case "MILLIS":
			return secs*1e3 + nanos/1e6, nil
		case "SECONDS":
			return secs, nil
		case "MINUTES":
			return secs / 60, nil
		case "HOURS":
			return secs / 3600, nil
		default:
			return secs / 43200, nil
		}
	case "DAYS", "WEEKS", "MONTHS", "YEARS", "DECADES", "CENTURIES", "MILLENNIA":
	default:
		return 0, fmt.Errorf("unsupported unit: %s", unit)
	}

	startDate := dateOnly(start)
	endDate := dateOnly(end)
	startClock := start.Sub(startDate)
	endClock := end.Sub(endDate)
	if endDate.After(startDate) && endClock < startClock {
		endDate = endDate.AddDate(0, 0, -1)
	} else if endDate.Before(startDate) && endClock > startClock {
		endDate = endDate.AddDate(0, 0, 1)
	}

	days := int64(endDate.Sub(startDate) / (24 * time.Hour))
	packed := func(t time.Time) int64 {
		return (int64(t.Year())*12+int64(t.Month())-1)*32 + int64(t.Day())
	}
	months := (packed(endDate) - packed(startDate)) / 32
	switch unit {
	case "DAYS":
		return days, nil
	case "WEEKS":
		return days / 7, nil
	case "MONTHS":
		return months, nil
	case "YEARS":
		return months / 12, nil
	case "DECADES":
		return months / 120, nil
	case "CENTURIES":
		return months / 1200, nil
	default:
		return months / 12000, nil
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
