package assistant

import "time"

const (
	isoLayout       = "2006-01-02T15:04:05-07:00"
	isoLayoutMicros = "2006-01-02T15:04:05.000000-07:00"
)

// FormatISO renders t the way downstream consumers expect: seconds precision, a
// six-digit microsecond fraction only when it is non-zero, and a numeric UTC offset
// ("+00:00", never "Z"). Sub-microsecond precision is truncated.
func FormatISO(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(isoLayoutMicros)
	}
	return t.Format(isoLayout)
}

// ParseISO is the inverse of FormatISO.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
