package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeValue is a booking endpoint as received from a client: either an
// ISO-8601 string or a number of Unix seconds.  Strings are kept raw until
// Normalize so that parse failures surface as validation errors rather
// than JSON decoding errors.
type TimeValue struct {
	raw     string
	t       time.Time
	isTime  bool
	present bool
}

// TimeOf wraps an already structured time.
func TimeOf(t time.Time) TimeValue { return TimeValue{t: t, isTime: true, present: true} }

// TimeString wraps an ISO-8601 string.
func TimeString(s string) TimeValue { return TimeValue{raw: s, present: true} }

// IsZero reports whether no value was supplied.
func (v TimeValue) IsZero() bool { return !v.present }

// UnmarshalJSON accepts a JSON string or number.  null leaves v empty.
func (v *TimeValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = TimeValue{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TimeString(s)
		return nil
	}
	var secs json.Number
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("time must be an ISO-8601 string or Unix seconds")
	}
	f, err := secs.Float64()
	if err != nil {
		return err
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	*v = TimeOf(time.Unix(sec, nsec).UTC())
	return nil
}

// Layouts tried in order.  Those without an offset produce zone-free
// values that are taken as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 timestamp.  A trailing Z is read as +00:00.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// Normalize returns v as zone-free UTC.  Values carrying an offset are
// converted to UTC; values without one are stored unchanged.  time.Parse
// already yields UTC for offset-less layouts, so both cases end in UTC.
func (v TimeValue) Normalize() (time.Time, error) {
	t := v.t
	if !v.isTime {
		var err error
		if t, err = ParseISO(v.raw); err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}
