package codec

import (
	"time"

	"github.com/spacerhq/spacer"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and time.Time.
func TimeRFC3339() spacer.Codec[string, time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(a string) (time.Time, error) {
	t, err := parseRFC3339(a)
	if err != nil {
		return time.Time{}, spacer.Issues{{Path: "/", Code: spacer.CodeInvalidFormat, Message: "invalid RFC3339 time", Cause: err, Offset: -1}}
	}
	return t, nil
}

func (rfc3339Codec) Encode(b time.Time) (string, error) {
	if b.IsZero() {
		return "", spacer.Issues{{Path: "/", Code: spacer.CodeInvalidFormat, Message: "zero time", Offset: -1}}
	}
	return formatRFC3339Canonical(b), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
