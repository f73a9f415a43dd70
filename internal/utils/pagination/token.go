// Package pagination implements the opaque keyset cursors used by list
// endpoints. A cursor encodes the sort-key values of the last row of a page;
// repositories turn it back into a keyset comparison for the next page.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// TimeFormat is the wire format for time-valued cursor fields. Nanosecond
// precision keeps the keyset comparison exact against timestamptz columns.
const TimeFormat = time.RFC3339Nano

const fieldSep = "|"

// EncodeCursor packs the given sort-key fields into an opaque, URL-safe
// token. Fields must not contain the separator; format time values with
// TimeFormat.
func EncodeCursor(fields ...string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(fields, fieldSep)))
}

// DecodeCursor unpacks a cursor token and verifies it carries exactly want
// fields. Tokens are client-supplied, so a malformed one is an error, never a
// panic.
func DecodeCursor(token string, want int) ([]string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token: %w", err)
	}

	fields := strings.Split(string(raw), fieldSep)
	if len(fields) != want {
		return nil, fmt.Errorf("invalid pagination token: got %d fields, want %d", len(fields), want)
	}
	return fields, nil
}

// EncodeTimeCursor packs a single time sort key, for lists ordered by one
// timestamp column.
func EncodeTimeCursor(t time.Time) string {
	return EncodeCursor(t.Format(TimeFormat))
}

// DecodeTimeCursor unpacks a single-timestamp cursor.
func DecodeTimeCursor(token string) (time.Time, error) {
	fields, err := DecodeCursor(token, 1)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(TimeFormat, fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pagination token: %w", err)
	}
	return t, nil
}
