package access

import (
	"crypto/rand"
	"time"
)

// Access grants time-boxed anonymous access to one trip, for outsourced
// drivers confirming trip start/end without a session. Only the code and
// the trip id are stored; the validity window is derived from the trip's
// planned times at validation time.
type Access struct {
	Code      string
	TripID    string
	CreatedAt time.Time
}

// CodeLength is the fixed length of every access code.
const CodeLength = 26

// b32 is the Crockford base32 alphabet (no I, L, O, U).
const b32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateCode returns a 26-character code: 10 chars of millisecond time
// followed by 16 random chars.
func GenerateCode() string {
	buf := make([]byte, 0, CodeLength)
	buf = appendTime(buf, time.Now().UnixMilli(), 10)
	buf = appendRandom(buf, 16)
	return string(buf)
}

func appendTime(buf []byte, ms int64, length int) []byte {
	chars := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		chars[i] = b32[ms%32]
		ms /= 32
	}
	return append(buf, chars...)
}

func appendRandom(buf []byte, length int) []byte {
	bytes := make([]byte, length)
	// rand.Read never fails on supported platforms
	_, _ = rand.Read(bytes)
	for i := 0; i < length; i++ {
		// map each byte to 0..31; the tiny bias is acceptable for codes
		buf = append(buf, b32[bytes[i]&31])
	}
	return buf
}

// WindowContains reports whether now falls inside the access window of a
// trip: from two days before the departure date through one day after the
// arrival date, whole days inclusive, in UTC.
func WindowContains(departure, arrival, now time.Time) bool {
	from := dateOf(departure).AddDate(0, 0, -2)
	until := dateOf(arrival).AddDate(0, 0, 1)
	day := dateOf(now)
	return !day.Before(from) && !day.After(until)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
