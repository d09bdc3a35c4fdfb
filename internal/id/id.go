package id

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// encoding is Crockford's Base32 (excludes I, L, O, U to avoid ambiguity).
const encoding = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	mu      sync.Mutex
	lastMs  int64
	counter uint16
)

// New generates a 26-character ULID: a 48-bit millisecond timestamp followed
// by 80 bits of randomness. Calls within the same millisecond increment a
// counter that is mixed into the random component, keeping IDs unique and
// ordered under rapid logging.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UnixMilli()
	if now == lastMs {
		counter++
		if counter == 0 {
			// Counter wrapped; wait out the millisecond.
			for now == lastMs {
				time.Sleep(time.Millisecond)
				now = time.Now().UnixMilli()
			}
			lastMs = now
		}
	} else {
		lastMs = now
		counter = 0
	}

	return encode(now, counter)
}

// encode builds the ULID string from a millisecond timestamp and a
// same-millisecond counter.
func encode(ms int64, counter uint16) string {
	out := make([]byte, 26)

	// Timestamp: 48 bits into the first 10 characters.
	t := ms
	for i := 9; i >= 0; i-- {
		out[i] = encoding[t&0x1f]
		t >>= 5
	}

	random := make([]byte, 10)
	_, _ = rand.Read(random)

	// Fold the counter into the leading random bytes so same-millisecond
	// IDs stay distinct and sort in generation order.
	random[0] = byte(counter >> 8)
	random[1] = byte(counter)

	// Randomness: 80 bits into the remaining 16 characters.
	var acc uint32
	bits := 0
	j := 10
	for _, b := range random {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[j] = encoding[(acc>>uint(bits))&0x1f]
			j++
		}
	}

	return string(out)
}

// IsValid reports whether s is a well-formed ULID.
func IsValid(s string) bool {
	if len(s) != 26 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if decodeChar(s[i]) < 0 {
			return false
		}
	}
	return true
}

// Time extracts the timestamp component of a ULID.
func Time(s string) (time.Time, error) {
	if !IsValid(s) {
		return time.Time{}, fmt.Errorf("invalid id: %q", s)
	}
	var ms int64
	for i := 0; i < 10; i++ {
		ms = ms<<5 | int64(decodeChar(s[i]))
	}
	return time.UnixMilli(ms), nil
}

func decodeChar(c byte) int {
	for i := 0; i < len(encoding); i++ {
		if encoding[i] == c {
			return i
		}
	}
	return -1
}
