package checkout

import (
	"fmt"
	"math/rand"
	"time"
)

// NewSessionID generates the gateway-facing session id for one card payment
// attempt: a daily-bucketed token with a 4-digit random suffix, e.g.
// "3108-0417". Unique enough to disambiguate concurrent attempts without
// server coordination; every attempt gets a fresh one, an id is never
// reused for a second gateway session.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("%02d%02d-%04d", now.Day(), int(now.Month()), rand.Intn(10000))
}
