package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateTrackingNumber builds a human-shareable tracking number from a date
// fragment and a random suffix, e.g. MB-20260828-1A2B3C4D. The random suffix
// keeps numbers non-guessable from sequence; uniqueness is enforced by the
// orders table index.
func GenerateTrackingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MB-%s-%s", now.Format("20060102"), suffix)
}
