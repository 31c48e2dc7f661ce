package id

import (
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. IDs come from a process-wide monotonic
// entropy source, so they sort by creation order even within one millisecond
// and are safe for use as DynamoDB sort keys.
func New() string {
	return ulid.Make().String()
}
