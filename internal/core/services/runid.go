package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// runIDLayout sorts lexically in time order.
const runIDLayout = "20060102150405"

// NewRunID returns a run identifier of the form
// run-YYYYMMDDHHMMSS-xxxxxxxx, using the UTC time t and a random suffix.
func NewRunID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "run-" + t.UTC().Format(runIDLayout) + "-" + suffix
}
