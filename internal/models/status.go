package models

import (
	"github.com/myrjola/crimewatch/internal/errors"
	"log/slog"
	"strings"
)

// Status is the lifecycle state of a report as stored by the backend.
type Status string

const (
	StatusPending            Status = "pending"
	StatusInReview           Status = "in-review"
	StatusUnderInvestigation Status = "under-investigation"
	StatusCompleted          Status = "completed"
)

var ErrInvalidStatus = errors.NewSentinel("invalid status")

// Statuses lists every status in lifecycle order.
var Statuses = []Status{ //nolint:gochecknoglobals // fixed lifecycle
	StatusPending,
	StatusInReview,
	StatusUnderInvestigation,
	StatusCompleted,
}

// ParseStatus accepts only the exact wire values.
func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", errors.Wrap(ErrInvalidStatus, "parse status", slog.String("status", s))
}

// Normalize maps an absent or unknown status to pending.
func (s Status) Normalize() Status {
	if _, err := ParseStatus(string(s)); err != nil {
		return StatusPending
	}
	return s
}

// Label is the human-readable form, e.g. "Under investigation".
func (s Status) Label() string {
	n := string(s.Normalize())
	return strings.ToUpper(n[:1]) + strings.ReplaceAll(n[1:], "-", " ")
}
