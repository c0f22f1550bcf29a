// Package submission hands a finished draft to the backend under a fresh tracking id.
package submission

import (
	"context"
	"fmt"
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/random"
	"log/slog"
	"regexp"
	"time"
)

const trackingIDPrefix = "CW"

// TrackingIDPattern matches every generated tracking id.
var TrackingIDPattern = regexp.MustCompile(`^[A-Z]{2}\d{6}\d{3}$`)

// Creator creates reports in the backend.
type Creator interface {
	CreateReport(ctx context.Context, report backend.NewReport) (models.Report, error)
}

type Gateway struct {
	creator Creator
	now     func() time.Time
	logger  *slog.Logger
}

func NewGateway(creator Creator, logger *slog.Logger) *Gateway {
	return &Gateway{
		creator: creator,
		now:     time.Now,
		logger:  logger.With(slog.String("source", "submission")),
	}
}

// WithClock replaces the clock used for tracking ids.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// Submit creates a pending report from draft and returns its generated tracking id.
//
// The generated id is the user-facing reference even if the backend assigns its own.
func (g *Gateway) Submit(ctx context.Context, draft models.Draft) (string, error) {
	trackingID, err := g.newTrackingID()
	if err != nil {
		return "", errors.Wrap(err, "generate tracking id")
	}
	if _, err = g.creator.CreateReport(ctx, backend.NewReport{
		TrackingID: trackingID,
		Status:     models.StatusPending,
		Draft:      draft,
	}); err != nil {
		return "", errors.Wrap(err, "create report", slog.String("tracking_id", trackingID))
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "report submitted",
		slog.String("tracking_id", trackingID),
		slog.Bool("has_proof", draft.Proof != nil))
	return trackingID, nil
}

// newTrackingID returns the prefix, the last six digits of the Unix millisecond time and three random digits.
func (g *Gateway) newTrackingID() (string, error) {
	millis := fmt.Sprintf("%06d", g.now().UnixMilli())
	suffix, err := random.Digits(3) //nolint:mnd // three digits
	if err != nil {
		return "", errors.Wrap(err, "random digits")
	}
	return trackingIDPrefix + millis[len(millis)-6:] + suffix, nil
}
