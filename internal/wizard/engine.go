package wizard

import (
	"context"
	"fmt"
	"github.com/myrjola/crimewatch/internal/ai"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/location"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/validate"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// MaxAttachmentSize is the evidence size ceiling.
const MaxAttachmentSize = 10 << 20

var (
	ErrAttachmentTooLarge    = errors.NewSentinel("attachment too large")
	ErrUnsupportedAttachment = errors.NewSentinel("unsupported attachment type")
)

const (
	msgMoreDetail        = "Please provide more specific information about the incident."
	msgChooseOption      = "Please choose one of the options: %s."
	msgLocationFailed    = "Unable to get location. Please enter it manually."
	msgLocationNoSupport = "Location services not available. Please enter location manually."
	msgUsingLive         = "Using live location"
	msgLocationReceived  = "Location received successfully!"
	msgSubmitFailed      = "There was an error submitting your report. Please try again."
	msgThankYou          = "Thank you for your report. Your tracking ID is %s. " +
		"Keep it to follow the progress of your complaint."
	toastSubmitted    = "Report submitted successfully!"
	toastSubmitFailed = "Failed to submit report. Please try again."
	toastTooLarge     = "File size should be less than 10MB"
	toastUnsupported  = "Please upload a photo or a video."
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification for the user.
type Toast struct {
	Kind ToastKind
	Text string
}

// Result describes what an operation did to the wizard.
type Result struct {
	// Accepted is false when the input was ignored.
	Accepted bool
	// NeedsLocation asks the browser for its position.
	NeedsLocation bool
	Toast         *Toast
}

type Classifier interface {
	ClassifyCrime(ctx context.Context, description string) (ai.Verdict, error)
}

type LocationResolver interface {
	Resolve(ctx context.Context, fix location.Fix) (string, error)
}

type Submitter interface {
	Submit(ctx context.Context, draft models.Draft) (string, error)
}

type Engine struct {
	classifier Classifier
	resolver   LocationResolver
	submitter  Submitter
	logger     *slog.Logger
}

func NewEngine(classifier Classifier, resolver LocationResolver, submitter Submitter, logger *slog.Logger) *Engine {
	return &Engine{
		classifier: classifier,
		resolver:   resolver,
		submitter:  submitter,
		logger:     logger.With(slog.String("source", "wizard")),
	}
}

// Answer processes a free text answer or a chosen option for the current step.
//
// Blank input is ignored, as is input while the wizard has ended, is busy, or waits for a file or a location.
func (e *Engine) Answer(ctx context.Context, s *State, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" || !s.AcceptsText() {
		return Result{} //nolint:exhaustruct // ignored
	}
	ctx = logging.WithAttrs(ctx, slog.String("wizard_id", s.ID), slog.String("field", string(s.Field)))

	step := s.Step()
	s.hear(text)

	if len(step.Options) > 0 && !isOption(step, text) {
		s.sayError(fmt.Sprintf(msgChooseOption, strings.Join(step.Options, ", ")))
		return Result{Accepted: true} //nolint:exhaustruct // no toast
	}
	if step.Rule != validate.RuleNone && !validate.Input(text, step.Rule) {
		s.sayError(fmt.Sprintf("Please provide a valid %s.", step.Field))
		return Result{Accepted: true} //nolint:exhaustruct // no toast
	}

	record(&s.Draft, step.Field, text)

	if step.Field == FieldCrime {
		verdict, err := e.classifier.ClassifyCrime(ctx, text)
		if err != nil {
			e.logger.LogAttrs(ctx, slog.LevelError, "crime classification failed", errors.SlogError(err))
		}
		if verdict != ai.VerdictYes {
			e.logger.LogAttrs(ctx, slog.LevelInfo, "crime description rejected", slog.String("verdict", string(verdict)))
			s.sayError(msgMoreDetail)
			return Result{Accepted: true} //nolint:exhaustruct // no toast
		}
	}

	return e.follow(ctx, s, next(step.Field, text))
}

// AttachEvidence stores the uploaded evidence and moves on. Oversized or non-media files are rejected.
func (e *Engine) AttachEvidence(ctx context.Context, s *State, attachment models.Attachment) (Result, error) {
	if s.Ended || s.Busy || !s.AwaitingFile {
		return Result{}, nil //nolint:exhaustruct // ignored
	}
	if len(attachment.Data) > MaxAttachmentSize {
		return Result{Accepted: false, NeedsLocation: false, Toast: OversizedToast()},
			errors.Wrap(ErrAttachmentTooLarge, "attach evidence", slog.Int("size", len(attachment.Data)))
	}
	contentType := http.DetectContentType(attachment.Data)
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return Result{Accepted: false, NeedsLocation: false, Toast: &Toast{Kind: ToastError, Text: toastUnsupported}},
			errors.Wrap(ErrUnsupportedAttachment, "attach evidence", slog.String("content_type", contentType))
	}
	attachment.ContentType = contentType

	s.Draft.Proof = &attachment
	s.AwaitingFile = false
	s.hear("Uploaded: " + attachment.Filename)
	e.logger.LogAttrs(ctx, slog.LevelInfo, "evidence attached",
		slog.String("wizard_id", s.ID),
		slog.String("content_type", contentType),
		slog.Int("size", len(attachment.Data)))
	return e.follow(ctx, s, next(FieldProof, attachment.Filename)), nil
}

// OversizedToast is the rejection shown for evidence above MaxAttachmentSize.
func OversizedToast() *Toast {
	return &Toast{Kind: ToastError, Text: toastTooLarge}
}

// ResolveLocation completes a pending live location request and submits the report.
//
// When no location can be determined the wizard falls back to manual entry.
func (e *Engine) ResolveLocation(ctx context.Context, s *State, fix location.Fix) Result {
	if s.Ended || s.Busy || !s.AwaitingLocation {
		return Result{} //nolint:exhaustruct // ignored
	}
	s.AwaitingLocation = false

	place, err := e.resolver.Resolve(ctx, fix)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "live location unavailable",
			slog.String("wizard_id", s.ID), errors.SlogError(err))
		if fix.Failure == location.FailureUnsupported {
			s.sayError(msgLocationNoSupport)
		} else {
			s.sayError(msgLocationFailed)
		}
		s.Draft.LocationType = models.LocationTypeManual
		s.Field = FieldLocation
		return Result{Accepted: true} //nolint:exhaustruct // no toast
	}

	s.hear(msgUsingLive)
	s.hear(place)
	s.say(msgLocationReceived)
	s.Draft.LocationType = models.LocationTypeLive
	s.Draft.Location = place
	return e.submit(ctx, s)
}

func (e *Engine) follow(ctx context.Context, s *State, t transition) Result {
	switch t.action {
	case actionResolveLocation:
		s.AwaitingLocation = true
		return Result{Accepted: true, NeedsLocation: true, Toast: nil}
	case actionSubmit:
		return e.submit(ctx, s)
	case actionAdvance:
		s.AwaitingFile = t.awaitFile
		s.Field = t.to
		s.say(s.Step().Prompt)
	}
	return Result{Accepted: true} //nolint:exhaustruct // no toast
}

func (e *Engine) submit(ctx context.Context, s *State) Result {
	trackingID, err := e.submitter.Submit(ctx, s.Draft)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "report submission failed",
			slog.String("wizard_id", s.ID), errors.SlogError(err))
		s.sayError(msgSubmitFailed)
		return Result{Accepted: true, NeedsLocation: false, Toast: &Toast{Kind: ToastError, Text: toastSubmitFailed}}
	}
	s.Ended = true
	s.TrackingID = trackingID
	s.say(fmt.Sprintf(msgThankYou, trackingID))
	return Result{Accepted: true, NeedsLocation: false, Toast: &Toast{Kind: ToastSuccess, Text: toastSubmitted}}
}

func isOption(step Step, answer string) bool {
	for _, o := range step.Options {
		if strings.EqualFold(o, answer) {
			return true
		}
	}
	return false
}

// record stores answer into the draft field. Answers have been validated by the step rule.
func record(d *models.Draft, field Field, answer string) {
	switch field {
	case FieldName:
		d.Name = answer
	case FieldAge:
		d.Age, _ = strconv.Atoi(answer)
	case FieldMobile:
		d.Mobile = answer
	case FieldResidence:
		d.Residence = answer
	case FieldCrime:
		d.Crime = answer
	case FieldHasProof:
		d.HasProof = !strings.EqualFold(answer, OptionNo)
		if !d.HasProof {
			d.Proof = nil
		}
	case FieldProof:
	case FieldTraits:
		d.Traits = answer
	case FieldLocationType:
		d.LocationType = models.LocationTypeManual
		if strings.EqualFold(answer, OptionLiveLocation) {
			d.LocationType = models.LocationTypeLive
		}
	case FieldLocation:
		d.Location = answer
	}
}
