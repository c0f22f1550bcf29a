package wizard_test

import (
	"bytes"
	"context"
	"github.com/myrjola/crimewatch/internal/ai"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/location"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/testhelpers"
	"github.com/myrjola/crimewatch/internal/wizard"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

type stubClassifier struct {
	verdict ai.Verdict
	err     error
	calls   int
}

func (c *stubClassifier) ClassifyCrime(_ context.Context, _ string) (ai.Verdict, error) {
	c.calls++
	return c.verdict, c.err
}

type stubResolver struct {
	place string
	err   error
}

func (r *stubResolver) Resolve(_ context.Context, _ location.Fix) (string, error) {
	return r.place, r.err
}

type stubSubmitter struct {
	drafts []models.Draft
	err    error
}

func (s *stubSubmitter) Submit(_ context.Context, draft models.Draft) (string, error) {
	s.drafts = append(s.drafts, draft)
	if s.err != nil {
		return "", s.err
	}
	return "CW123456789", nil
}

type fixture struct {
	classifier *stubClassifier
	resolver   *stubResolver
	submitter  *stubSubmitter
	engine     *wizard.Engine
}

func newFixture() *fixture {
	f := &fixture{
		classifier: &stubClassifier{verdict: ai.VerdictYes, err: nil, calls: 0},
		resolver:   &stubResolver{place: "Central Park, New York", err: nil},
		submitter:  &stubSubmitter{drafts: nil, err: nil},
		engine:     nil,
	}
	f.engine = wizard.NewEngine(f.classifier, f.resolver, f.submitter, testhelpers.NewLogger(io.Discard))
	return f
}

// answerAll feeds answers and fails the test if one of them does not advance the wizard.
func (f *fixture) answerAll(t *testing.T, s *wizard.State, answers ...string) {
	t.Helper()
	for _, a := range answers {
		before := s.Field
		res := f.engine.Answer(context.Background(), s, a)
		require.True(t, res.Accepted, a)
		require.False(t, s.Transcript[len(s.Transcript)-1].Error, "answer %q to %s: %s",
			a, before, s.Transcript[len(s.Transcript)-1].Text)
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEngine_Answer_ignoresBlankInput(t *testing.T) {
	f := newFixture()
	s := wizard.NewState("w1")
	for _, input := range []string{"", "   ", "\t\n"} {
		res := f.engine.Answer(context.Background(), s, input)
		require.False(t, res.Accepted)
	}
	require.Equal(t, wizard.FieldName, s.Field)
	require.Len(t, s.Transcript, 1)
}

func TestEngine_Answer_invalidInputDoesNotAdvance(t *testing.T) {
	f := newFixture()
	s := wizard.NewState("w1")
	f.answerAll(t, s, "Jane Doe")

	res := f.engine.Answer(context.Background(), s, "17")
	require.True(t, res.Accepted)
	require.Equal(t, wizard.FieldAge, s.Field)
	require.Zero(t, s.Draft.Age)
	last := s.Transcript[len(s.Transcript)-1]
	require.True(t, last.Error)
	require.Equal(t, "Please provide a valid age.", last.Text)
	require.Equal(t, "17", s.Transcript[len(s.Transcript)-2].Text)
}

func TestEngine_Answer_rejectedCrimeDescription(t *testing.T) {
	tests := []struct {
		name    string
		verdict ai.Verdict
		err     error
	}{
		{name: "classified as no crime", verdict: ai.VerdictNo, err: nil},
		{name: "classifier failure", verdict: ai.VerdictError, err: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			s := wizard.NewState("w1")
			f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street")

			f.classifier.verdict, f.classifier.err = tt.verdict, tt.err
			res := f.engine.Answer(context.Background(), s, "Someone was rude to me")
			require.True(t, res.Accepted)
			require.Equal(t, wizard.FieldCrime, s.Field)
			last := s.Transcript[len(s.Transcript)-1]
			require.True(t, last.Error)
			require.Equal(t, "Please provide more specific information about the incident.", last.Text)

			f.classifier.verdict, f.classifier.err = ai.VerdictYes, nil
			f.answerAll(t, s, "Someone broke into my car and stole the radio")
			require.Equal(t, wizard.FieldHasProof, s.Field)
			require.Equal(t, 2, f.classifier.calls)
		})
	}
}

func TestEngine_noEvidenceSkipsUpload(t *testing.T) {
	f := newFixture()
	s := wizard.NewState("w1")
	f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street", "My car was stolen from the garage", "No")

	require.Equal(t, wizard.FieldTraits, s.Field)
	require.False(t, s.AwaitingFile)
	require.False(t, s.Draft.HasProof)
	require.Nil(t, s.Draft.Proof)
}

func TestEngine_evidenceRoutesThroughUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := wizard.NewState("w1")
	f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street", "My car was stolen from the garage", "yes")
	require.Equal(t, wizard.FieldProof, s.Field)
	require.True(t, s.AwaitingFile)
	require.True(t, s.Draft.HasProof)

	// Text is not accepted while a file is expected.
	res := f.engine.Answer(ctx, s, "here it comes")
	require.False(t, res.Accepted)

	t.Run("too large", func(t *testing.T) {
		large := append(bytes.Clone(pngHeader), make([]byte, wizard.MaxAttachmentSize)...)
		res, err := f.engine.AttachEvidence(ctx, s, models.Attachment{Filename: "big.png", ContentType: "", Data: large})
		require.ErrorIs(t, err, wizard.ErrAttachmentTooLarge)
		require.NotNil(t, res.Toast)
		require.Equal(t, "File size should be less than 10MB", res.Toast.Text)
		require.Nil(t, s.Draft.Proof)
		require.Equal(t, wizard.FieldProof, s.Field)
	})

	t.Run("not media", func(t *testing.T) {
		_, err := f.engine.AttachEvidence(ctx, s, models.Attachment{Filename: "notes.txt", ContentType: "", Data: []byte("hello")})
		require.ErrorIs(t, err, wizard.ErrUnsupportedAttachment)
		require.Nil(t, s.Draft.Proof)
	})

	res, err := f.engine.AttachEvidence(ctx, s, models.Attachment{Filename: "car.png", ContentType: "", Data: pngHeader})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, wizard.FieldTraits, s.Field)
	require.False(t, s.AwaitingFile)
	require.NotNil(t, s.Draft.Proof)
	require.Equal(t, "image/png", s.Draft.Proof.ContentType)
	require.Equal(t, "Uploaded: car.png", s.Transcript[len(s.Transcript)-2].Text)
}

func TestEngine_manualLocationSubmitsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := wizard.NewState("w1")
	f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street", "My car was stolen from the garage", "No",
		"Tall man in a red jacket", wizard.OptionManual)
	require.Equal(t, wizard.FieldLocation, s.Field)
	require.Equal(t, models.LocationTypeManual, s.Draft.LocationType)

	res := f.engine.Answer(ctx, s, "Central Park")
	require.True(t, res.Accepted)
	require.NotNil(t, res.Toast)
	require.Equal(t, wizard.ToastSuccess, res.Toast.Kind)
	require.True(t, s.Ended)
	require.Equal(t, "CW123456789", s.TrackingID)
	require.Len(t, f.submitter.drafts, 1)

	draft := f.submitter.drafts[0]
	require.Equal(t, "Jane Doe", draft.Name)
	require.Equal(t, 30, draft.Age)
	require.Equal(t, "Central Park", draft.Location)

	res = f.engine.Answer(ctx, s, "Another answer")
	require.False(t, res.Accepted)
	require.Len(t, f.submitter.drafts, 1)
}

func TestEngine_liveLocation(t *testing.T) {
	prepare := func(t *testing.T, f *fixture) *wizard.State {
		t.Helper()
		s := wizard.NewState("w1")
		f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street", "My car was stolen from the garage", "No",
			"Tall man in a red jacket")
		res := f.engine.Answer(context.Background(), s, "live location")
		require.True(t, res.NeedsLocation)
		require.True(t, s.AwaitingLocation)
		require.Equal(t, wizard.FieldLocationType, s.Field)
		require.False(t, f.engine.Answer(context.Background(), s, "Central Park").Accepted)
		return s
	}

	t.Run("resolved", func(t *testing.T) {
		f := newFixture()
		s := prepare(t, f)
		res := f.engine.ResolveLocation(context.Background(), s, location.Fix{Latitude: 40.78, Longitude: -73.96, Failure: ""})
		require.True(t, res.Accepted)
		require.True(t, s.Ended)
		require.Equal(t, "Central Park, New York", f.submitter.drafts[0].Location)
		require.Equal(t, models.LocationTypeLive, f.submitter.drafts[0].LocationType)
		texts := make([]string, 0, len(s.Transcript))
		for _, m := range s.Transcript {
			texts = append(texts, m.Text)
		}
		require.Contains(t, texts, "Using live location")
		require.Contains(t, texts, "Location received successfully!")
	})

	t.Run("unavailable falls back to manual entry", func(t *testing.T) {
		f := newFixture()
		f.resolver.err = location.ErrUnavailable
		s := prepare(t, f)
		res := f.engine.ResolveLocation(context.Background(), s,
			location.Fix{Latitude: 0, Longitude: 0, Failure: location.FailurePermissionDenied})
		require.True(t, res.Accepted)
		require.False(t, s.Ended)
		require.False(t, s.AwaitingLocation)
		require.Equal(t, wizard.FieldLocation, s.Field)
		require.Equal(t, "Unable to get location. Please enter it manually.", s.Transcript[len(s.Transcript)-1].Text)
		require.Empty(t, f.submitter.drafts)

		f.answerAll(t, s, "Elm Street corner")
		require.True(t, s.Ended)
		require.Equal(t, models.LocationTypeManual, f.submitter.drafts[0].LocationType)
	})
}

func TestEngine_submissionFailurePreservesDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.submitter.err = errors.New("backend down")
	s := wizard.NewState("w1")
	f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street", "My car was stolen from the garage", "No",
		"Tall man in a red jacket", wizard.OptionManual)

	res := f.engine.Answer(ctx, s, "Central Park")
	require.NotNil(t, res.Toast)
	require.Equal(t, wizard.ToastError, res.Toast.Kind)
	require.Equal(t, "Failed to submit report. Please try again.", res.Toast.Text)
	require.False(t, s.Ended)
	require.Equal(t, "Central Park", s.Draft.Location)
	require.Len(t, f.submitter.drafts, 1, "no automatic retry")

	f.submitter.err = nil
	res = f.engine.Answer(ctx, s, "Central Park")
	require.Equal(t, wizard.ToastSuccess, res.Toast.Kind)
	require.True(t, s.Ended)
}

func TestEngine_busyWizardIgnoresInput(t *testing.T) {
	f := newFixture()
	s := wizard.NewState("w1")
	s.Busy = true
	require.False(t, f.engine.Answer(context.Background(), s, "Jane Doe").Accepted)
	require.Len(t, s.Transcript, 1)
}

func TestEngine_optionStepsRejectOtherAnswers(t *testing.T) {
	f := newFixture()
	s := wizard.NewState("w1")
	f.answerAll(t, s, "Jane Doe", "30", "1234567890", "Elm Street", "My car was stolen from the garage")

	f.engine.Answer(context.Background(), s, "maybe")
	require.Equal(t, wizard.FieldHasProof, s.Field)
	require.True(t, s.Transcript[len(s.Transcript)-1].Error)
}
