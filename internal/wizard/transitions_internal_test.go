package wizard

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from       Field
		answer     string
		wantAction action
		wantTo     Field
	}{
		{from: FieldName, answer: "Jane", wantAction: actionAdvance, wantTo: FieldAge},
		{from: FieldCrime, answer: "theft", wantAction: actionAdvance, wantTo: FieldHasProof},
		{from: FieldHasProof, answer: "No", wantAction: actionAdvance, wantTo: FieldTraits},
		{from: FieldHasProof, answer: "no", wantAction: actionAdvance, wantTo: FieldTraits},
		{from: FieldHasProof, answer: "Yes", wantAction: actionAdvance, wantTo: FieldProof},
		{from: FieldProof, answer: "car.png", wantAction: actionAdvance, wantTo: FieldTraits},
		{from: FieldTraits, answer: "tall", wantAction: actionAdvance, wantTo: FieldLocationType},
		{from: FieldLocationType, answer: "Live Location", wantAction: actionResolveLocation, wantTo: ""},
		{from: FieldLocationType, answer: "Enter Manually", wantAction: actionAdvance, wantTo: FieldLocation},
		{from: FieldLocation, answer: "Central Park", wantAction: actionSubmit, wantTo: ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+tt.answer, func(t *testing.T) {
			got := next(tt.from, tt.answer)
			require.Equal(t, tt.wantAction, got.action)
			require.Equal(t, tt.wantTo, got.to)
		})
	}
}

// Every step must lead somewhere and every advance target must be a known step.
func TestNext_exhaustive(t *testing.T) {
	for _, step := range Steps {
		answers := append([]string{"anything"}, step.Options...)
		for _, answer := range answers {
			got := next(step.Field, answer)
			if got.action == actionAdvance {
				_, ok := StepFor(got.to)
				require.True(t, ok, "%s/%s leads to unknown field %q", step.Field, answer, got.to)
				require.NotEqual(t, step.Field, got.to)
			}
		}
	}
}
