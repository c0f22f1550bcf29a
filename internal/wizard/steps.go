// Package wizard drives the chat-style questionnaire that assembles a crime report.
package wizard

import (
	"github.com/myrjola/crimewatch/internal/validate"
)

// Field names the draft field a step fills in.
type Field string

const (
	FieldName         Field = "name"
	FieldAge          Field = "age"
	FieldMobile       Field = "mobile"
	FieldResidence    Field = "residence"
	FieldCrime        Field = "crime"
	FieldHasProof     Field = "hasProof"
	FieldProof        Field = "proof"
	FieldTraits       Field = "traits"
	FieldLocationType Field = "locationType"
	FieldLocation     Field = "location"
)

const (
	OptionYes          = "Yes"
	OptionNo           = "No"
	OptionLiveLocation = "Live Location"
	OptionManual       = "Enter Manually"
)

// Step is one prompt of the questionnaire.
type Step struct {
	Field   Field
	Prompt  string
	Rule    validate.Rule
	Options []string
	File    bool
}

// Steps is the fixed questionnaire in the order it is asked.
var Steps = []Step{ //nolint:gochecknoglobals // fixed configuration
	{
		Field:  FieldName,
		Prompt: "👋 Welcome to CrimeWatch. I'm here to help you report an incident. First, could you tell me your name?",
		Rule:   validate.RuleName,
	},
	{Field: FieldAge, Prompt: "Thank you. What is your age?", Rule: validate.RuleAge},
	{Field: FieldMobile, Prompt: "Please provide your contact number:", Rule: validate.RuleMobile},
	{Field: FieldResidence, Prompt: "What's your current residence?", Rule: validate.RuleLettersOnly},
	{
		Field:  FieldCrime,
		Prompt: "Please describe the incident you want to report in detail:",
		Rule:   validate.RuleLettersOnly,
	},
	{
		Field:   FieldHasProof,
		Prompt:  "Do you have any evidence (photos/videos) to support your report?",
		Options: []string{OptionYes, OptionNo},
	},
	{Field: FieldProof, Prompt: "Please upload your evidence:", File: true},
	{
		Field:  FieldTraits,
		Prompt: "Can you describe any identifying features of those involved?",
		Rule:   validate.RuleLettersOnly,
	},
	{
		Field:   FieldLocationType,
		Prompt:  "How would you like to provide the incident location?",
		Options: []string{OptionLiveLocation, OptionManual},
	},
	{
		Field:  FieldLocation,
		Prompt: "Please enter the exact location of the incident:",
		Rule:   validate.RuleLettersOnly,
	},
}

// StepFor returns the step filling field.
func StepFor(field Field) (Step, bool) {
	for _, s := range Steps {
		if s.Field == field {
			return s, true
		}
	}
	return Step{}, false //nolint:exhaustruct // not found
}

// Position is the 1-based index of field in Steps, used for the progress indicator.
func Position(field Field) int {
	for i, s := range Steps {
		if s.Field == field {
			return i + 1
		}
	}
	return 0
}
