package wizard

import (
	"strings"
)

type action int

const (
	actionAdvance action = iota
	actionResolveLocation
	actionSubmit
)

// transition is one row of the branching table. The first row matching the current field and answer wins.
type transition struct {
	from      Field
	when      func(answer string) bool
	action    action
	to        Field
	awaitFile bool
}

func answerIs(option string) func(string) bool {
	return func(answer string) bool {
		return strings.EqualFold(strings.TrimSpace(answer), option)
	}
}

func always(string) bool { return true }

var transitions = []transition{ //nolint:gochecknoglobals // fixed configuration
	{from: FieldHasProof, when: answerIs(OptionNo), action: actionAdvance, to: FieldTraits, awaitFile: false},
	{from: FieldHasProof, when: always, action: actionAdvance, to: FieldProof, awaitFile: true},
	{from: FieldProof, when: always, action: actionAdvance, to: FieldTraits, awaitFile: false},
	{from: FieldLocationType, when: answerIs(OptionLiveLocation), action: actionResolveLocation, to: "", awaitFile: false},
	{from: FieldLocationType, when: always, action: actionAdvance, to: FieldLocation, awaitFile: false},
	{from: FieldLocation, when: always, action: actionSubmit, to: "", awaitFile: false},
}

// next resolves what follows answering field with answer. Fields without a table row advance sequentially.
func next(field Field, answer string) transition {
	for _, t := range transitions {
		if t.from == field && t.when(answer) {
			return t
		}
	}
	for i, s := range Steps[:len(Steps)-1] {
		if s.Field == field {
			return transition{from: field, when: always, action: actionAdvance, to: Steps[i+1].Field, awaitFile: false}
		}
	}
	return transition{from: field, when: always, action: actionSubmit, to: "", awaitFile: false}
}
