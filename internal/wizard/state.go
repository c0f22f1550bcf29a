package wizard

import (
	"github.com/myrjola/crimewatch/internal/models"
)

type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one transcript entry. The transcript is append-only.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Error  bool   `json:"error,omitempty"`
}

// State is a wizard in progress. It is persisted between requests.
type State struct {
	ID         string
	Field      Field
	Draft      models.Draft
	Transcript []Message
	// AwaitingFile is set while the evidence upload is pending.
	AwaitingFile bool
	// AwaitingLocation is set while the browser is asked for its position.
	AwaitingLocation bool
	// Busy is set when another request is processing this wizard.
	Busy       bool
	Ended      bool
	TrackingID string
}

// NewState starts a wizard at the first step with its prompt in the transcript.
func NewState(id string) *State {
	first := Steps[0]
	return &State{ //nolint:exhaustruct // zero values are the initial state
		ID:         id,
		Field:      first.Field,
		Transcript: []Message{{Text: first.Prompt, Sender: SenderBot, Error: false}},
	}
}

// Step returns the step the wizard currently waits on.
func (s *State) Step() Step {
	step, _ := StepFor(s.Field)
	return step
}

// AcceptsText reports whether free text or option answers are currently processed.
func (s *State) AcceptsText() bool {
	return !s.Ended && !s.Busy && !s.AwaitingFile && !s.AwaitingLocation
}

func (s *State) say(text string) {
	s.Transcript = append(s.Transcript, Message{Text: text, Sender: SenderBot, Error: false})
}

func (s *State) sayError(text string) {
	s.Transcript = append(s.Transcript, Message{Text: text, Sender: SenderBot, Error: true})
}

func (s *State) hear(text string) {
	s.Transcript = append(s.Transcript, Message{Text: text, Sender: SenderUser, Error: false})
}
