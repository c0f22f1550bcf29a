package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// LocationType tells how the incident location was provided.
type LocationType string

const (
	LocationTypeLive   LocationType = "live"
	LocationTypeManual LocationType = "manual"
)

// Attachment is evidence uploaded during the wizard.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Draft is the report being assembled by the wizard one field at a time.
type Draft struct {
	Name         string       `json:"name,omitempty"`
	Age          int          `json:"age,omitempty"`
	Mobile       string       `json:"mobile,omitempty"`
	Residence    string       `json:"residence,omitempty"`
	Crime        string       `json:"crime,omitempty"`
	HasProof     bool         `json:"hasProof,omitempty"`
	Proof        *Attachment  `json:"proof,omitempty"`
	Traits       string       `json:"traits,omitempty"`
	LocationType LocationType `json:"locationType,omitempty"`
	Location     string       `json:"location,omitempty"`
}

// Report is the backend entity created from a submitted draft.
type Report struct {
	ID           string    `json:"_id"`
	UniqueID     string    `json:"uniqueId"`
	Name         string    `json:"name"`
	Age          Text      `json:"age"`
	Mobile       string    `json:"mobile"`
	Residence    string    `json:"residence"`
	Crime        string    `json:"crime"`
	HasProof     Flag      `json:"hasProof"`
	Proof        string    `json:"proof,omitempty"`
	Traits       string    `json:"traits"`
	LocationType string    `json:"locationType,omitempty"`
	Location     string    `json:"location"`
	Status       Status    `json:"status,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Text decodes from either a JSON string or a JSON number. Multipart forms make the backend store numbers as text.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err //nolint:wrapcheck // encoding/json adds context.
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err //nolint:wrapcheck // encoding/json adds context.
	}
	*t = Text(n.String())
	return nil
}

// Flag decodes from a JSON boolean or from the "Yes"/"No" and "true"/"false" strings the wizard submits.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var t Text
	if err := t.UnmarshalJSON(b); err == nil {
		switch strings.ToLower(string(t)) {
		case "yes", "true":
			*f = true
		default:
			*f = false
		}
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return err //nolint:wrapcheck // encoding/json adds context.
	}
	*f = Flag(v)
	return nil
}
