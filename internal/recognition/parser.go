package recognition

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EventKind int

const (
	// EventNone is a final that carried no speech. Callers suppress it.
	EventNone EventKind = iota
	EventPartial
	EventFinal
)

func (k EventKind) String() string {
	switch k {
	case EventPartial:
		return "partial"
	case EventFinal:
		return "final"
	default:
		return "none"
	}
}

type Event struct {
	Kind EventKind
	Text string
}

type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed recognition result %q: %v", truncate(e.Raw, 80), e.Err)
	}
	return fmt.Sprintf("malformed recognition result %q", truncate(e.Raw, 80))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type resultPayload struct {
	Text    *string `json:"text"`
	Partial *string `json:"partial"`
}

func Parse(raw string) (Event, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed[0] != '{' {
		return Event{}, &ParseError{Raw: raw, Err: fmt.Errorf("not a JSON object")}
	}
	var p resultPayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return Event{}, &ParseError{Raw: raw, Err: err}
	}
	if p.Partial != nil && p.Text == nil {
		return Event{Kind: EventPartial, Text: strings.TrimSpace(*p.Partial)}, nil
	}
	// A final without usable text means the engine heard no speech.
	if p.Text == nil {
		return Event{Kind: EventNone}, nil
	}
	text := strings.TrimSpace(*p.Text)
	if text == "" {
		return Event{Kind: EventNone}, nil
	}
	return Event{Kind: EventFinal, Text: text}, nil
}

// ParseFinal is Parse for payloads produced by Result or FinalResult. A partial
// shape in that position is treated as malformed.
func ParseFinal(raw string) (Event, error) {
	ev, err := Parse(raw)
	if err != nil {
		return Event{}, err
	}
	if ev.Kind == EventPartial {
		return Event{}, &ParseError{Raw: raw, Err: fmt.Errorf("expected final result, got partial")}
	}
	return ev, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
