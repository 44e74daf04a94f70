package translation

import (
	"context"
	"fmt"
)

type Request struct {
	Text       string
	SourceLang string
	TargetLang string
}

type Language struct {
	Code    string
	Name    string
	Targets []string
}

type Translator interface {
	// Translate returns "" without contacting the service when Text is empty.
	Translate(ctx context.Context, req Request) (string, error)
	Languages(ctx context.Context) ([]Language, error)
}

// ServiceUnavailableError covers unreachable endpoints and non-2xx answers.
// StatusCode is zero when no response was received.
type ServiceUnavailableError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceUnavailableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("translation service unavailable: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("translation service returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("translation service returned status %d", e.StatusCode)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

type ServiceResponseError struct {
	Reason string
	Err    error
}

func (e *ServiceResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid translation response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid translation response: %s", e.Reason)
}

func (e *ServiceResponseError) Unwrap() error {
	return e.Err
}

// SupportsPair reports whether langs advertises source -> target.
func SupportsPair(langs []Language, source, target string) bool {
	for _, l := range langs {
		if l.Code != source {
			continue
		}
		if len(l.Targets) == 0 {
			return true
		}
		for _, t := range l.Targets {
			if t == target {
				return true
			}
		}
	}
	return false
}
