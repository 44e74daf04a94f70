package translation

import (
	"errors"
	"net"
	"testing"
)

func TestSupportsPair(t *testing.T) {
	langs := []Language{
		{Code: "en", Targets: []string{"es", "pt"}},
		{Code: "pt", Targets: []string{"en"}},
		{Code: "fr"},
	}
	cases := []struct {
		source, target string
		want           bool
	}{
		{"en", "es", true},
		{"en", "de", false},
		{"pt", "en", true},
		{"fr", "en", true},
		{"de", "en", false},
	}
	for _, c := range cases {
		if got := SupportsPair(langs, c.source, c.target); got != c.want {
			t.Fatalf("SupportsPair(%s, %s) = %v, want %v", c.source, c.target, got, c.want)
		}
	}
}

func TestServiceUnavailableError_Messages(t *testing.T) {
	cause := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	err := &ServiceUnavailableError{Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected unwrap to transport cause")
	}
	if err.Error() != "translation service unavailable: dial: connection refused" {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	status := &ServiceUnavailableError{StatusCode: 503, Body: "busy"}
	if status.Error() != "translation service returned status 503: busy" {
		t.Fatalf("unexpected message: %s", status.Error())
	}
}

func TestServiceResponseError_Message(t *testing.T) {
	err := &ServiceResponseError{Reason: "missing translatedText"}
	if err.Error() != "invalid translation response: missing translatedText" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
