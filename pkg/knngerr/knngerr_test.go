package knngerr

import (
	"errors"
	"strings"
	"testing"
)

func TestNewFormatsKindAndMessage(t *testing.T) {
	err := New(Config, "missing flag %s", "--dataset")
	if !strings.Contains(err.Error(), "config") || !strings.Contains(err.Error(), "--dataset") {
		t.Fatalf("Error() = %q, want it to mention kind and message", err.Error())
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(IO, cause, "opening dataset")

	if !errors.Is(err, cause) {
		t.Fatal("Wrap's error should unwrap to the original cause")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("Error() = %q, want it to include the cause", err.Error())
	}
}

func TestKindStringValues(t *testing.T) {
	cases := map[Kind]string{
		Config:   "config",
		IO:       "io",
		Internal: "internal",
		Domain:   "domain",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
