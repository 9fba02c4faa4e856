package classify

import (
	"errors"
	"testing"
)

func TestServiceBasic(t *testing.T) {
	p := Default()

	svc, err := p.Service("auth_2024-01-01.log")
	if err != nil {
		t.Fatal(err)
	}
	if svc != "auth" {
		t.Errorf("expected service 'auth', got %q", svc)
	}
}

func TestServiceGreedyBindsLastDate(t *testing.T) {
	p := Default()

	// Two date-like substrings: the greedy service group swallows the first.
	svc, err := p.Service("backup_2024-01-01_2024-02-02.log")
	if err != nil {
		t.Fatal(err)
	}
	if svc != "backup_2024-01-01" {
		t.Errorf("expected service bound to last date, got %q", svc)
	}
}

func TestServiceNoMatch(t *testing.T) {
	cases := []string{
		"auth.log",               // missing date suffix
		"auth_2024-01-01.txt",    // wrong extension
		"auth_2024-1-1.log",      // date groups not 4-2-2
		"_2024-01-01.log",        // empty service
		"auth_2024-01-01.log.gz", // trailing garbage
	}

	p := Default()
	for _, name := range cases {
		if _, err := p.Service(name); !errors.Is(err, ErrNoMatch) {
			t.Errorf("%q: expected ErrNoMatch, got %v", name, err)
		}
	}
}

func TestNewInvalidPattern(t *testing.T) {
	if _, err := New(`[invalid`, 1); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestNewGroupOutOfRange(t *testing.T) {
	if _, err := New(`^(\w+)\.log$`, 2); err == nil {
		t.Error("expected error for out-of-range capture group")
	}
}

func TestCustomPattern(t *testing.T) {
	// Alternate naming scheme: service after the date.
	p, err := New(`^[0-9]{8}-(.+)\.log$`, 1)
	if err != nil {
		t.Fatal(err)
	}

	svc, err := p.Service("20240101-billing.log")
	if err != nil {
		t.Fatal(err)
	}
	if svc != "billing" {
		t.Errorf("expected 'billing', got %q", svc)
	}
}
