package config

import (
	"errors"
	"testing"
)

type fakeSettings map[string]string

func (f fakeSettings) GetSetting(key string) (string, error) {
	return f[key], nil
}

type failingSettings struct{}

func (failingSettings) GetSetting(string) (string, error) {
	return "", errors.New("database is locked")
}

func TestLoaderTypedGetters(t *testing.T) {
	l := NewLoader(fakeSettings{
		"log.max_size_mb":      "25",
		"log.compress":         "false",
		"maintenance.schedule": "@hourly",
		"bad.int":              "lots",
	})

	if got := l.Int("log.max_size_mb", 50); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := l.Int("bad.int", 7); got != 7 {
		t.Fatalf("expected default for unparsable int, got %d", got)
	}
	if got := l.Int("missing", 3); got != 3 {
		t.Fatalf("expected default for missing int, got %d", got)
	}
	if l.Bool("log.compress", true) {
		t.Fatal("expected explicit false to override default")
	}
	if !l.Bool("missing", true) {
		t.Fatal("expected default true for missing bool")
	}
	if got := l.String("maintenance.schedule", "@daily"); got != "@hourly" {
		t.Fatalf("expected @hourly, got %q", got)
	}
}

func TestLoaderFallsBackOnStoreError(t *testing.T) {
	l := NewLoader(failingSettings{})

	if got := l.String("maintenance.schedule", "@daily"); got != "@daily" {
		t.Fatalf("expected default on error, got %q", got)
	}
	if got := l.Int("log.max_backups", 5); got != 5 {
		t.Fatalf("expected default on error, got %d", got)
	}
}
