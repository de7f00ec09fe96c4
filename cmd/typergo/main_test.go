package main

import (
	"reflect"
	"testing"
)

func TestParseMacros(t *testing.T) {
	got := parseMacros([]string{"debug", "arch=amd64"}, map[string]string{"arch": "arm64", "legacy": "1"})
	want := map[string]string{"debug": "", "arch": "amd64", "legacy": "1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseMacros_Empty(t *testing.T) {
	if got := parseMacros(nil, nil); got != nil {
		t.Fatalf("expected nil for no macros, got %v", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := firstNonEmpty("primary", "fallback"); got != "primary" {
		t.Fatalf("expected primary, got %q", got)
	}
}
