package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("light rain", "snow", "rain") {
		t.Fatal("expected match on rain")
	}
	if HasAny("Light Rain", "rain ") {
		t.Fatal("unexpected match")
	}
	if HasAny("anything") {
		t.Fatal("no substrings must never match")
	}
}

func TestHasAnyFold(t *testing.T) {
	if !HasAnyFold("Thunderstorm", "THUNDER") {
		t.Fatal("expected case-insensitive match")
	}
	if HasAnyFold("Clear", "cloud") {
		t.Fatal("unexpected match")
	}
}
