package timeutil

import (
	"testing"
	"time"
)

func TestParseTimestampRFC3339(t *testing.T) {
	parsed, err := ParseTimestamp("2024-03-01T12:30:00Z")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected %v, got %v", want, parsed)
	}
}

func TestParseTimestampWithOffset(t *testing.T) {
	parsed, err := ParseTimestamp("2024-03-01T12:30:00+02:00")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	if !parsed.UTC().Equal(want) {
		t.Fatalf("expected %v, got %v", want, parsed.UTC())
	}
}

func TestParseTimestampNaiveAssumesUTC(t *testing.T) {
	parsed, err := ParseTimestamp("2024-03-01T12:30:00")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if parsed.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", parsed.Location())
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "   ", "not-a-date", "2024-13-99T99:99:99Z"} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("test", 2*60*60))
	if got := FormatTimestamp(ts); got != "2024-03-01T10:30:00Z" {
		t.Fatalf("expected UTC RFC3339 formatting, got %s", got)
	}
}
