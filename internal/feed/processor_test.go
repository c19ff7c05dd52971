package feed

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"release-watch-service/internal/gateway"
)

var watermark = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func feedBody(dates ...string) []byte {
	body := `{"releases":[`
	for i, d := range dates {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"date":%q,"name":"rel-%d"}`, d, i)
	}
	return []byte(body + `]}`)
}

func okResponse(body []byte) *gateway.Response {
	return &gateway.Response{Status: http.StatusOK, Body: body}
}

func stamp(offset time.Duration) string {
	return watermark.Add(offset).Format(time.RFC3339)
}

func TestNewSinceDispatchesMaximalFreshPrefix(t *testing.T) {
	p := NewProcessor(nil)
	resp := okResponse(feedBody(stamp(10*time.Second), stamp(5*time.Second), stamp(-5*time.Second)))

	fresh := p.NewSince(resp, watermark)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh releases, got %d", len(fresh))
	}
	if !fresh[0].Date.Equal(watermark.Add(10 * time.Second)) {
		t.Fatalf("expected newest release first, got %v", fresh[0].Date)
	}
	if !fresh[1].Date.Equal(watermark.Add(5 * time.Second)) {
		t.Fatalf("expected second release next, got %v", fresh[1].Date)
	}
}

func TestNewSinceStopsAtFirstStaleRecordEvenIfLaterOnesQualify(t *testing.T) {
	p := NewProcessor(nil)
	// A qualifying record after the first stale one must never dispatch.
	resp := okResponse(feedBody(stamp(10*time.Second), stamp(-5*time.Second), stamp(20*time.Second)))

	fresh := p.NewSince(resp, watermark)
	if len(fresh) != 1 {
		t.Fatalf("expected walk to stop at stale record, got %d releases", len(fresh))
	}
}

func TestNewSinceIncludesRecordAtWatermark(t *testing.T) {
	p := NewProcessor(nil)
	resp := okResponse(feedBody(stamp(0)))

	if fresh := p.NewSince(resp, watermark); len(fresh) != 1 {
		t.Fatalf("expected record dated exactly at watermark to dispatch, got %d", len(fresh))
	}
}

func TestNewSincePreservesRawFields(t *testing.T) {
	p := NewProcessor(nil)
	body := []byte(`{"releases":[{"date":"` + stamp(time.Minute) + `","name":"tool-1.2.3","size":42}]}`)

	fresh := p.NewSince(okResponse(body), watermark)
	if len(fresh) != 1 {
		t.Fatalf("expected 1 release, got %d", len(fresh))
	}
	r := fresh[0]
	if r.StringField("name") != "tool-1.2.3" {
		t.Fatalf("expected name field preserved, got %q", r.StringField("name"))
	}
	if _, ok := r.Field("size"); !ok {
		t.Fatal("expected size field preserved")
	}
	if _, ok := r.Field("date"); !ok {
		t.Fatal("expected raw date field preserved in payload")
	}
}

func TestNewSinceUnparsableDateStopsWalk(t *testing.T) {
	p := NewProcessor(nil)
	body := []byte(`{"releases":[` +
		`{"date":"` + stamp(10*time.Second) + `"},` +
		`{"date":"not-a-date"},` +
		`{"date":"` + stamp(5*time.Second) + `"}]}`)

	fresh := p.NewSince(okResponse(body), watermark)
	if len(fresh) != 1 {
		t.Fatalf("expected walk to stop at unparsable date, got %d releases", len(fresh))
	}
}

func TestNewSinceMissingDateStopsWalk(t *testing.T) {
	p := NewProcessor(nil)
	body := []byte(`{"releases":[{"name":"no-date"},{"date":"` + stamp(time.Minute) + `"}]}`)

	if fresh := p.NewSince(okResponse(body), watermark); len(fresh) != 0 {
		t.Fatalf("expected no releases, got %d", len(fresh))
	}
}

func TestNewSinceEmptyCycles(t *testing.T) {
	p := NewProcessor(nil)

	cases := []struct {
		name string
		resp *gateway.Response
	}{
		{"absent response", nil},
		{"non-200 status", &gateway.Response{Status: http.StatusBadGateway, Body: feedBody(stamp(time.Minute))}},
		{"invalid json", okResponse([]byte(`{not json`))},
		{"missing releases field", okResponse([]byte(`{"other":[]}`))},
		{"releases not an array", okResponse([]byte(`{"releases":"not-an-array"}`))},
		{"empty releases array", okResponse([]byte(`{"releases":[]}`))},
		{"null releases", okResponse([]byte(`{"releases":null}`))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if fresh := p.NewSince(tc.resp, watermark); len(fresh) != 0 {
				t.Fatalf("expected empty cycle, got %d releases", len(fresh))
			}
		})
	}
}
