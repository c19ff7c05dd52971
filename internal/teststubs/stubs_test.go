package teststubs

import (
	"context"
	"net/http"
	"testing"

	"release-watch-service/internal/gateway"
)

func TestStubGatewayScriptsPerCall(t *testing.T) {
	s := &StubGateway{Respond: func(call int32) (*gateway.Response, error) {
		return &gateway.Response{Status: int(call)}, nil
	}}

	first, _ := s.Get(context.Background(), "u")
	second, _ := s.Get(context.Background(), "u")
	if first.Status != 1 || second.Status != 2 {
		t.Fatalf("expected per-call scripting, got %d then %d", first.Status, second.Status)
	}
	if s.Calls.Load() != 2 {
		t.Fatalf("expected 2 calls recorded, got %d", s.Calls.Load())
	}
}

func TestStubGatewayStaticResponse(t *testing.T) {
	s := &StubGateway{Resp: &gateway.Response{Status: http.StatusOK}}
	resp, err := s.Get(context.Background(), "u")
	if err != nil || resp.Status != http.StatusOK {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}
}

func TestRecordingSubscriberCopiesEvents(t *testing.T) {
	r := &RecordingSubscriber{}
	if r.ID() != "recording-subscriber" {
		t.Fatalf("expected default id, got %q", r.ID())
	}
	events := r.Events()
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
