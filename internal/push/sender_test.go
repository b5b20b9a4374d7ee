package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGatewaySend(t *testing.T) {
	var got gatewayRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	g := New(srv.URL, "k1")
	if err := g.Send(context.Background(), "device-1", Message{Title: "Hi", Body: "Test"}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if got.To != "device-1" || got.Notification.Title != "Hi" {
		t.Errorf("unexpected request %+v", got)
	}
	if auth != "key=k1" {
		t.Errorf("unexpected auth header %q", auth)
	}
}

func TestGatewaySend_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := &Gateway{Endpoint: srv.URL}
	if err := g.Send(context.Background(), "d", Message{}); err == nil {
		t.Error("expected gateway error")
	}
	if err := g.Send(context.Background(), "", Message{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}

func TestNew_WithoutEndpointLogs(t *testing.T) {
	if _, ok := New("", "").(LogSender); !ok {
		t.Error("expected LogSender without an endpoint")
	}
}
