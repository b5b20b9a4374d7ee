// Package push delivers notifications to a user's registered device through
// an HTTP push gateway.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

var ErrNoDevice = errors.New("no device registered")

type Message struct {
	Title string
	Body  string
}

// Sender delivers a message to a device token.
type Sender interface {
	Send(ctx context.Context, deviceToken string, msg Message) error
}

type gatewayRequest struct {
	To           string       `json:"to"`
	Notification notification `json:"notification"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Gateway posts FCM legacy-style JSON to an HTTP endpoint.
type Gateway struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func (g *Gateway) Send(ctx context.Context, deviceToken string, msg Message) error {
	if deviceToken == "" {
		return ErrNoDevice
	}
	body := gatewayRequest{
		To:           deviceToken,
		Notification: notification{Title: msg.Title, Body: msg.Body},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "key="+g.APIKey)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push gateway error: status %d", resp.StatusCode)
	}

	return nil
}

// LogSender only logs, for running without a gateway.
type LogSender struct{}

func (LogSender) Send(_ context.Context, deviceToken string, msg Message) error {
	if deviceToken == "" {
		return ErrNoDevice
	}
	log.Printf("push to %s: %s: %s", deviceToken, msg.Title, msg.Body)
	return nil
}

// New returns a Gateway when endpoint is set and a LogSender otherwise.
func New(endpoint, apiKey string) Sender {
	if endpoint == "" {
		return LogSender{}
	}
	return &Gateway{Endpoint: endpoint, APIKey: apiKey}
}
