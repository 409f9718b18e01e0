// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers one alert message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// TextbeltSender posts to a textbelt-style SMS HTTP gateway.
type TextbeltSender struct {
	URL    string
	Key    string
	Client *http.Client
}

func NewTextbeltSender(gatewayURL, key string) *TextbeltSender {
	return &TextbeltSender{
		URL:    gatewayURL,
		Key:    key,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TextbeltSender) Send(ctx context.Context, phone, message string) error {
	form := url.Values{
		"phone":   {phone},
		"message": {message},
		"key":     {s.Key},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode sms gateway response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("sms gateway rejected message: %s", result.Error)
	}

	return nil
}

// LogSender is the no-gateway fallback: alerts land in the log instead of
// a phone. Used when SMS_GATEWAY_URL is unset.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, message string) error {
	slog.Info("sms gateway not configured, logging alert", "phone", phone, "message", message)
	return nil
}
