package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"parcel-tracking-service/internal/ports"
)

// WebhookSink delivers watch-list events as JSON POSTs to an organization's
// configured target URL. Delivery is best-effort with a short retry budget;
// a lost notification is acceptable, a stalled sweep is not.
type WebhookSink struct {
	session *http.Client
}

func NewWebhookSink() *WebhookSink {
	return &WebhookSink{session: &http.Client{Timeout: 10 * time.Second}}
}

type webhookEvent struct {
	Event       string `json:"event"`
	OrgID       string `json:"org_id"`
	Courier     string `json:"courier"`
	Label       string `json:"label"`
	TrackingID  string `json:"tracking_id"`
	TrackingURL string `json:"tracking_url,omitempty"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ObservedAt  string `json:"observed_at"`
	Delivered   bool   `json:"delivered"`
}

func (s *WebhookSink) PackageChanged(ctx context.Context, target string, ev ports.PackageChanged) error {
	return s.post(ctx, target, webhookEvent{
		Event:       "package_changed",
		OrgID:       ev.OrgID,
		Courier:     ev.Courier,
		Label:       ev.Label,
		TrackingID:  ev.TrackingID,
		TrackingURL: ev.TrackingURL,
		Location:    ev.Status.Location,
		Description: ev.Status.Description,
		ObservedAt:  ev.Status.ObservedAt,
		Delivered:   ev.Status.Delivered,
	})
}

func (s *WebhookSink) PackageRemoved(ctx context.Context, target string, ev ports.PackageRemoved) error {
	return s.post(ctx, target, webhookEvent{
		Event:       "package_removed",
		OrgID:       ev.OrgID,
		Courier:     ev.Courier,
		Label:       ev.Label,
		TrackingID:  ev.TrackingID,
		TrackingURL: ev.TrackingURL,
		Location:    ev.FinalStatus.Location,
		Description: ev.FinalStatus.Description,
		ObservedAt:  ev.FinalStatus.ObservedAt,
		Delivered:   ev.FinalStatus.Delivered,
	})
}

// post retries transient failures (network errors, 429/5xx) with exponential
// backoff while respecting context cancellation.
func (s *WebhookSink) post(ctx context.Context, target string, ev webhookEvent) error {
	if strings.TrimSpace(target) == "" {
		return errors.New("webhook sink: target must be non-empty")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("webhook sink: marshal event: %w", err)
	}

	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("webhook sink: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		code, err := s.do(req)
		if err == nil {
			return nil
		}
		lastErr = err

		retry := false
		switch code {
		case 429, 500, 502, 503, 504:
			retry = true
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return fmt.Errorf("webhook sink: post %s event: %w", ev.Event, lastErr)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return fmt.Errorf("webhook sink: post %s event: %w", ev.Event, lastErr)
}

func (s *WebhookSink) do(req *http.Request) (int, error) {
	resp, err := s.session.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, fmt.Errorf("Code %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
