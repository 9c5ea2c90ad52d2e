// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

type passwordResetEvent struct {
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var _ NotifierInterface = (*WebhookNotifier)(nil)

// WebhookNotifier POSTs reset tokens to an external delivery service,
// usually a mailer.
type WebhookNotifier struct {
	url    string
	client *http.Client

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (n *WebhookNotifier) NotifyPasswordReset(ctx context.Context, account *types.Account, rawToken string, expiresAt time.Time) error {
	ctx, span := n.tracer.Start(ctx, "session.WebhookNotifier.NotifyPasswordReset")
	defer span.End()

	body, err := json.Marshal(passwordResetEvent{
		AccountID: account.ID,
		Email:     account.Email,
		Token:     rawToken,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.setAvailability(0)
		return fmt.Errorf("failed to call reset webhook: %w", err)
	}
	defer resp.Body.Close()

	n.setAvailability(1)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("reset webhook responded with status %d", resp.StatusCode)
	}

	return nil
}

func (n *WebhookNotifier) setAvailability(v float64) {
	if err := n.monitor.SetDependencyAvailability(map[string]string{"component": "reset_webhook"}, v); err != nil {
		n.logger.Debugf("failed to set reset webhook availability: %v", err)
	}
}

func NewWebhookNotifier(url string, client *http.Client, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		client:  client,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// NoopNotifier drops reset tokens; used when no webhook is configured.
type NoopNotifier struct {
	logger logging.LoggerInterface
}

func (n *NoopNotifier) NotifyPasswordReset(_ context.Context, account *types.Account, _ string, _ time.Time) error {
	n.logger.Debugf("no reset notifier configured, dropping reset token for %s", account.ID)
	return nil
}

func NewNoopNotifier(logger logging.LoggerInterface) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}
