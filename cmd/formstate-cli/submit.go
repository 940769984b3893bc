package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/prompt"
	"github.com/goliatone/go-formstate/pkg/servererrors"
)

const maxResponseBytes = 1 << 20

// submitter posts values to an HTTP endpoint. Validation responses (400 and
// 422) are mapped back onto the form so the session can ask again.
type submitter struct {
	form   *form.Form
	url    string
	client *http.Client
	logger *slog.Logger
}

func newSubmitter(f *form.Form, url string, timeout time.Duration, logger *slog.Logger) *submitter {
	return &submitter{
		form:   f,
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (s *submitter) Submit(ctx context.Context, values map[string]any) error {
	// Flattened object properties go back to their nested request shape.
	body, err := json.Marshal(model.NestValues(values))
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		s.logger.Info("submission accepted", slog.Int("status", resp.StatusCode))
		return nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		formMessages, err := servererrors.ApplyJSON(s.form, payload)
		if err != nil {
			return fmt.Errorf("submit: status %d: %w", resp.StatusCode, err)
		}
		for _, msg := range formMessages {
			s.logger.Warn("submission rejected", slog.String("message", msg))
		}
		return fmt.Errorf("status %d: %w", resp.StatusCode, prompt.ErrRejected)
	default:
		return fmt.Errorf("submit: unexpected status %d", resp.StatusCode)
	}
}
