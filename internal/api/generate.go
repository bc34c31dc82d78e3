package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/aichat/internal/errors"
	"github.com/diogo/aichat/internal/models"
)

// Response size limits
const (
	maxResponseBytes = 4 << 20
	maxErrorBytes    = 4096
)

// GenerateContent sends prompt as a single-turn request and returns the reply text.
// A well-formed response without text yields ErrNoContent.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apierrors.ErrEmptyInput
	}

	if c.IsClosed() {
		return "", fmt.Errorf("client is closed")
	}

	model := c.GetModel()
	endpoint := models.GenerateEndpoint(c.baseURL, model)

	payload, err := buildPayload(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	c.logger.Debug().
		Str("model", model.Name).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("generateContent answered")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return "", apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, upstreamMessage(errorBody, resp.StatusCode), string(errorBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransportError(ctx, endpoint, err)
	}

	return parseResponse(body)
}

// buildPayload creates the JSON body for a single prompt
func buildPayload(prompt string) ([]byte, error) {
	return json.Marshal(models.NewGenerateRequest(prompt))
}

// parseResponse extracts the first candidate's first text part
func parseResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response body is not valid JSON", "")
	}

	text := gjson.GetBytes(body, models.ReplyTextPath)
	if !text.Exists() || text.Type != gjson.String || text.String() == "" {
		return "", apierrors.ErrNoContent
	}

	return text.String(), nil
}

// upstreamMessage pulls error.message out of a Google API error body
func upstreamMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("generate content failed with status %d", status)
}

// classifyTransportError maps a failed round trip onto the error taxonomy
func classifyTransportError(ctx context.Context, endpoint string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || apierrors.IsTimeoutError(err) {
		return apierrors.NewTimeoutError(fmt.Sprintf("generate content: %v", err))
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("generate content: %w", ctx.Err())
	}
	return apierrors.NewNetworkError("generate content", endpoint, err)
}
