// Package erp contains the HTTP clients for the upstream ERP services
// the terminal depends on: inventory (catalog), CRM (customers) and
// finance (exchange rate, invoicing, cash close).
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed collaborator response size (5MB)
const maxResponseSize = 5 * 1024 * 1024

// Config holds the connection settings shared by all ERP clients
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// client is the shared HTTP plumbing for the collaborator adapters
type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func newClient(cfg Config, logger *zap.Logger) client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// getJSON performs a GET and decodes the response body into out
func (c client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

// postJSON performs a POST with a JSON body and decodes the response into out
func (c client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.NewDomainError("COLLABORATOR_FAILURE", err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return shared.NewDomainError("COLLABORATOR_FAILURE", "read response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.asDomainError(req, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return shared.NewDomainError("COLLABORATOR_FAILURE", "decode response: "+err.Error())
	}
	return nil
}

// asDomainError surfaces the collaborator's machine-readable detail.
// Both the FastAPI {"detail": ...} shape and the {"error": {"message": ...}}
// envelope are understood.
func (c client) asDomainError(req *http.Request, status int, body []byte) error {
	detail := extractDetail(body)
	if detail == "" {
		detail = fmt.Sprintf("upstream returned status %d", status)
	}

	c.logger.Warn("collaborator request failed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", status),
		zap.String("detail", detail))

	if status == http.StatusNotFound {
		return shared.NewDomainError("NOT_FOUND", detail)
	}
	if status >= 400 && status < 500 {
		return shared.NewDomainError("INVALID_INPUT", detail)
	}
	return shared.NewDomainError("COLLABORATOR_FAILURE", detail)
}

func extractDetail(body []byte) string {
	var fastapi struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &fastapi); err == nil && fastapi.Detail != "" {
		return fastapi.Detail
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return ""
}
