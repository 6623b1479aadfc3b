// Package gateway - клиент REST API платежного шлюза (Asaas).
// Каждый метод принимает проверенную входную структуру и возвращает тело
// ответа шлюза без изменений. Повторов нет.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/metrics"
	"dealvalue_backend/internal/validator"
)

const DefaultBaseURL = "https://sandbox.asaas.com/api/v3/"

// Client is a client for the payment gateway API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	validator  *validator.Validator
	now        func() time.Time
}

type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (тесты, прокси)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock задает источник текущего времени для расчета дат списания
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a new gateway API client.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		validator:  validator.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response - успешный ответ шлюза как есть
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Map декодирует тело ответа в объект
func (r *Response) Map() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil, fmt.Errorf("gateway response is not a JSON object: %w", err)
	}
	return m, nil
}

// APIError - ответ шлюза с кодом не 2xx
type APIError struct {
	Operation  string
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	var parsed struct {
		Errors []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"errors"`
	}
	if json.Unmarshal(e.Body, &parsed) == nil && len(parsed.Errors) > 0 {
		return fmt.Sprintf("gateway %s failed with status %d: %s", e.Operation, e.StatusCode, parsed.Errors[0].Description)
	}
	return fmt.Sprintf("gateway %s failed with status %d", e.Operation, e.StatusCode)
}

// Details - тело ошибки шлюза для ответа клиенту
func (e *APIError) Details() any {
	var v any
	if err := json.Unmarshal(e.Body, &v); err != nil {
		return string(e.Body)
	}
	return v
}

// InputError - входные данные не прошли проверку до вызова шлюза
type InputError struct {
	Operation string
	Err       error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s input: %v", e.Operation, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

func (c *Client) validate(op string, in any) error {
	if err := c.validator.Validate(in); err != nil {
		return &InputError{Operation: op, Err: err}
	}
	return nil
}

// tomorrow - дата списания для разовых платежей
func (c *Client) tomorrow() string {
	return c.now().AddDate(0, 0, 1).Format("2006-01-02")
}

// do выполняет запрос к шлюзу и возвращает тело ответа без изменений
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) (resp *Response, err error) {
	start := time.Now()
	status := 0
	defer func() {
		metrics.GatewayCallsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
		metrics.GatewayCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		logger.GatewayLog(op, status, time.Since(start), err)
	}()

	endpoint := c.baseURL + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	c.setHeaders(req)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer httpResp.Body.Close()
	status = httpResp.StatusCode

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &APIError{Operation: op, StatusCode: httpResp.StatusCode, Body: json.RawMessage(raw)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: json.RawMessage(raw)}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("access_token", c.apiKey)
}
