// Package api is a thin HTTP client for the agent-prompt server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

const (
	LoginPath          = "/api/login"
	PromptsPath        = "/api/agent-prompts"
	StaticDocumentPath = "/agents/agent-prompts.json"
	EventsPath         = "/api/ws"

	// maxBody bounds every response read; prompt documents are small.
	maxBody = 4 << 20
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Reason     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

type Client struct {
	baseURL string
	client  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New returns a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges the account credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req domainauth.LoginRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LoginPath, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out loginResponse
	status, err := c.do(httpReq, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || !out.Success || out.Token == "" {
		return "", &StatusError{StatusCode: status, Message: out.Message}
	}
	return out.Token, nil
}

// GetAgentPrompt fetches one record through the authenticated API.
func (c *Client) GetAgentPrompt(ctx context.Context, token string, id domainprompt.AgentID) (domainprompt.Record, error) {
	var rec domainprompt.Record
	if err := c.getJSON(ctx, PromptsPath+"/"+url.PathEscape(string(id)), token, &rec); err != nil {
		return domainprompt.Record{}, err
	}
	return rec, nil
}

// GetStaticDocument fetches the unauthenticated copy of the prompt document.
func (c *Client) GetStaticDocument(ctx context.Context) (domainprompt.Document, error) {
	var doc domainprompt.Document
	if err := c.getJSON(ctx, StaticDocumentPath, "", &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("static document is empty")
	}
	return doc, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	_, err = c.do(httpReq, out)
	return err
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// do sends req and decodes a 2xx body into out. Non-2xx bodies become a
// StatusError, except for the login endpoint whose body always decodes into out.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 && req.URL.Path != LoginPath {
		se := &StatusError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			se.Code, se.Reason, se.Message = eb.Code, eb.Reason, eb.Error
		}
		return resp.StatusCode, se
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.StatusCode, nil
}
