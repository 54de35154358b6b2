// Package remote talks to the hosted authentication service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	signInPath = "/v1/api/auth/user/sign-in"
	signUpPath = "/v1/api/auth/user/sign-up"

	// StatusOK is the envelope status the service uses for success.
	StatusOK = 200

	// DefaultBaseURL is the hosted service the app was built against.
	DefaultBaseURL = "https://first-mern-app-api.onrender.com"

	SignInFallbackMessage = "An error occurred. Please try again."
	SignUpFallbackMessage = "An error occurred during sign up."

	maxResponseBytes = 1 << 20
)

// Status classifies a call result.
type Status int

const (
	Authenticated Status = iota + 1
	Rejected
	Unreachable
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Result is the interpreted response of one call. Message is the text to
// show the user when Status is not Authenticated. Err carries the transport
// or decode failure behind an Unreachable result.
type Result struct {
	Status  Status
	Message string
	Err     error
}

// SignUpRequest is the sign-up body.
type SignUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Client issues single-attempt requests; it never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. A zero timeout leaves requests
// bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SignIn posts credentials to the sign-in endpoint.
func (c *Client) SignIn(ctx context.Context, email, password string) Result {
	return c.post(ctx, signInPath, signInRequest{Email: email, Password: password}, SignInFallbackMessage)
}

// SignUp posts a new account to the sign-up endpoint. It does not persist
// anything locally.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) Result {
	return c.post(ctx, signUpPath, req, SignUpFallbackMessage)
}

func (c *Client) post(ctx context.Context, path string, payload any, fallback string) Result {
	unreachable := func(err error) Result {
		return Result{Status: Unreachable, Message: fallback, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return unreachable(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return unreachable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return unreachable(fmt.Errorf("post %s: %w", path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return unreachable(fmt.Errorf("read response: %w", err))
	}

	// The envelope status decides the outcome, whatever the HTTP status.
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return unreachable(fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err))
	}
	if env.Status == 0 {
		return unreachable(fmt.Errorf("response without status (http %d)", resp.StatusCode))
	}
	if env.Status == StatusOK {
		return Result{Status: Authenticated}
	}

	msg := env.Message
	if msg == "" {
		msg = fallback
	}
	return Result{Status: Rejected, Message: msg}
}
