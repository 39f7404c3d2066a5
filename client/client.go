// Package client is a Go client for the Coursedesk API. It covers the
// public storefront surface plus the token-authenticated admin surface,
// including the enrollment and checkout orchestration a frontend
// performs.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Session-level errors, distinguished so callers can react to an
// expired token (re-login) differently from a permission problem.
var (
	ErrUnauthorized = errors.New("unauthorized: token missing, invalid, or expired")
	ErrForbidden    = errors.New("forbidden: insufficient permission")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// errorEnvelope is the server's {success:false, message} error shape.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Session is a connection to a Coursedesk server. It owns the session
// token: Login stores the token it receives, and every subsequent
// request carries it. A Session without a token can still use the
// public storefront endpoints.
type Session struct {
	client *resty.Client
	token  string
}

// NewSession creates a Session against the given base URL
// (e.g. "http://localhost:8080").
func NewSession(baseURL string) *Session {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if r == nil {
			return false
		}
		code := r.StatusCode()
		return code >= 500 || code == 429 || code == 408
	})

	return &Session{client: client}
}

// Token returns the current session token, empty if not logged in.
func (s *Session) Token() string {
	return s.token
}

// SetToken installs a previously obtained token, e.g. one restored from
// storage.
func (s *Session) SetToken(token string) {
	s.token = token
}

// Admin mirrors the admin object returned by the auth endpoints.
type Admin struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"is_active"`
}

type sessionResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	Admin     *Admin `json:"admin"`
}

// Login authenticates against the server and stores the returned token
// on the session.
func (s *Session) Login(ctx context.Context, email, password string) (*Admin, error) {
	var result sessionResponse
	err := s.do(ctx, "POST", "/api/v1/admin-auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	s.token = result.Token
	return result.Admin, nil
}

// Verify checks the stored token against the server.
func (s *Session) Verify(ctx context.Context) (*Admin, error) {
	var result struct {
		Success bool   `json:"success"`
		Admin   *Admin `json:"admin"`
	}
	if err := s.do(ctx, "GET", "/api/v1/admin-auth/verify", nil, &result); err != nil {
		return nil, err
	}
	return result.Admin, nil
}

// Logout tells the server goodbye and drops the stored token. Tokens
// are stateless, so dropping it locally is what actually ends the
// session.
func (s *Session) Logout(ctx context.Context) error {
	err := s.do(ctx, "POST", "/api/v1/admin-auth/logout", nil, nil)
	s.token = ""
	return err
}

// Setup bootstraps the first admin account and stores the issued token.
func (s *Session) Setup(ctx context.Context, username, email, password string) (*Admin, error) {
	var result sessionResponse
	err := s.do(ctx, "POST", "/api/v1/admin-auth/setup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	s.token = result.Token
	return result.Admin, nil
}

// do performs a request, attaching the session token when present, and
// maps error responses to typed errors.
func (s *Session) do(ctx context.Context, method, path string, body, result interface{}) error {
	req := s.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if s.token != "" {
		req.SetHeader("Authorization", "Bearer "+s.token)
	}
	req.SetError(&errorEnvelope{})

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case "GET":
		resp, err = req.Get(path)
	case "POST":
		resp, err = req.Post(path)
	case "PUT":
		resp, err = req.Put(path)
	case "DELETE":
		resp, err = req.Delete(path)
	default:
		return fmt.Errorf("unsupported HTTP method: %s", method)
	}
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}

	if resp.StatusCode() < 400 {
		return nil
	}

	message := resp.String()
	if env, ok := resp.Error().(*errorEnvelope); ok && env != nil && env.Message != "" {
		message = env.Message
	}

	switch resp.StatusCode() {
	case 401:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case 403:
		return fmt.Errorf("%w: %s", ErrForbidden, message)
	default:
		return &APIError{Status: resp.StatusCode(), Message: message}
	}
}
