// Package client is a small JSON client for the tutorsite auth API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/dto"
)

// DefaultServer is used when no server URL is configured.
const DefaultServer = "http://localhost:8080"

// APIError is the error envelope returned by the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client talks to one tutorsite server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New 创建客户端，server 为空时使用 DefaultServer
func New(server string, httpClient *http.Client) *Client {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		server = DefaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: server, http: httpClient}
}

// BaseURL returns the server the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates an account. A nil role lets the server pick its default.
func (c *Client) Register(ctx context.Context, name, email, password string, role *common.Role) (dto.UserSummary, error) {
	var resp dto.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", dto.AuthRegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}, &resp)
	return resp.User, err
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (dto.SessionUser, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", dto.AuthLoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	return resp.User, err
}

// Me loads the profile that token belongs to.
func (c *Client) Me(ctx context.Context, token string) (dto.UserSummary, error) {
	var resp dto.UserDetailResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &resp)
	return resp.User, err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
