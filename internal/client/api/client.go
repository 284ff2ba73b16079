// Package api is the HTTP client for the backend: auth, the tools
// collection, avatar presigning, and the live watch stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/modtoolkit/internal/client/models"
	"github.com/dmitrijs2005/modtoolkit/internal/common"
)

// Client talks to the backend API. It holds the token pair and transparently
// refreshes the access token once when a request comes back 401 with an
// expiry indication, mirroring what a long-lived app session needs.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *Client) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Authenticated reports whether the client currently holds a token pair.
func (c *Client) Authenticated() bool {
	access, _ := c.tokens()
	return access != ""
}

// UserID extracts the user id from the access token's subject claim. The
// signature is not checked here, the server does that on every request; the
// client only needs the id to scope its local state.
func (c *Client) UserID() (string, error) {
	access, _ := c.tokens()
	if access == "" {
		return "", ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return "", fmt.Errorf("parsing access token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("access token has no subject")
	}
	return claims.Subject, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes an authenticated request. On the first 401 it attempts a
// refresh-token rotation and replays the request once with the new access
// token; a second 401 surfaces as ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.doOnce(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		_, refresh := c.tokens()
		if refresh == "" {
			return ErrUnauthorized
		}
		if err := c.Refresh(ctx); err != nil {
			return err
		}

		resp, err = c.doOnce(ctx, method, path, body)
		if err != nil {
			return err
		}
	}

	return parseResponse(resp, out)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	access, _ := c.tokens()
	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func parseResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var ae apiError
	_ = json.NewDecoder(resp.Body).Decode(&ae)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		if ae.Error != "" {
			return fmt.Errorf("%w: %s", ErrValidation, ae.Error)
		}
		return ErrValidation
	default:
		if ae.Error != "" {
			return fmt.Errorf("server error: %s", ae.Error)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}
}

// --- auth ---

func (c *Client) Signup(ctx context.Context, email, password string) error {
	var pair tokenPair
	resp, err := c.doOnce(ctx, http.MethodPost, "/api/auth/signup", map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	if err := parseResponse(resp, &pair); err != nil {
		return err
	}
	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var pair tokenPair
	resp, err := c.doOnce(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	if err := parseResponse(resp, &pair); err != nil {
		return err
	}
	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

// Refresh rotates the refresh token and replaces the stored pair.
func (c *Client) Refresh(ctx context.Context) error {
	_, refresh := c.tokens()

	var pair tokenPair
	resp, err := c.doOnce(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}
	if err := parseResponse(resp, &pair); err != nil {
		return err
	}
	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

// Logout revokes the server-side refresh tokens and drops the local pair.
// The local pair is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setTokens("", "")
	return err
}

// --- tools ---

type ToolRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
}

func (c *Client) ListTools(ctx context.Context) ([]*models.Tool, error) {
	var out []*models.Tool
	if err := c.do(ctx, http.MethodGet, "/api/tools", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	var out models.Tool
	if err := c.do(ctx, http.MethodGet, "/api/tools/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTool(ctx context.Context, req *ToolRequest) (*models.Tool, error) {
	var out models.Tool
	if err := c.do(ctx, http.MethodPost, "/api/tools", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTool(ctx context.Context, id string, req *ToolRequest) error {
	return c.do(ctx, http.MethodPut, "/api/tools/"+id, req, nil)
}

func (c *Client) SetToolEnabled(ctx context.Context, id string, enabled bool) error {
	return c.do(ctx, http.MethodPatch, "/api/tools/"+id+"/enabled", map[string]bool{"enabled": enabled}, nil)
}

func (c *Client) DeleteTool(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tools/"+id, nil, nil)
}

// --- avatar ---

type AvatarUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (c *Client) AvatarUploadURL(ctx context.Context) (*AvatarUpload, error) {
	var out AvatarUpload
	if err := c.do(ctx, http.MethodPost, "/api/avatar/upload-url", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AvatarDownloadURL(ctx context.Context, key string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/avatar/download-url?key="+url.QueryEscape(key), nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
