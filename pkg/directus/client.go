// Package directus talks to the Directus REST API.
package directus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// Client is an unauthenticated handle on a Directus instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient uses a fresh
// http.Client with no timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type credentials struct {
	Email        string `json:"email,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Mode         string `json:"mode,omitempty"`
}

type authResponse struct {
	Data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Expires      int64  `json:"expires"` // milliseconds
	} `json:"data"`
}

// Login authenticates with email and password and returns a session whose
// requests carry the access token. Expired tokens are refreshed transparently.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.authenticate(ctx, "login", "/auth/login", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	src := oauth2.ReuseTokenSource(tok, &refreshSource{client: c, refreshToken: tok.RefreshToken})
	return c.newSession(src, tok), nil
}

// Anonymous returns a session using the public role.
func (c *Client) Anonymous() *Session {
	return &Session{baseURL: c.baseURL, http: c.httpClient}
}

func (c *Client) newSession(src oauth2.TokenSource, tok *oauth2.Token) *Session {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	hc := oauth2.NewClient(ctx, src)
	hc.Timeout = c.httpClient.Timeout
	return &Session{baseURL: c.baseURL, http: hc, token: tok}
}

func (c *Client) authenticate(ctx context.Context, op, path string, creds credentials) (*oauth2.Token, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if body.Data.AccessToken == "" {
		return nil, fmt.Errorf("%s: response carries no access token", op)
	}

	tok := &oauth2.Token{
		AccessToken:  body.Data.AccessToken,
		RefreshToken: body.Data.RefreshToken,
		TokenType:    "Bearer",
	}
	if body.Data.Expires > 0 {
		tok.Expiry = time.Now().Add(time.Duration(body.Data.Expires) * time.Millisecond)
	}
	return tok, nil
}

// refreshSource exchanges the refresh token for a new access token. Directus
// rotates refresh tokens, so the latest one is kept.
type refreshSource struct {
	client *Client

	mu           sync.Mutex
	refreshToken string
}

func (r *refreshSource) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refreshToken == "" {
		return nil, fmt.Errorf("refresh: no refresh token")
	}
	tok, err := r.client.authenticate(context.Background(), "refresh", "/auth/refresh",
		credentials{RefreshToken: r.refreshToken, Mode: "json"})
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken != "" {
		r.refreshToken = tok.RefreshToken
	}
	return tok, nil
}

// Session is an authenticated (or anonymous) connection to Directus.
// It is safe for concurrent use.
type Session struct {
	baseURL string
	http    *http.Client
	token   *oauth2.Token
}

// Authenticated reports whether the session was obtained through Login.
func (s *Session) Authenticated() bool {
	return s.token != nil
}

func (s *Session) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return s.http.Do(req)
}

func (s *Session) getJSON(ctx context.Context, op, path string, v interface{}) error {
	resp, err := s.get(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(op, resp); err != nil {
		return err
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
