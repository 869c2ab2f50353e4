// Package client talks to the devnotes API over HTTP and reports failures
// with the error types of package notes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"devnotes/internal/notes"
)

var (
	_ notes.PersistenceClient = (*Client)(nil)
	_ notes.AuthClient        = (*Client)(nil)
)

var errNoToken = errors.New("no stored token")

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// Client is a client for the devnotes API.
type Client struct {
	BaseURL string
	tokens  TokenSource
	client  *http.Client
}

// New creates a new API client. baseURL includes the /api prefix.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: timeout},
	}
}

// LoginResult is a fresh session token and its user.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      notes.User `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) (notes.User, error) {
	payload := map[string]string{"username": username, "email": email, "password": password}
	var resp struct {
		User notes.User `json:"user"`
	}
	err := c.do(ctx, request{op: "register", method: http.MethodPost, path: "/auth/register", body: payload, out: &resp})
	return resp.User, err
}

// Login exchanges credentials for a token. Storing the token is the
// caller's job.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp LoginResult
	err := c.do(ctx, request{op: "login", method: http.MethodPost, path: "/auth/login", body: payload, out: &resp})
	return resp, err
}

// CurrentUser returns the user the stored token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (notes.User, error) {
	var user notes.User
	err := c.do(ctx, request{op: "current user", method: http.MethodGet, path: "/auth/me", auth: true, out: &user})
	return user, err
}

// Logout is a no-op on the server: tokens are stateless and simply
// forgotten by the client.
func (c *Client) Logout(ctx context.Context) error {
	return nil
}

// UpdateProfile changes the username.
func (c *Client) UpdateProfile(ctx context.Context, username string) (notes.User, error) {
	var user notes.User
	err := c.do(ctx, request{
		op: "update profile", method: http.MethodPut, path: "/auth/profile", auth: true,
		body: map[string]string{"username": username}, out: &user,
	})
	return user, err
}

// ChangePassword replaces the password after the server checks current.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, request{
		op: "change password", method: http.MethodPut, path: "/auth/password", auth: true,
		body: map[string]string{"currentPassword": current, "newPassword": next},
	})
}

// ListNotes returns the notes of the token's user. userID is implied by
// the token.
func (c *Client) ListNotes(ctx context.Context, userID string) ([]notes.Note, error) {
	var list []notes.Note
	err := c.do(ctx, request{op: "list notes", method: http.MethodGet, path: "/notes", auth: true, out: &list})
	return list, err
}

// CreateNote stores draft for the token's user.
func (c *Client) CreateNote(ctx context.Context, userID string, draft notes.Draft) (notes.Note, error) {
	var note notes.Note
	err := c.do(ctx, request{op: "create note", method: http.MethodPost, path: "/notes", auth: true, body: draft, out: &note})
	return note, err
}

// UpdateNote replaces the editable fields of note id.
func (c *Client) UpdateNote(ctx context.Context, id string, draft notes.Draft) (notes.Note, error) {
	var note notes.Note
	err := c.do(ctx, request{
		op: "update note", method: http.MethodPut, path: "/notes/" + url.PathEscape(id), auth: true,
		body: draft, out: &note, noteID: id,
	})
	return note, err
}

// DeleteNote removes note id.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op: "delete note", method: http.MethodDelete, path: "/notes/" + url.PathEscape(id), auth: true,
		noteID: id,
	})
}

type request struct {
	op     string
	method string
	path   string
	auth   bool
	body   any
	out    any
	// noteID names the note a 404 refers to.
	noteID string
}

func (c *Client) do(ctx context.Context, r request) error {
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if r.auth {
		token := c.tokens.Token()
		if token == "" {
			return &notes.AuthError{Err: errNoToken}
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &notes.TransportError{Op: r.op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return statusError(r, resp)
	}

	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return &notes.TransportError{Op: r.op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// statusError maps a non-2xx response onto the notes error taxonomy.
func statusError(r request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if json.Unmarshal(raw, &eb) != nil || eb.Error == "" {
		eb.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &notes.AuthError{Err: errors.New(eb.Error)}
	case http.StatusBadRequest, http.StatusConflict:
		return &notes.ValidationError{Field: eb.Field, Message: eb.Error}
	case http.StatusNotFound:
		if r.noteID != "" {
			return &notes.NotFoundError{ID: r.noteID}
		}
	}
	return &notes.TransportError{Op: r.op, Err: fmt.Errorf("bad status %d: %s", resp.StatusCode, eb.Error)}
}
