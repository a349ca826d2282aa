package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Session struct {
	UserID int64
	Token  string
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client talks to the messaging API the way the web client does.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SignUp(ctx context.Context, email, password, role string) (Session, error) {
	register := map[string]string{
		"email":       email,
		"password":    password,
		"role":        role,
		"firstName":   "Load",
		"lastName":    "Test",
		"companyName": "Load Test Inc",
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", register, http.StatusCreated); err != nil {
		return Session{}, fmt.Errorf("register %s: %w", email, err)
	}

	data, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password}, http.StatusOK)
	if err != nil {
		return Session{}, fmt.Errorf("login %s: %w", email, err)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &login); err != nil {
		return Session{}, fmt.Errorf("failed to decode login: %w", err)
	}
	return Session{UserID: login.User.ID, Token: login.Token}, nil
}

func (c *Client) Send(ctx context.Context, from Session, to int64, text string) error {
	body := map[string]any{"receiverId": to, "message": text}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/messages/send", from.Token, body, http.StatusCreated)
	return err
}

func (c *Client) Conversations(ctx context.Context, s Session) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/messages/conversations", s.Token, nil, http.StatusOK)
	return err
}

func (c *Client) Conversation(ctx context.Context, s Session, partnerID int64) error {
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/messages/conversation/%d", partnerID), s.Token, nil, http.StatusOK)
	return err
}

func (c *Client) MarkRead(ctx context.Context, s Session, senderID int64) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/messages/read/%d", senderID), s.Token, nil, http.StatusOK)
	return err
}

func (c *Client) Unread(ctx context.Context, s Session) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/messages/unread", s.Token, nil, http.StatusOK)
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, want int) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Data, nil
}
