// Package client is a Go client for the LiveRoom HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// APIError is a non-2xx answer. Message is the server's error field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("liveroom api: %d %s", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// Login obtains a token for uid and keeps it for later calls.
func (c *Client) Login(ctx context.Context, uid domain.UserID) error {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/token", map[string]any{"userId": uid}, &out); err != nil {
		return err
	}
	c.Token = out.Token
	return nil
}

// Register opens an account with no diamonds.
func (c *Client) Register(ctx context.Context, username string) (*domain.User, error) {
	var out struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users", map[string]any{"username": username}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Recharge buys diamonds for the logged-in user.
func (c *Client) Recharge(ctx context.Context, id domain.UserID, amount int64) (*domain.User, error) {
	var out struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/"+string(id)+"/recharge", map[string]any{"amount": amount}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) User(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+string(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Gifts(ctx context.Context) ([]domain.Gift, error) {
	var out []domain.Gift
	if err := c.do(ctx, http.MethodGet, "/api/gifts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StartStream(ctx context.Context, title string) (domain.RoomID, error) {
	var out struct {
		ID domain.RoomID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/streams", map[string]any{"title": title}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Join(ctx context.Context, room domain.RoomID) error {
	return c.do(ctx, http.MethodPost, "/api/streams/"+string(room)+"/join", nil, nil)
}

type GiftResult struct {
	Sender   *domain.User `json:"updatedSender"`
	Receiver *domain.User `json:"updatedReceiver"`
}

func (c *Client) SendGift(ctx context.Context, room domain.RoomID, from domain.UserID, gift string, quantity int64) (*GiftResult, error) {
	body := map[string]any{"fromUserId": from, "giftName": gift, "amount": quantity}
	var out GiftResult
	if err := c.do(ctx, http.MethodPost, "/api/streams/"+string(room)+"/gift", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
