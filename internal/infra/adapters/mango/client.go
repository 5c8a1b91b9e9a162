package mango

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mangopay-card-gateway/internal/domain/model"
	"mangopay-card-gateway/internal/domain/ports/adapter"
	"mangopay-card-gateway/internal/infra/metrics"
)

var _ adapter.CardRegistrationAPI = (*Client)(nil)

// Client talks to the MangoPay card registration REST API (v2.01) using
// basic auth with the client id and passphrase.
type Client struct {
	clientID string
	apiKey   string
	baseURL  string
	client   *http.Client
}

func NewClient(clientID, apiKey string, sandbox bool) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("mango client id empty")
	}
	if apiKey == "" {
		return nil, errors.New("mango api key empty")
	}
	base := "https://api.mangopay.com"
	if sandbox {
		base = "https://api.sandbox.mangopay.com"
	}
	return &Client{
		clientID: clientID,
		apiKey:   apiKey,
		baseURL:  fmt.Sprintf("%s/v2.01/%s", base, clientID),
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// SetBaseURL points the client at a different API root (tests, mocks).
func (c *Client) SetBaseURL(base string) {
	c.baseURL = fmt.Sprintf("%s/v2.01/%s", base, c.clientID)
}

func (c *Client) Create(ctx context.Context, req adapter.CardRegistrationCreate) (*model.CardRegistration, error) {
	payload := map[string]string{
		"UserId":   req.UserID,
		"Currency": req.Currency,
		"CardType": req.CardType,
	}
	var out model.CardRegistration
	if err := c.do(ctx, "create", http.MethodPost, "/cardregistrations", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.CardRegistration, error) {
	var out model.CardRegistration
	if err := c.do(ctx, "get", http.MethodGet, "/cardregistrations/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, reg *model.CardRegistration) (*model.CardRegistration, error) {
	payload := map[string]string{
		"RegistrationData": reg.RegistrationData,
	}
	var out model.CardRegistration
	if err := c.do(ctx, "update", http.MethodPut, "/cardregistrations/"+reg.ID, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}, out *model.CardRegistration) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, payload, out)
	metrics.ObserveMangoRequest(op, err == nil, time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload interface{}, out *model.CardRegistration) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mango api %s %s: http %d: %s", method, path, resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
