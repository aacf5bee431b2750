// Package gateway talks to the hosted payment gateway: it creates checkout
// links and authenticates the payment notifications the gateway sends back.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Currency is the ISO code of every amount sent to the gateway.
const Currency = "PHP"

// Client creates payment links through the gateway's REST API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// LinkRequest describes the checkout link to create. Amount is in minor units.
type LinkRequest struct {
	Reference   string
	Amount      int64
	Description string
}

// PaymentLink is the gateway's answer to a link request.
type PaymentLink struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

type createLinkBody struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
}

// NewClient creates a gateway client. A zero timeout falls back to five seconds.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreatePaymentLink asks the gateway for a checkout link. The description
// always carries the booking reference marker so the settlement can be matched.
func (c *Client) CreatePaymentLink(ctx context.Context, req LinkRequest) (*PaymentLink, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("gateway client not configured")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment link amount must be positive")
	}

	description := strings.TrimSpace(req.Description)
	if _, ok := ExtractReference(description); !ok {
		marker := ReferenceMarker(req.Reference)
		if description == "" {
			description = marker
		} else {
			description = description + " " + marker
		}
	}

	payload, err := json.Marshal(createLinkBody{
		Amount:      req.Amount,
		Currency:    Currency,
		Description: description,
		Remarks:     req.Reference,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/links", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var link PaymentLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if link.CheckoutURL == "" {
		return nil, fmt.Errorf("gateway returned no checkout url")
	}
	return &link, nil
}
