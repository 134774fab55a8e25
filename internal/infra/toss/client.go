package toss

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrConfirmRejected = errors.New("toss confirm rejected")

// Client calls the Toss Payments confirmation endpoint. The confirmed
// amount returned here is the only payment value the backend trusts.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

type ConfirmResult struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	OrderName   string `json:"orderName"`
	Method      string `json:"method"`
	TotalAmount int    `json:"totalAmount"`
}

// ProviderError carries the provider's own status code and error code.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("toss confirm failed: %s (%s)", e.Message, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return ErrConfirmRejected
}

func NewClient(baseURL, secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      httpClient,
	}
}

func (c *Client) Confirm(ctx context.Context, paymentKey, orderID string, amount int) (ConfirmResult, error) {
	if strings.TrimSpace(paymentKey) == "" || strings.TrimSpace(orderID) == "" || amount <= 0 {
		return ConfirmResult{}, fmt.Errorf("invalid confirm payload")
	}

	body, err := json.Marshal(map[string]any{
		"paymentKey": paymentKey,
		"orderId":    orderID,
		"amount":     amount,
	})
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("marshal confirm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments/confirm", bytes.NewReader(body))
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("build confirm request: %w", err)
	}
	// Toss basic auth is "secretKey:" base64-encoded, password left empty.
	token := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("call toss confirm: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var providerErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&providerErr)
		return ConfirmResult{}, &ProviderError{
			StatusCode: resp.StatusCode,
			Code:       providerErr.Code,
			Message:    providerErr.Message,
		}
	}

	var result ConfirmResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ConfirmResult{}, fmt.Errorf("decode confirm response: %w", err)
	}

	return result, nil
}
