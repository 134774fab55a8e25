package sms

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
)

// Client dispatches notification messages through a Naver Cloud SENS
// compatible API. Callers treat sends as fire-and-forget: failures are
// logged, never propagated to the user request.
type Client struct {
	baseURL    string
	serviceID  string
	accessKey  string
	secretKey  string
	fromNumber string
	http       *http.Client
	now        func() time.Time
}

func NewClient(baseURL, serviceID, accessKey, secretKey, fromNumber string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceID:  serviceID,
		accessKey:  accessKey,
		secretKey:  secretKey,
		fromNumber: fromNumber,
		http:       httpClient,
		now:        time.Now,
	}
}

func (c *Client) Send(ctx context.Context, smsType enums.SMSType, contentType enums.SMSContentType, to, content, subject string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("invalid sms payload")
	}

	path := fmt.Sprintf("/sms/v2/services/%s/messages", c.serviceID)
	body, err := json.Marshal(map[string]any{
		"type":        string(smsType),
		"contentType": string(contentType),
		"from":        c.fromNumber,
		"subject":     subject,
		"content":     content,
		"messages":    []map[string]string{{"to": to}},
	})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("x-ncp-apigw-timestamp", timestamp)
	req.Header.Set("x-ncp-iam-access-key", c.accessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", c.sign(http.MethodPost, path, timestamp))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call sms api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms api status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) sign(method, path, timestamp string) string {
	message := strings.Join([]string{method + " " + path, timestamp, c.accessKey}, "\n")
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
