// Package line talks to the LINE Messaging API. It covers the three
// interactions the reservation service needs: verifying webhook
// signatures, replying to chat messages and resolving an access token
// to the LINE user behind it.
package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	replyEndpoint   = "https://api.line.me/v2/bot/message/reply"
	verifyEndpoint  = "https://api.line.me/oauth2/v2.1/verify"
	profileEndpoint = "https://api.line.me/v2/profile"
)

// Client carries the channel credentials and an HTTP client with a
// sane timeout. Endpoint URLs live on the struct so tests can point
// them at a local server.
type Client struct {
	channelSecret string
	channelToken  string
	http          *http.Client

	replyURL   string
	verifyURL  string
	profileURL string
}

// New returns a Client for the given channel. Empty credentials are
// allowed; calls made with them will fail and the webhook handler
// refuses requests up front.
func New(channelSecret, channelToken string) *Client {
	return &Client{
		channelSecret: channelSecret,
		channelToken:  channelToken,
		http:          &http.Client{Timeout: 10 * time.Second},
		replyURL:      replyEndpoint,
		verifyURL:     verifyEndpoint,
		profileURL:    profileEndpoint,
	}
}

// Configured reports whether channel credentials are present.
func (c *Client) Configured() bool {
	return c.channelSecret != "" && c.channelToken != ""
}

// SignatureValid checks the X-Line-Signature header against the raw
// request body: base64 of the body's HMAC-SHA256 under the channel
// secret, compared in constant time.
func (c *Client) SignatureValid(body []byte, signature string) bool {
	if c.channelSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// textMessage is the only message shape we send.
type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends text messages in response to a webhook event using its
// reply token. Reply tokens are single-use and expire quickly, so
// failures are reported but not retried.
func (c *Client) Reply(ctx context.Context, replyToken string, texts ...string) error {
	msgs := make([]textMessage, 0, len(texts))
	for _, t := range texts {
		msgs = append(msgs, textMessage{Type: "text", Text: t})
	}
	payload, err := json.Marshal(map[string]any{
		"replyToken": replyToken,
		"messages":   msgs,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.replyURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line reply: status %d: %s", resp.StatusCode, b)
	}
	return nil
}

// ResolveUser validates a LINE access token and returns the user id it
// belongs to. The token is first checked against the verify endpoint
// so expired or foreign-channel tokens are rejected before the profile
// call.
func (c *Client) ResolveUser(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL+"?access_token="+url.QueryEscape(accessToken), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("line verify: status %d", resp.StatusCode)
	}

	preq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return "", err
	}
	preq.Header.Set("Authorization", "Bearer "+accessToken)
	presp, err := c.http.Do(preq)
	if err != nil {
		return "", err
	}
	defer presp.Body.Close()
	if presp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("line profile: status %d", presp.StatusCode)
	}
	var profile struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(presp.Body).Decode(&profile); err != nil {
		return "", err
	}
	if profile.UserID == "" {
		return "", fmt.Errorf("line profile: empty userId")
	}
	return profile.UserID, nil
}
