package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	waitCacheKey = "cache:wait-minutes"
	waitCacheTTL = 15 * time.Second
)

// waitEstimator is the slice of the booking query the webhook needs.
type waitEstimator interface {
	EstimateWaitMinutes(ctx context.Context, now time.Time) (int, bool, error)
}

// lineGateway is the slice of the LINE client the webhook needs.
type lineGateway interface {
	Configured() bool
	SignatureValid(body []byte, signature string) bool
	Reply(ctx context.Context, replyToken string, texts ...string) error
}

// WebhookHandler answers LINE chat messages. The only conversation it
// holds is the wait-time question; everything else is acknowledged and
// ignored so LINE does not retry deliveries.
type WebhookHandler struct {
	line      lineGateway
	estimator waitEstimator
	rdb       *redis.Client // may be nil; caching is then skipped
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(line lineGateway, estimator waitEstimator, rdb *redis.Client) *WebhookHandler {
	if line == nil || estimator == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{line: line, estimator: estimator, rdb: rdb}
}

// webhookEvent is the subset of the LINE webhook payload we read.
type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Message    struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

// Handle processes POST /line/webhook. The signature covers the raw
// body, so the body is read before any JSON decoding.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if !h.line.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "line channel not configured"})
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	if !h.line.SignatureValid(body, c.Request().Header.Get("X-Line-Signature")) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad signature"})
	}
	var payload struct {
		Events []webhookEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := c.Request().Context()
	results := make([]string, 0, len(payload.Events))
	echoed := 0
	for _, ev := range payload.Events {
		if ev.Type != "message" || ev.Message.Type != "text" || !asksWaitTime(ev.Message.Text) {
			results = append(results, "ignored")
			continue
		}
		reply, err := h.waitReply(ctx)
		if err != nil {
			results = append(results, "estimate failed")
			continue
		}
		if err := h.line.Reply(ctx, ev.ReplyToken, reply); err != nil {
			results = append(results, "reply failed")
			continue
		}
		echoed++
		results = append(results, "replied")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"echoed":  echoed,
		"results": results,
	})
}

// asksWaitTime reports whether the message is asking how long the
// queue is.
func asksWaitTime(text string) bool {
	return strings.Contains(text, "待ち時間") ||
		strings.Contains(text, "待ち") ||
		strings.Contains(text, "あと何分")
}

// waitReply builds the reply text, serving repeated questions from a
// short-lived redis cache so a burst of messages does not hammer the
// database.
func (h *WebhookHandler) waitReply(ctx context.Context) (string, error) {
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, waitCacheKey).Result(); err == nil {
			return renderWait(cached), nil
		}
	}
	mins, ok, err := h.estimator.EstimateWaitMinutes(ctx, time.Now().UTC())
	if err != nil {
		return "", err
	}
	value := "none"
	if ok {
		value = strconv.Itoa(mins)
	}
	if h.rdb != nil {
		_ = h.rdb.Set(ctx, waitCacheKey, value, waitCacheTTL).Err()
	}
	return renderWait(value), nil
}

func renderWait(value string) string {
	if value == "none" {
		return "本日の予約枠はすべて埋まっています。"
	}
	return fmt.Sprintf("現在の待ち時間はおよそ%s分です。", value)
}
