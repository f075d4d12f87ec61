package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	configured bool
	secret     string
	replies    []string
	replyErr   error
}

func (g *stubGateway) Configured() bool { return g.configured }

func (g *stubGateway) SignatureValid(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(body)
	return signature == base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (g *stubGateway) Reply(ctx context.Context, replyToken string, texts ...string) error {
	if g.replyErr != nil {
		return g.replyErr
	}
	g.replies = append(g.replies, texts...)
	return nil
}

type stubEstimator struct {
	mins int
	ok   bool
	err  error
}

func (e stubEstimator) EstimateWaitMinutes(ctx context.Context, now time.Time) (int, bool, error) {
	return e.mins, e.ok, e.err
}

func webhookRequest(t *testing.T, gw *stubGateway, body string, signed bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/line/webhook", strings.NewReader(body))
	if signed {
		mac := hmac.New(sha256.New, []byte(gw.secret))
		mac.Write([]byte(body))
		req.Header.Set("X-Line-Signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	} else {
		req.Header.Set("X-Line-Signature", "bogus")
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestWebhook_NotConfigured(t *testing.T) {
	h := NewWebhookHandler(&stubGateway{}, stubEstimator{}, nil)
	c, rec := webhookRequest(t, &stubGateway{secret: "s"}, `{}`, false)
	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebhook_BadSignature(t *testing.T) {
	gw := &stubGateway{configured: true, secret: "s"}
	h := NewWebhookHandler(gw, stubEstimator{}, nil)
	c, rec := webhookRequest(t, gw, `{"events":[]}`, false)
	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad signature")
}

func TestWebhook_RepliesWithWaitEstimate(t *testing.T) {
	gw := &stubGateway{configured: true, secret: "s"}
	h := NewWebhookHandler(gw, stubEstimator{mins: 12, ok: true}, nil)
	body := `{"events":[{"type":"message","replyToken":"rt","message":{"type":"text","text":"待ち時間は？"}}]}`
	c, rec := webhookRequest(t, gw, body, true)

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, gw.replies, 1)
	assert.Equal(t, "現在の待ち時間はおよそ12分です。", gw.replies[0])
	assert.Contains(t, rec.Body.String(), `"echoed":1`)
}

func TestWebhook_FullyBookedReply(t *testing.T) {
	gw := &stubGateway{configured: true, secret: "s"}
	h := NewWebhookHandler(gw, stubEstimator{ok: false}, nil)
	body := `{"events":[{"type":"message","replyToken":"rt","message":{"type":"text","text":"あと何分？"}}]}`
	c, _ := webhookRequest(t, gw, body, true)

	require.NoError(t, h.Handle(c))
	require.Len(t, gw.replies, 1)
	assert.Equal(t, "本日の予約枠はすべて埋まっています。", gw.replies[0])
}

func TestWebhook_IgnoresUnrelatedEvents(t *testing.T) {
	gw := &stubGateway{configured: true, secret: "s"}
	h := NewWebhookHandler(gw, stubEstimator{mins: 5, ok: true}, nil)
	body := `{"events":[` +
		`{"type":"follow","replyToken":"rt1"},` +
		`{"type":"message","replyToken":"rt2","message":{"type":"sticker"}},` +
		`{"type":"message","replyToken":"rt3","message":{"type":"text","text":"こんにちは"}}]}`
	c, rec := webhookRequest(t, gw, body, true)

	require.NoError(t, h.Handle(c))
	assert.Empty(t, gw.replies)
	assert.Contains(t, rec.Body.String(), `"echoed":0`)
}

func TestAsksWaitTime(t *testing.T) {
	assert.True(t, asksWaitTime("待ち時間を教えて"))
	assert.True(t, asksWaitTime("いま待ちってどれくらい？"))
	assert.True(t, asksWaitTime("あと何分で入れますか"))
	assert.False(t, asksWaitTime("予約したい"))
}
