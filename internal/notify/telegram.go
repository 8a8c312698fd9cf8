// Package notify delivers trade alerts to Telegram. Delivery is
// best-effort by contract: failures are logged and swallowed so a dead
// bot can never block a scan or a ledger write.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swing-trader/internal/logger"
)

type Telegram struct {
	token  string
	chatID string
	http   *http.Client
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:  token,
		chatID: chatID,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether credentials are configured.
func (t *Telegram) Enabled() bool {
	return t.token != "" && t.chatID != ""
}

func (t *Telegram) Notify(ctx context.Context, text string) {
	if !t.Enabled() {
		logger.Debug(ctx, "telegram disabled, dropping alert")
		return
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		logger.ErrorWithErr(ctx, "telegram request build failed", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		logger.ErrorWithErr(ctx, "telegram send failed", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Error(ctx, "telegram send rejected", "status", resp.StatusCode)
	}
}

// Null is a no-op sink for runs with notifications disabled.
type Null struct{}

func (Null) Notify(ctx context.Context, text string) {}
