package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const notifyTimeout = 10 * time.Second

// Notifier delivers rendered notification messages to a set of Telegram
// chats. Delivery is fire-and-forget: every attempt is isolated, bounded by
// a timeout, and failures are logged, never propagated.
type Notifier struct {
	client  *http.Client
	apiBase string
	token   string
	chatIDs []string
}

func newNotifier(cfg *Config) *Notifier {
	return &Notifier{
		client:  &http.Client{Timeout: notifyTimeout},
		apiBase: "https://api.telegram.org",
		token:   cfg.BotToken,
		chatIDs: cfg.ChatIDs,
	}
}

// Deliver sends each event to every configured chat. One recipient failing
// must not block or fail delivery to the others, and a missed alert never
// fails the run.
func (n *Notifier) Deliver(ctx context.Context, events []Event) {
	if n.token == "" || len(n.chatIDs) == 0 {
		if len(events) > 0 {
			slog.Warn("Telegram not configured, dropping notifications", "count", len(events))
		}
		return
	}

	for _, ev := range events {
		msg := renderMessage(ev)
		for _, chatID := range n.chatIDs {
			if err := n.send(ctx, chatID, msg); err != nil {
				slog.Warn("Notification delivery failed",
					"chat_id", chatID, "listing", ev.ID, "kind", ev.Kind, "error", err)
				continue
			}
			slog.Debug("Notification delivered", "chat_id", chatID, "listing", ev.ID, "kind", ev.Kind)
		}
	}
}

func (n *Notifier) send(ctx context.Context, chatID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "MarkdownV2",
		"disable_web_page_preview": false,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// MarkdownV2 reserves these characters; they must be escaped in any
// user-controlled text before transmission.
var markdownV2Escaper = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)

func escapeMarkdownV2(s string) string {
	return markdownV2Escaper.Replace(s)
}

// renderMessage formats one event as a MarkdownV2 message with an event-type
// marker, the listing's title, price and link, and for change events both
// the old and the new price.
func renderMessage(ev Event) string {
	title := escapeMarkdownV2(ev.Title)
	price := escapeMarkdownV2(ev.PriceDisplay)

	switch ev.Kind {
	case EventPriceDrop:
		return fmt.Sprintf(
			"*📉 Price drop\\!*\n\n%s\nOld: ~%d €~\nNew: *%s*\n\n[Open listing](%s)",
			title, ev.OldPrice, price, ev.Link)
	case EventPriceIncrease:
		return fmt.Sprintf(
			"*📈 Price increase*\n\n%s\nOld: %d €\nNew: *%s*\n\n[Open listing](%s)",
			title, ev.OldPrice, price, ev.Link)
	default:
		return fmt.Sprintf(
			"*🆕 New listing found\\!*\n\n%s\n💰 *%s*\n\n[Open listing](%s)",
			title, price, ev.Link)
	}
}
