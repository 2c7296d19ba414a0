package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"app/internal/domain/chat"
)

const (
	replyEndpoint = "https://api.line.me/v2/bot/message/reply"
	pushEndpoint  = "https://api.line.me/v2/bot/message/push"

	// LINEのquick replyの上限
	maxQuickReplyItems = 13
	maxLabelRunes      = 20
)

// ClientはLINE Messaging APIの薄いラッパー。
// usecase.Messengerを満たす。
type Client struct {
	token  string
	http   *http.Client
	logger *log.Logger
}

func NewClient(token string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		token:  token,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *Client) Reply(ctx context.Context, replyToken string, msgs []chat.Message) error {
	if replyToken == "" || len(msgs) == 0 {
		return nil
	}
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   renderMessages(msgs),
	}
	return c.post(ctx, replyEndpoint, payload)
}

func (c *Client) Push(ctx context.Context, to string, msgs []chat.Message) error {
	if to == "" || len(msgs) == 0 {
		return nil
	}
	payload := map[string]any{
		"to":       to,
		"messages": renderMessages(msgs),
	}
	return c.post(ctx, pushEndpoint, payload)
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal line payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call line api: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		c.logger.Printf("WARN line api %s returned %d: %s", url, res.StatusCode, string(b))
		return fmt.Errorf("line api status %d", res.StatusCode)
	}
	return nil
}

// 抽象メッセージをLINEのmessageオブジェクトへ変換する。
// Promptはtext + quick replyのpostbackボタンになる。
func renderMessages(msgs []chat.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		switch v := m.(type) {
		case chat.TextMessage:
			out = append(out, map[string]any{"type": "text", "text": v.Text})
		case chat.Prompt:
			msg := map[string]any{"type": "text", "text": v.Text}
			if items := renderQuickReply(v.Choices); len(items) > 0 {
				msg["quickReply"] = map[string]any{"items": items}
			}
			out = append(out, msg)
		}
	}
	return out
}

func renderQuickReply(choices []chat.Choice) []map[string]any {
	if len(choices) > maxQuickReplyItems {
		choices = choices[:maxQuickReplyItems]
	}
	items := make([]map[string]any, 0, len(choices))
	for _, c := range choices {
		items = append(items, map[string]any{
			"type": "action",
			"action": map[string]any{
				"type":        "postback",
				"label":       truncateLabel(c.Label),
				"data":        c.Data,
				"displayText": truncateLabel(c.Label),
			},
		})
	}
	return items
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:maxLabelRunes])
}
