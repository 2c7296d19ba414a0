package line

import (
	"encoding/json"
	"fmt"

	"app/internal/domain/chat"
)

// webhook bodyのうち必要な部分だけを読む
type webhookBody struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Postback struct {
		Data string `json:"data"`
	} `json:"postback"`
}

// ParseWebhookは配送ボディをコアのイベント列へ正規化する。
// テキストとpostback以外（スタンプ・画像・follow等）は捨てる。
func ParseWebhook(body []byte) ([]chat.Event, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}

	events := make([]chat.Event, 0, len(wb.Events))
	for _, e := range wb.Events {
		var payload chat.Payload
		switch {
		case e.Type == "message" && e.Message.Type == "text":
			payload = chat.ParsePayload(e.Message.Text)
		case e.Type == "postback":
			payload = chat.ParsePayload(e.Postback.Data)
		default:
			continue
		}
		if e.Source.UserID == "" {
			continue
		}
		events = append(events, chat.Event{
			CustomerID: e.Source.UserID,
			ReplyToken: e.ReplyToken,
			Payload:    payload,
		})
	}
	return events, nil
}
