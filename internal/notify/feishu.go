package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"walletbot/internal/logging"
)

// Feishu pushes text messages to a Feishu group webhook
type Feishu struct {
	webhookURL string
	hc         *http.Client
	log        *logging.Logger
}

// NewFeishu creates a notifier for the given webhook URL
func NewFeishu(webhookURL string, log *logging.Logger) *Feishu {
	return &Feishu{
		webhookURL: webhookURL,
		hc:         &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type feishuPayload struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

type feishuResponse struct {
	StatusCode    int    `json:"StatusCode"`
	StatusMessage string `json:"StatusMessage"`
}

// Send posts one text message. A configured but rejecting webhook is an
// error; an empty webhook URL is a silent no-op.
func (f *Feishu) Send(ctx context.Context, message string) error {
	if f.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(feishuPayload{
		MsgType: "text",
		Content: feishuContent{Text: message},
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification webhook answered status %d", resp.StatusCode)
	}

	var answer feishuResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return fmt.Errorf("failed to parse webhook response: %w", err)
	}
	if answer.StatusCode != 0 {
		msg := answer.StatusMessage
		if msg == "" {
			msg = "未知错误"
		}
		return fmt.Errorf("webhook rejected the message: %s", msg)
	}

	f.log.Info("飞书通知已成功发送")
	return nil
}
