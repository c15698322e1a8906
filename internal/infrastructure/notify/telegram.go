package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTelegramURL = "https://api.telegram.org"

var ErrNotConfigured = errors.New("telegram token or chat_id missing")

// TelegramClient 提供簡單的 sendMessage API 封裝，用於推播尋寶摘要。
type TelegramClient struct {
	token      string
	chatID     int64
	prefix     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramClient baseURL 為空時使用官方 API。
func NewTelegramClient(token string, chatID int64, prefix, baseURL string) *TelegramClient {
	if baseURL == "" {
		baseURL = defaultTelegramURL
	}
	return &TelegramClient{
		token:   token,
		chatID:  chatID,
		prefix:  prefix,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Configured 檢查 token 與 chat id 是否齊全。
func (c *TelegramClient) Configured() bool {
	return c != nil && c.token != "" && c.chatID != 0
}

// SendMessage 將文字訊息推送到指定 chat。
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return fmt.Errorf("telegram client is nil")
	}
	if !c.Configured() {
		return ErrNotConfigured
	}

	if c.prefix != "" {
		text = fmt.Sprintf("[%s] %s", c.prefix, text)
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send failed status=%d body=%s", resp.StatusCode, string(raw))
	}
	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && !parsed.OK {
		return fmt.Errorf("telegram send rejected: %s", parsed.Description)
	}
	return nil
}
