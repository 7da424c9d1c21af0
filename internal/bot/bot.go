package bot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

const apiBase = "https://api.telegram.org"

// ErrBlocked means the user blocked the bot or deleted the chat.
var ErrBlocked = errors.New("telegram: chat unreachable")

type Client struct {
	token  string
	apiURL string
	httpc  *http.Client
}

// newClient is swapped in tests to talk to a fake Bot API.
var newClient = NewClient

func NewClient() *Client {
	return newClientAt(apiBase, config.Conf.GetString("TG_BOT_TOKEN"))
}

func newClientAt(base, tok string) *Client {
	return &Client{
		token:  tok,
		apiURL: base + "/bot" + tok,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool { return c.token != "" }

type apiResult struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// call posts payload to a Bot API method. Without a token it does nothing.
func (c *Client) call(method string, payload any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Post(c.apiURL+"/"+method, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var res apiResult
	_ = json.NewDecoder(resp.Body).Decode(&res)
	switch {
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrBlocked, res.Description)
	case resp.StatusCode >= 300:
		if res.Description != "" {
			return fmt.Errorf("telegram %s: %s", method, res.Description)
		}
		return fmt.Errorf("telegram %s: %s", method, resp.Status)
	}
	return nil
}

func (c *Client) SendMessage(chatID int64, text string, replyMarkup any) error {
	data := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if replyMarkup != nil {
		data["reply_markup"] = replyMarkup
	}
	return c.call("sendMessage", data)
}

// deliver sends an unsolicited message and stops future pushes to chats
// that blocked the bot.
func (c *Client) deliver(chatID int64, text string) error {
	err := c.SendMessage(chatID, text, nil)
	if errors.Is(err, ErrBlocked) {
		if uerr := db.Conn().Model(&models.TelegramUser{}).
			Where("chat_id = ?", chatID).
			Update("deliverable", false).Error; uerr != nil {
			log.Printf("bot: mark chat %d undeliverable: %v", chatID, uerr)
		}
	}
	return err
}
