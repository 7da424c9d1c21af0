package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/floorwarden/warden/internal/bot"
	"github.com/floorwarden/warden/internal/config"
)

func webhookSecretOK(r *http.Request) bool {
	want := config.Conf.GetString("TG_WEBHOOK_SECRET")
	if want == "" {
		return false
	}
	got := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
	if got == "" {
		got = r.URL.Query().Get("secret") // /tg/webhook?secret=...
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// POST /tg/webhook
func TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if !webhookSecretOK(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var up bot.Update
	if err := json.Unmarshal(b, &up); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	bot.NewDispatcher().Handle(&up)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
