package handlers

import (
	"net/http"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
	"github.com/floorwarden/warden/internal/services"
)

// POST /account/linkcode/ issues a code the student sends to the bot.
func AccountGenerateLinkCode(w http.ResponseWriter, r *http.Request) {
	lc, err := services.GenerateLinkCode(principal(r).StudentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"code":       lc.Code,
		"expires_at": lc.ExpiresAt,
	})
}

// POST /account/unlink-telegram/
func AccountUnlinkTelegram(w http.ResponseWriter, r *http.Request) {
	// Clear links for this student
	err := db.Conn().Model(&models.TelegramUser{}).
		Where("student_id = ?", principal(r).StudentID).
		Updates(map[string]any{"student_id": nil, "deliverable": false}).Error
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
