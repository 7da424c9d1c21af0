package bot

import (
	"fmt"
	"html"
	"log"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/events"
	"github.com/floorwarden/warden/internal/models"
)

func init() {
	events.OnAnnouncement = broadcastAnnouncement
	events.OnRequestStatus = notifyRequestStatus
}

// broadcastAnnouncement pushes important announcements to every linked
// student on the floor.
func broadcastAnnouncement(a models.Announcement) {
	if !a.IsImportant {
		return
	}
	var chats []int64
	err := db.Conn().Model(&models.TelegramUser{}).
		Joins("JOIN students ON students.id = telegram_users.student_id").
		Where("students.floor_id = ? AND students.is_deleted = ? AND telegram_users.deliverable = ?", a.FloorID, false, true).
		Pluck("telegram_users.chat_id", &chats).Error
	if err != nil {
		log.Printf("bot: announcement %d recipients: %v", a.ID, err)
		return
	}
	c := newClient()
	msg := fmt.Sprintf("📢 <b>%s</b>\n%s", html.EscapeString(a.Title), html.EscapeString(a.Content))
	for _, chat := range chats {
		if err := c.deliver(chat, msg); err != nil {
			log.Printf("bot: announcement %d chat %d: %v", a.ID, chat, err)
		}
	}
}

var requestStatusText = map[models.RequestStatus]string{
	models.RequestOpen:       "reopened",
	models.RequestInProgress: "in progress",
	models.RequestResolved:   "resolved ✅",
}

func notifyRequestStatus(r models.Request) {
	var tu models.TelegramUser
	if err := db.Conn().Where("student_id = ? AND deliverable = ?", r.StudentID, true).First(&tu).Error; err != nil {
		return
	}
	msg := fmt.Sprintf("🛠 Your request <b>%s</b> is now %s.", html.EscapeString(r.Title), requestStatusText[r.Status])
	if err := newClient().deliver(tu.ChatID, msg); err != nil {
		log.Printf("bot: request %d chat %d: %v", r.ID, tu.ChatID, err)
	}
}
