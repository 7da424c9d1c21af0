package bot

import (
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

func StartReminderLoop() {
	if !config.Conf.GetBool("TG_ENABLE_REMINDERS") {
		return
	}
	log.Printf("bot: dues reminders every minute, offsets %v", parseOffsets(config.Conf.GetString("REMIND_OFFSETS")))
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for t := range ticker.C {
			runReminders(t)
		}
	}()
}

// Parse REMIND_OFFSETS like "72h,24h". Defaults to 72h & 24h.
func parseOffsets(raw string) []time.Duration {
	def := []time.Duration{72 * time.Hour, 24 * time.Hour}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err == nil && d > 0 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

type dueRow struct {
	Student uint
	Title   string
	Amount  int64
	DueDate time.Time
}

// linkedChats keys deliverable Telegram users by their linked student.
func linkedChats(users []models.TelegramUser) map[uint]models.TelegramUser {
	m := make(map[uint]models.TelegramUser, len(users))
	for _, tu := range users {
		if tu.StudentID != nil && tu.Deliverable {
			m[*tu.StudentID] = tu
		}
	}
	return m
}

// runReminders messages every linked student with an unpaid payment whose
// collection is due exactly one offset after this minute.
func runReminders(now time.Time) int {
	loc := config.Location()
	// Use a strict 1-minute window: [tick, tick+1m) to avoid duplicate sends
	tick := now.In(loc).Truncate(time.Minute)
	next := tick.Add(time.Minute)

	sent := 0
	c := newClient()
	for _, ahead := range parseOffsets(config.Conf.GetString("REMIND_OFFSETS")) {
		// trigger = due_date - ahead ∈ [tick, next)
		start := tick.Add(ahead)
		end := next.Add(ahead)

		var rows []dueRow
		err := db.Conn().Table("payments").
			Select(`payments.student_id AS student,
			        collections.title,
			        payments.amount,
			        collections.due_date`).
			Joins("JOIN collections ON collections.id = payments.collection_id").
			Joins("JOIN students ON students.id = payments.student_id").
			Where("payments.is_paid = ? AND students.is_deleted = ?", false, false).
			Where("collections.due_date >= ? AND collections.due_date < ?", start.UTC(), end.UTC()).
			Scan(&rows).Error
		if err != nil {
			log.Printf("reminders: query: %v", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		// Batch-load TelegramUsers for all student IDs in one query.
		ids := make([]uint, 0, len(rows))
		for _, x := range rows {
			ids = append(ids, x.Student)
		}
		var tgUsers []models.TelegramUser
		if err := db.Conn().Where("student_id IN ? AND deliverable = ?", ids, true).Find(&tgUsers).Error; err != nil {
			log.Printf("reminders: telegram users: %v", err)
			continue
		}
		chats := linkedChats(tgUsers)

		for _, x := range rows {
			tu, ok := chats[x.Student]
			if !ok {
				continue
			}
			msg := fmt.Sprintf("⏰ Reminder: <b>%s</b> %s is due %s",
				html.EscapeString(x.Title), fmtSom(x.Amount), x.DueDate.In(loc).Format("02.01.2006 15:04"))
			if err := c.deliver(tu.ChatID, msg); err != nil {
				log.Printf("reminders: chat %d: %v", tu.ChatID, err)
				continue
			}
			sent++
		}
	}
	return sent
}
