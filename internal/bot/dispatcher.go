package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
	svc "github.com/floorwarden/warden/internal/services"
)

type Dispatcher struct {
	c *Client
}

func ContactKeyboard() ReplyKeyboard {
	return ReplyKeyboard{
		Keyboard:       [][]KeyboardButton{{{Text: "Share my phone", RequestContact: true}}},
		ResizeKeyboard: true,
	}
}

func MainKeyboard() ReplyKeyboard {
	return ReplyKeyboard{
		Keyboard: [][]KeyboardButton{
			{{Text: btnDues}, {Text: btnAttendance}},
			{{Text: btnNews}},
		},
		ResizeKeyboard: true,
	}
}

func NewDispatcher() *Dispatcher { return &Dispatcher{c: newClient()} }

func (d *Dispatcher) Handle(u *Update) {
	if u.Message == nil || u.Message.From == nil || u.Message.Chat == nil {
		return
	}
	m := u.Message
	chat := m.Chat.ID
	from := m.From

	// Upsert telegram_users
	var tu models.TelegramUser
	_ = db.Conn().Where("telegram_user_id = ?", from.ID).
		FirstOrCreate(&tu, models.TelegramUser{
			TelegramUserID: from.ID,
			ChatID:         chat,
			Username:       from.Username,
			FirstName:      from.FirstName,
			Deliverable:    true,
		}).Error

	// Contact share: only the sender's own number links
	if m.Contact != nil && m.Contact.UserID == from.ID {
		phone := svc.NormPhone(m.Contact.PhoneNumber)
		tu.Phone = phone

		if st, err := svc.FindStudentByAny(phone); err == nil {
			d.link(&tu, st, chat)
		} else {
			_ = d.c.SendMessage(chat, "Phone not found. Ask your floor leader to add it, or send /link CODE from the app.", MainKeyboard())
			db.Conn().Save(&tu)
		}
		return
	}

	text := strings.TrimSpace(m.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		_ = d.c.SendMessage(chat, "Salom! Tap the button below to link your account by sharing your phone number.", ContactKeyboard())
	case strings.HasPrefix(text, "/link"):
		code := strings.TrimSpace(strings.TrimPrefix(text, "/link"))
		code = strings.Trim(code, " :")
		d.handleLinkCode(&tu, chat, code)
	case strings.EqualFold(text, btnDues), strings.HasPrefix(text, "/dues"):
		d.handleDues(chat, &tu)
	case strings.EqualFold(text, btnAttendance), strings.HasPrefix(text, "/attendance"):
		d.handleAttendance(chat, &tu)
	case strings.EqualFold(text, btnNews), strings.HasPrefix(text, "/news"):
		d.handleAnnouncements(chat, &tu)
	default:
		_ = d.c.SendMessage(chat, "Try: <b>My dues</b>, <b>My attendance</b> or /link CODE", MainKeyboard())
	}
}

func (d *Dispatcher) link(tu *models.TelegramUser, st *models.Student, chat int64) {
	now := time.Now()
	tu.StudentID = &st.ID
	tu.LinkedAt = &now
	tu.Deliverable = true
	if st.Phone != "" {
		tu.Phone = st.Phone // canonical phone from DB
	}
	_ = db.Conn().Save(tu).Error
	_ = d.c.SendMessage(chat, fmt.Sprintf("✅ Linked to <b>%s</b> (room %s)", studentName(st), st.Room), MainKeyboard())
}

func studentName(st *models.Student) string {
	return strings.TrimSpace(st.Name + " " + st.LastName)
}
