package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
	svc "github.com/floorwarden/warden/internal/services"
)

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fmtSom renders 20000 as "20 000 so'm".
func fmtSom(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " so'm"
	if neg {
		out = "-" + out
	}
	return out
}

func (d *Dispatcher) handleLinkCode(tu *models.TelegramUser, chat int64, code string) {
	code = onlyDigits(code) // strip spaces, punctuation, accidental chars
	if code == "" {
		_ = d.c.SendMessage(chat, "Use: /link 123456\nOpen the app → Profile → Link Telegram to get a code.", nil)
		return
	}
	st, err := svc.ConsumeLinkCode(code)
	if err != nil {
		_ = d.c.SendMessage(chat, "Code invalid or expired.", nil)
		return
	}
	d.link(tu, &st, chat)
}

func (d *Dispatcher) requireLinked(chat int64, tu *models.TelegramUser) bool {
	if tu.StudentID == nil {
		_ = d.c.SendMessage(chat, "Not linked yet. Share your phone or use /link CODE.", ContactKeyboard())
		return false
	}
	return true
}

func (d *Dispatcher) handleDues(chat int64, tu *models.TelegramUser) {
	if !d.requireLinked(chat, tu) {
		return
	}
	dues, err := svc.StudentPayments(*tu.StudentID)
	if err != nil {
		_ = d.c.SendMessage(chat, "Could not load your dues, try again later.", nil)
		return
	}
	var b strings.Builder
	var owed int64
	for _, x := range dues {
		if x.IsPaid {
			continue
		}
		owed += x.Amount
		line := fmt.Sprintf("• %s: %s", html.EscapeString(x.Title), fmtSom(x.Amount))
		if x.Deadline != nil {
			line += " (until " + x.Deadline.In(config.Location()).Format("02.01.2006") + ")"
		}
		b.WriteString(line + "\n")
	}
	if owed == 0 {
		_ = d.c.SendMessage(chat, "✅ You have no unpaid dues.", MainKeyboard())
		return
	}
	_ = d.c.SendMessage(chat, "<b>Unpaid dues</b>\n"+b.String()+"\nTotal: <b>"+fmtSom(owed)+"</b>", MainKeyboard())
}

func (d *Dispatcher) handleAttendance(chat int64, tu *models.TelegramUser) {
	if !d.requireLinked(chat, tu) {
		return
	}
	recs, err := svc.StudentAttendance(*tu.StudentID)
	if err != nil {
		_ = d.c.SendMessage(chat, "Could not load attendance, try again later.", nil)
		return
	}
	if len(recs) == 0 {
		_ = d.c.SendMessage(chat, "No roll calls yet.", MainKeyboard())
		return
	}
	var present int
	var b strings.Builder
	for i, r := range recs {
		if r.Status == models.Present {
			present++
		}
		if i < 7 {
			fmt.Fprintf(&b, "• %s: %s\n", r.Date, r.Status)
		}
	}
	rate := present * 100 / len(recs)
	_ = d.c.SendMessage(chat, fmt.Sprintf("<b>Attendance</b> %d%% (%d/%d)\n%s", rate, present, len(recs), b.String()), MainKeyboard())
}

func (d *Dispatcher) handleAnnouncements(chat int64, tu *models.TelegramUser) {
	if !d.requireLinked(chat, tu) {
		return
	}
	var st models.Student
	if err := db.Conn().First(&st, *tu.StudentID).Error; err != nil {
		return
	}
	var list []models.Announcement
	db.Conn().Where("floor_id = ?", st.FloorID).Order("created_at desc").Limit(5).Find(&list)
	if len(list) == 0 {
		_ = d.c.SendMessage(chat, "No announcements.", MainKeyboard())
		return
	}
	var b strings.Builder
	for _, a := range list {
		mark := "•"
		if a.IsImportant {
			mark = "❗"
		}
		fmt.Fprintf(&b, "%s <b>%s</b>\n%s\n\n", mark, html.EscapeString(a.Title), html.EscapeString(a.Content))
	}
	_ = d.c.SendMessage(chat, strings.TrimSpace(b.String()), MainKeyboard())
}
