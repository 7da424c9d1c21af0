package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

var (
	phoneLetters = regexp.MustCompile(`[A-Za-z]`)
	phoneChars   = regexp.MustCompile(`^[0-9+\-\s\(\)]+$`)
	phoneSeps    = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\n", "", "\r", "")
)

// NormPhone brings Uzbek numbers to +998XXXXXXXXX. Anything with letters
// or stray symbols becomes "".
//
//	00998..    -> +998..
//	998..      -> +998..
//	8 90 ...   -> +99890...  (old trunk prefix)
//	90 123..   -> +99890123..
func NormPhone(p string) string {
	s := strings.TrimSpace(p)
	if s == "" || phoneLetters.MatchString(s) || !phoneChars.MatchString(s) {
		return ""
	}
	s = phoneSeps.Replace(s)

	switch {
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "998"):
		s = "+" + s
	case strings.HasPrefix(s, "8") && len(s) == 10:
		s = "+998" + s[1:]
	case !strings.HasPrefix(s, "+") && len(s) == 9:
		s = "+998" + s
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s
}

// NormEmail lowercases and validates a bare address. Empty is allowed.
func NormEmail(s string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(s))
	if e == "" {
		return "", true
	}
	a, err := mail.ParseAddress(e)
	if err != nil || a.Address != e {
		return e, false
	}
	return e, true
}

func phoneDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// phoneVariants lists the spellings a roster might hold for one number.
func phoneVariants(p string) []string {
	n := NormPhone(p)
	out := []string{n}
	if raw := strings.TrimSpace(p); raw != "" && raw != n {
		out = append(out, raw)
	}
	if strings.HasPrefix(n, "+998") && len(n) > 4 {
		out = append(out, n[4:], n[1:])
	}
	return out
}

// FindStudentByAny looks up an active student by phone. Exact variants are
// tried first, then a digits-only compare in SQL.
func FindStudentByAny(phone string) (*models.Student, error) {
	var st models.Student
	for _, cand := range phoneVariants(phone) {
		if cand == "" {
			continue
		}
		if err := db.Conn().Where("phone = ? AND is_deleted = ?", cand, false).First(&st).Error; err == nil {
			return &st, nil
		}
	}

	if d := phoneDigits(phone); d != "" {
		stripped := `REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(phone,'+',''),' ',''),'-',''),'(',''),')','')`
		err := db.Conn().Where(stripped+" IN ? AND is_deleted = ?", []string{d, "998" + d}, false).First(&st).Error
		if err == nil {
			return &st, nil
		}
	}
	return nil, fmt.Errorf("student with phone %q: %w", phone, ErrNotFound)
}
