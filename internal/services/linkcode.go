package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

const LinkCodeTTL = 10 * time.Minute

// 6-digit code from crypto/rand
func genCode6() string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	n := (int(b[0])<<16 | int(b[1])<<8 | int(b[2])) % 1000000
	return fmt.Sprintf("%06d", n)
}

// GenerateLinkCode issues a short-lived code the student sends to the bot
// as "/link CODE".
func GenerateLinkCode(studentID uint) (models.LinkCode, error) {
	// housekeeping: drop this student's used or long-expired codes
	_ = db.Conn().Where("student_id = ? AND (used_at IS NOT NULL OR expires_at < ?)",
		studentID, time.Now().Add(-24*time.Hour)).Delete(&models.LinkCode{}).Error

	// retry on the rare unique collision
	for i := 0; i < 10; i++ {
		lc := models.LinkCode{
			Code:      genCode6(),
			StudentID: studentID,
			ExpiresAt: time.Now().Add(LinkCodeTTL),
		}
		err := db.Conn().Create(&lc).Error
		if err == nil {
			return lc, nil
		}
		log.Printf("linkcode create error: %v", err)
		if !isUniqueViolation(err) {
			return lc, err
		}
	}
	return models.LinkCode{}, fmt.Errorf("unable to generate link code: %w", ErrConflict)
}

// ConsumeLinkCode marks a valid code used and returns its student.
func ConsumeLinkCode(code string) (models.Student, error) {
	var st models.Student
	code = strings.TrimSpace(code)
	var lc models.LinkCode
	err := db.Conn().Where("code = ? AND used_at IS NULL AND expires_at > ?", code, time.Now()).First(&lc).Error
	if err != nil {
		return st, notFound(err, "link code")
	}
	now := time.Now()
	res := db.Conn().Model(&models.LinkCode{}).
		Where("id = ? AND used_at IS NULL", lc.ID).
		Update("used_at", now)
	if res.Error != nil {
		return st, res.Error
	}
	if res.RowsAffected == 0 {
		return st, fmt.Errorf("link code already used: %w", ErrConflict)
	}
	if err := db.Conn().Where("is_deleted = ?", false).First(&st, lc.StudentID).Error; err != nil {
		return st, notFound(err, "student")
	}
	return st, nil
}
