package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/events"
	"github.com/floorwarden/warden/internal/models"
)

type AnnouncementInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"max=8000"`
	IsImportant bool   `json:"is_important"`
}

type AnnouncementView struct {
	models.Announcement
	IsRead bool `json:"is_read"`
}

func CreateAnnouncement(floorID uint, in AnnouncementInput) (models.Announcement, error) {
	a := models.Announcement{
		FloorID:     floorID,
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		IsImportant: in.IsImportant,
	}
	if a.Title == "" {
		return a, invalid("title is required")
	}
	if err := db.Conn().Create(&a).Error; err != nil {
		return a, err
	}
	if events.OnAnnouncement != nil {
		go events.OnAnnouncement(a)
	}
	return a, nil
}

// ListAnnouncements returns the floor's announcements newest first. For a
// student IsRead reflects their own read marks.
func ListAnnouncements(p Principal) ([]AnnouncementView, error) {
	var list []models.Announcement
	if err := db.Conn().Where("floor_id = ?", p.FloorID).
		Order("created_at desc, id desc").Find(&list).Error; err != nil {
		return nil, err
	}
	read := map[uint]bool{}
	if p.StudentID != 0 && len(list) > 0 {
		var ids []uint
		if err := db.Conn().Model(&models.AnnouncementRead{}).
			Where("student_id = ?", p.StudentID).
			Pluck("announcement_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			read[id] = true
		}
	}
	out := make([]AnnouncementView, len(list))
	for i, a := range list {
		out[i] = AnnouncementView{Announcement: a, IsRead: read[a.ID]}
	}
	return out, nil
}

// MarkRead records that the student has seen the announcement. Repeated
// calls keep the first ReadAt.
func MarkRead(p Principal, announcementID uint) error {
	if p.StudentID == 0 {
		return fmt.Errorf("read marks are for students: %w", ErrForbidden)
	}
	var a models.Announcement
	if err := db.Conn().Where("floor_id = ?", p.FloorID).First(&a, announcementID).Error; err != nil {
		return notFound(err, "announcement")
	}
	mark := models.AnnouncementRead{AnnouncementID: a.ID, StudentID: p.StudentID, ReadAt: time.Now()}
	return db.Conn().Clauses(clause.OnConflict{DoNothing: true}).Create(&mark).Error
}
