package services

import (
	"fmt"
	"strings"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/events"
	"github.com/floorwarden/warden/internal/models"
)

type RequestInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"max=4000"`
}

// RequestUpdate replaces the request; empty title or content keep the old value.
type RequestUpdate struct {
	Title   string               `json:"title" validate:"max=200"`
	Content string               `json:"content" validate:"max=4000"`
	Status  models.RequestStatus `json:"status" validate:"required"`
}

func CreateRequest(p Principal, in RequestInput) (models.Request, error) {
	r := models.Request{
		StudentID: p.StudentID,
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		Status:    models.RequestOpen,
	}
	if p.StudentID == 0 {
		return r, fmt.Errorf("only students file requests: %w", ErrForbidden)
	}
	if r.Title == "" {
		return r, invalid("title is required")
	}
	if err := db.Conn().Create(&r).Error; err != nil {
		return r, err
	}
	invalidateStats(p.FloorID)
	return r, nil
}

// ListRequests shows a leader every request on the floor (optionally by
// status) and a student only their own.
func ListRequests(p Principal, status string) ([]models.Request, error) {
	q := db.Conn().Preload("Student")
	if p.IsLeader() {
		q = q.Joins("JOIN students ON students.id = requests.student_id").
			Where("students.floor_id = ?", p.FloorID)
	} else {
		q = q.Where("requests.student_id = ?", p.StudentID)
	}
	if status = strings.TrimSpace(status); status != "" {
		st, err := models.ParseRequestStatus(status)
		if err != nil {
			return nil, invalid("%v", err)
		}
		q = q.Where("requests.status = ?", st)
	}
	var out []models.Request
	err := q.Order("requests.created_at desc, requests.id desc").Find(&out).Error
	return out, err
}

func UpdateRequest(floorID, id uint, in RequestUpdate) (models.Request, error) {
	var r models.Request
	err := db.Conn().Preload("Student").
		Joins("JOIN students ON students.id = requests.student_id").
		Where("students.floor_id = ?", floorID).
		First(&r, "requests.id = ?", id).Error
	if err != nil {
		return r, notFound(err, "request")
	}
	prev := r.Status
	if t := strings.TrimSpace(in.Title); t != "" {
		r.Title = t
	}
	if c := strings.TrimSpace(in.Content); c != "" {
		r.Content = c
	}
	r.Status = in.Status
	if err := db.Conn().Model(&r).Updates(map[string]any{
		"title": r.Title, "content": r.Content, "status": r.Status,
	}).Error; err != nil {
		return r, err
	}
	invalidateStats(floorID)
	if prev != r.Status && events.OnRequestStatus != nil {
		go events.OnRequestStatus(r)
	}
	return r, nil
}
