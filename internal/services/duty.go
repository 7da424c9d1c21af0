package services

import (
	"strings"
	"time"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

type DutyInput struct {
	Room string `json:"room" validate:"max=16"` // empty: next in rotation
	Date string `json:"date"`                   // empty: today
}

type DutyUpdate struct {
	Status models.DutyStatus `json:"status" validate:"required"`
}

type DutyBoard struct {
	Assignments []models.DutyAssignment `json:"assignments"`
	NextRoom    string                  `json:"next_room"`
}

// floorRooms returns the distinct rooms with active students, in numeric order.
func floorRooms(floorID uint) ([]string, error) {
	var rooms []string
	err := db.Conn().Model(&models.Student{}).
		Where("floor_id = ? AND is_deleted = ? AND room <> ''", floorID, false).
		Distinct().Pluck("room", &rooms).Error
	if err != nil {
		return nil, err
	}
	sortRooms(rooms)
	return rooms, nil
}

// NextRoom picks the room after the most recently assigned one, wrapping
// to the first. An empty floor has no next room.
func NextRoom(floorID uint) (string, error) {
	rooms, err := floorRooms(floorID)
	if err != nil || len(rooms) == 0 {
		return "", err
	}
	var last models.DutyAssignment
	res := db.Conn().Where("floor_id = ?", floorID).Order("date desc, id desc").Limit(1).Find(&last)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return rooms[0], nil
	}
	for i, r := range rooms {
		if r == last.Room {
			return rooms[(i+1)%len(rooms)], nil
		}
	}
	// last room no longer occupied: continue with the first room after it
	for _, r := range rooms {
		if roomLess(last.Room, r) {
			return r, nil
		}
	}
	return rooms[0], nil
}

func ListDuty(floorID uint) (DutyBoard, error) {
	var b DutyBoard
	if err := db.Conn().Where("floor_id = ?", floorID).
		Order("date desc, id desc").Limit(60).Find(&b.Assignments).Error; err != nil {
		return b, err
	}
	next, err := NextRoom(floorID)
	b.NextRoom = next
	return b, err
}

func AssignDuty(floorID uint, in DutyInput) (models.DutyAssignment, error) {
	d := models.DutyAssignment{
		FloorID: floorID,
		Room:    strings.TrimSpace(in.Room),
		Date:    strings.TrimSpace(in.Date),
		Status:  models.DutyAssigned,
	}
	if d.Date == "" {
		d.Date = config.Today()
	} else if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return d, invalid("date %q", d.Date)
	}
	if d.Room == "" {
		next, err := NextRoom(floorID)
		if err != nil {
			return d, err
		}
		if next == "" {
			return d, invalid("no rooms on this floor")
		}
		d.Room = next
	}
	err := db.Conn().Create(&d).Error
	return d, err
}

func MarkDuty(floorID, id uint, status models.DutyStatus) (models.DutyAssignment, error) {
	var d models.DutyAssignment
	if err := db.Conn().Where("floor_id = ?", floorID).First(&d, id).Error; err != nil {
		return d, notFound(err, "duty assignment")
	}
	switch status {
	case models.DutyAssigned, models.DutyDone, models.DutyMissed:
	default:
		return d, invalid("duty status %q", status)
	}
	d.Status = status
	err := db.Conn().Model(&d).Update("status", status).Error
	return d, err
}
