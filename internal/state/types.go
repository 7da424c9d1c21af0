// Package state is the offline floor book: a reducer over an in-memory State
// that is persisted as one JSON blob after every change.
package state

import (
	"time"

	"github.com/floorwarden/warden/internal/models"
)

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Room      string    `json:"room"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
}

type AttendanceRecord struct {
	ID        string                  `json:"id"`
	StudentID string                  `json:"studentId"`
	Date      string                  `json:"date"` // YYYY-MM-DD
	Status    models.AttendanceStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
}

type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Payment struct {
	ID           string     `json:"id"`
	CollectionID string     `json:"collectionId"`
	StudentID    string     `json:"studentId"`
	Amount       int64      `json:"amount"`
	IsPaid       bool       `json:"isPaid"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	IsImportant bool      `json:"isImportant"`
}

type AnnouncementRead struct {
	ID             string    `json:"id"`
	AnnouncementID string    `json:"announcementId"`
	StudentID      string    `json:"studentId"`
	ReadAt         time.Time `json:"readAt"`
}

type Request struct {
	ID        string               `json:"id"`
	StudentID string               `json:"studentId"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Status    models.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt *time.Time           `json:"updatedAt,omitempty"`
}

type State struct {
	IsAuthenticated   bool               `json:"isAuthenticated"`
	User              *User              `json:"user,omitempty"`
	CurrentStudentID  string             `json:"currentStudentId,omitempty"`
	Students          []Student          `json:"students"`
	Attendance        []AttendanceRecord `json:"attendance"`
	Collections       []Collection       `json:"collections"`
	Payments          []Payment          `json:"payments"`
	Announcements     []Announcement     `json:"announcements"`
	AnnouncementReads []AnnouncementRead `json:"announcementReads"`
	Requests          []Request          `json:"requests"`
}

// Partial is a State fragment; nil fields are left untouched by LoadData.
type Partial struct {
	IsAuthenticated   *bool              `json:"isAuthenticated,omitempty"`
	User              *User              `json:"user,omitempty"`
	CurrentStudentID  *string            `json:"currentStudentId,omitempty"`
	Students          []Student          `json:"students,omitempty"`
	Attendance        []AttendanceRecord `json:"attendance,omitempty"`
	Collections       []Collection       `json:"collections,omitempty"`
	Payments          []Payment          `json:"payments,omitempty"`
	Announcements     []Announcement     `json:"announcements,omitempty"`
	AnnouncementReads []AnnouncementRead `json:"announcementReads,omitempty"`
	Requests          []Request          `json:"requests,omitempty"`
}

// Initial returns the logged-out empty state.
func Initial() State {
	return State{
		Students:          []Student{},
		Attendance:        []AttendanceRecord{},
		Collections:       []Collection{},
		Payments:          []Payment{},
		Announcements:     []Announcement{},
		AnnouncementReads: []AnnouncementRead{},
		Requests:          []Request{},
	}
}
