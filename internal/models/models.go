package models

import "time"

// Role: "leader" or "student"
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `gorm:"index;not null" json:"role"`
	PasswordHash string `json:"-"`
	FloorID      uint   `gorm:"index" json:"floor_id"`
}

type Floor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name   string `json:"name"`
	Number int    `gorm:"index" json:"number"`
	Gender string `json:"gender"` // male | female
}

type FloorLeader struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  uint  `gorm:"uniqueIndex" json:"user_id"`
	User    User  `json:"user"`
	FloorID uint  `gorm:"index" json:"floor_id"`
	Floor   Floor `json:"floor"`
}

type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"not null" json:"name"`
	LastName  string `json:"last_name"`
	Room      string `gorm:"index" json:"room"`
	Phone     string `json:"phone"`
	FloorID   uint   `gorm:"index" json:"floor_id"`
	UserID    *uint  `gorm:"uniqueIndex" json:"user_id,omitempty"` // login account, nil until issued
	IsDeleted bool   `gorm:"index;not null;default:false" json:"is_deleted"`
}

type AttendanceSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FloorID  uint   `gorm:"uniqueIndex:idx_session_floor_date" json:"floor_id"`
	Date     string `gorm:"uniqueIndex:idx_session_floor_date;size:10" json:"date"` // YYYY-MM-DD
	IsActive bool   `json:"is_active"`

	Records []AttendanceRecord `gorm:"foreignKey:SessionID" json:"-"`
}

type AttendanceRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SessionID uint             `gorm:"uniqueIndex:idx_record_session_student" json:"session_id"`
	StudentID uint             `gorm:"uniqueIndex:idx_record_session_student;index" json:"student_id"`
	Student   Student          `json:"student"`
	Date      string           `gorm:"index;size:10" json:"date"`
	Status    AttendanceStatus `gorm:"not null" json:"status"`
}

type Collection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FloorID     uint       `gorm:"index" json:"floor_id"`
	Title       string     `gorm:"not null" json:"title"`
	Amount      int64      `json:"amount"` // so'm, whole units
	Description string     `json:"description"`
	DueDate     *time.Time `json:"deadline,omitempty"`

	Payments []Payment `json:"-"`
}

// Payment is one student's share of a collection.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CollectionID uint       `gorm:"uniqueIndex:idx_payment_collection_student" json:"collection_id"`
	StudentID    uint       `gorm:"uniqueIndex:idx_payment_collection_student;index" json:"student_id"`
	Student      Student    `json:"student"`
	Amount       int64      `json:"amount"`
	IsPaid       bool       `json:"is_paid"`
	PaidAt       *time.Time `json:"paid_at,omitempty"` // nil while unpaid
}

type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FloorID     uint   `gorm:"index" json:"floor_id"`
	Title       string `gorm:"not null" json:"title"`
	Content     string `json:"content"`
	IsImportant bool   `json:"is_important"`
}

type AnnouncementRead struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AnnouncementID uint      `gorm:"uniqueIndex:idx_read_pair" json:"announcement_id"`
	StudentID      uint      `gorm:"uniqueIndex:idx_read_pair" json:"student_id"`
	ReadAt         time.Time `json:"read_at"`
}

// Request is a maintenance/room request filed by a student.
type Request struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StudentID uint          `gorm:"index" json:"student_id"`
	Student   Student       `json:"student"`
	Title     string        `gorm:"not null" json:"title"`
	Content   string        `json:"content"`
	Status    RequestStatus `gorm:"index;not null" json:"status"`
}

type DutyAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FloorID uint       `gorm:"index" json:"floor_id"`
	Room    string     `json:"room"`
	Date    string     `gorm:"index;size:10" json:"date"`
	Status  DutyStatus `gorm:"not null" json:"status"`
}
