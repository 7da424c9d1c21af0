package state

import "github.com/floorwarden/warden/internal/models"

// Action is a closed set; only types in this file implement it.
type Action interface{ action() }

type LoginSuccess struct{ User *User }
type Logout struct{}
type LoadData struct{ Data Partial }

// Add* payloads ignore ID and CreatedAt; the reducer assigns them.
type AddStudent struct{ Student Student }
type UpdateStudent struct{ Student Student }
type DeleteStudent struct{ ID string }

type AddAttendance struct{ Record AttendanceRecord }
type UpdateAttendance struct{ Record AttendanceRecord }

type AddCollection struct{ Collection Collection }
type AddPayment struct{ Payment Payment }
type UpdatePayment struct{ Payment Payment }
type TogglePayment struct{ ID string }

type AddAnnouncement struct{ Announcement Announcement }
type MarkAnnouncementRead struct{ AnnouncementID, StudentID string }

type AddRequest struct{ Request Request }
type UpdateRequest struct{ Request Request }
type SetRequestStatus struct {
	ID     string
	Status models.RequestStatus
}

func (LoginSuccess) action()         {}
func (Logout) action()               {}
func (LoadData) action()             {}
func (AddStudent) action()           {}
func (UpdateStudent) action()        {}
func (DeleteStudent) action()        {}
func (AddAttendance) action()        {}
func (UpdateAttendance) action()     {}
func (AddCollection) action()        {}
func (AddPayment) action()           {}
func (UpdatePayment) action()        {}
func (TogglePayment) action()        {}
func (AddAnnouncement) action()      {}
func (MarkAnnouncementRead) action() {}
func (AddRequest) action()           {}
func (UpdateRequest) action()        {}
func (SetRequestStatus) action()     {}
