package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/floorwarden/warden/internal/models"
)

// Reducer turns (State, Action) into a new State. NewID and Now are
// replaceable for tests.
type Reducer struct {
	NewID func() string
	Now   func() time.Time
}

var defaultReducer = Reducer{
	NewID: func() string { return uuid.NewString() },
	Now:   func() time.Time { return time.Now().UTC() },
}

// Reduce applies a with the default id generator and clock.
func Reduce(s State, a Action) State {
	return defaultReducer.Reduce(s, a)
}

// Reduce never mutates s: any slice it changes is copied first.
func (r Reducer) Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoginSuccess:
		s.IsAuthenticated = true
		s.User = a.User
		return s

	case Logout:
		return Initial()

	case LoadData:
		return merge(s, a.Data)

	case AddStudent:
		st := a.Student
		st.ID = r.NewID()
		st.CreatedAt = r.Now()
		s.Students = appendCopy(s.Students, st)
		return s

	case UpdateStudent:
		s.Students = replaceByID(s.Students, a.Student, func(x Student) string { return x.ID })
		return s

	case DeleteStudent:
		out := make([]Student, len(s.Students))
		for i, st := range s.Students {
			if st.ID == a.ID {
				st.IsDeleted = true
			}
			out[i] = st
		}
		s.Students = out
		return s

	case AddAttendance:
		rec := a.Record
		rec.ID = r.NewID()
		rec.CreatedAt = r.Now()
		s.Attendance = appendCopy(s.Attendance, rec)
		return s

	case UpdateAttendance:
		s.Attendance = replaceByID(s.Attendance, a.Record, func(x AttendanceRecord) string { return x.ID })
		return s

	case AddCollection:
		now := r.Now()
		c := a.Collection
		c.ID = r.NewID()
		c.CreatedAt = now
		s.Collections = appendCopy(s.Collections, c)

		// every active student owes the full amount
		payments := make([]Payment, len(s.Payments), len(s.Payments)+len(s.Students))
		copy(payments, s.Payments)
		for _, st := range s.Students {
			if st.IsDeleted {
				continue
			}
			payments = append(payments, Payment{
				ID:           r.NewID(),
				CollectionID: c.ID,
				StudentID:    st.ID,
				Amount:       c.Amount,
				IsPaid:       false,
				CreatedAt:    now,
			})
		}
		s.Payments = payments
		return s

	case AddPayment:
		p := a.Payment
		p.ID = r.NewID()
		p.CreatedAt = r.Now()
		s.Payments = appendCopy(s.Payments, p)
		return s

	case UpdatePayment:
		p := a.Payment
		r.stampPaid(&p)
		s.Payments = replaceByID(s.Payments, p, func(x Payment) string { return x.ID })
		return s

	case TogglePayment:
		for _, p := range s.Payments {
			if p.ID == a.ID {
				p.IsPaid = !p.IsPaid
				p.PaidAt = nil
				r.stampPaid(&p)
				s.Payments = replaceByID(s.Payments, p, func(x Payment) string { return x.ID })
				break
			}
		}
		return s

	case AddAnnouncement:
		an := a.Announcement
		an.ID = r.NewID()
		an.CreatedAt = r.Now()
		s.Announcements = appendCopy(s.Announcements, an)
		return s

	case MarkAnnouncementRead:
		for _, rd := range s.AnnouncementReads {
			if rd.AnnouncementID == a.AnnouncementID && rd.StudentID == a.StudentID {
				return s
			}
		}
		s.AnnouncementReads = appendCopy(s.AnnouncementReads, AnnouncementRead{
			ID:             r.NewID(),
			AnnouncementID: a.AnnouncementID,
			StudentID:      a.StudentID,
			ReadAt:         r.Now(),
		})
		return s

	case AddRequest:
		req := a.Request
		req.ID = r.NewID()
		req.CreatedAt = r.Now()
		if req.Status == "" {
			req.Status = models.RequestOpen
		}
		s.Requests = appendCopy(s.Requests, req)
		return s

	case UpdateRequest:
		req := a.Request
		now := r.Now()
		req.UpdatedAt = &now
		s.Requests = replaceByID(s.Requests, req, func(x Request) string { return x.ID })
		return s

	case SetRequestStatus:
		for _, req := range s.Requests {
			if req.ID == a.ID {
				req.Status = a.Status
				return r.Reduce(s, UpdateRequest{Request: req})
			}
		}
		return s
	}
	return s
}

// stampPaid keeps PaidAt consistent with IsPaid.
func (r Reducer) stampPaid(p *Payment) {
	if !p.IsPaid {
		p.PaidAt = nil
		return
	}
	if p.PaidAt == nil {
		now := r.Now()
		p.PaidAt = &now
	}
}

func merge(s State, p Partial) State {
	if p.IsAuthenticated != nil {
		s.IsAuthenticated = *p.IsAuthenticated
	}
	if p.User != nil {
		s.User = p.User
	}
	if p.CurrentStudentID != nil {
		s.CurrentStudentID = *p.CurrentStudentID
	}
	if p.Students != nil {
		s.Students = p.Students
	}
	if p.Attendance != nil {
		s.Attendance = p.Attendance
	}
	if p.Collections != nil {
		s.Collections = p.Collections
	}
	if p.Payments != nil {
		s.Payments = p.Payments
	}
	if p.Announcements != nil {
		s.Announcements = p.Announcements
	}
	if p.AnnouncementReads != nil {
		s.AnnouncementReads = p.AnnouncementReads
	}
	if p.Requests != nil {
		s.Requests = p.Requests
	}
	return s
}

func appendCopy[T any](in []T, v T) []T {
	out := make([]T, len(in), len(in)+1)
	copy(out, in)
	return append(out, v)
}

// replaceByID swaps the element whose id matches v's; unknown ids are a no-op.
func replaceByID[T any](in []T, v T, id func(T) string) []T {
	out := make([]T, len(in))
	want := id(v)
	for i, x := range in {
		if id(x) == want {
			out[i] = v
		} else {
			out[i] = x
		}
	}
	return out
}
