package state

import (
	"math"
	"strings"

	"github.com/floorwarden/warden/internal/models"
)

type AttendanceSummary struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Late    int    `json:"late"`
	Absent  int    `json:"absent"`
	Total   int    `json:"total"`
}

type LeaderStats struct {
	ActiveStudents   int               `json:"activeStudents"`
	Today            AttendanceSummary `json:"today"`
	AttendanceRate   int               `json:"attendanceRate"`
	TotalCollections int64             `json:"totalCollections"`
	Expected         int64             `json:"expected"`
	TotalCollected   int64             `json:"totalCollected"`
	Outstanding      int64             `json:"outstanding"`
	CollectionRate   int               `json:"collectionRate"`
	OpenRequests     int               `json:"openRequests"`
}

type StudentStats struct {
	AttendanceCount int   `json:"attendanceCount"`
	AttendanceRate  int   `json:"attendanceRate"`
	PaidCount       int   `json:"paidCount"`
	PaymentCount    int   `json:"paymentCount"`
	TotalAmount     int64 `json:"totalAmount"`
	PaidAmount      int64 `json:"paidAmount"`
	OpenRequests    int   `json:"openRequests"`
}

// percent rounds n/d*100 to the nearest integer; 0 when d is 0.
func percent(n, d float64) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(n / d * 100))
}

func ActiveStudents(s State) []Student {
	out := make([]Student, 0, len(s.Students))
	for _, st := range s.Students {
		if !st.IsDeleted {
			out = append(out, st)
		}
	}
	return out
}

// SearchStudents matches name or room case-insensitively, or a phone
// substring, among active students. An empty term returns all of them.
func SearchStudents(s State, term string) []Student {
	active := ActiveStudents(s)
	if term == "" {
		return active
	}
	lt := strings.ToLower(term)
	out := active[:0]
	for _, st := range active {
		if strings.Contains(strings.ToLower(st.Name), lt) ||
			strings.Contains(strings.ToLower(st.Room), lt) ||
			strings.Contains(st.Phone, term) {
			out = append(out, st)
		}
	}
	return out
}

func SummarizeAttendance(s State, date string) AttendanceSummary {
	sum := AttendanceSummary{Date: date}
	for _, rec := range s.Attendance {
		if rec.Date != date {
			continue
		}
		switch rec.Status {
		case models.Present:
			sum.Present++
		case models.Late:
			sum.Late++
		case models.Absent:
			sum.Absent++
		}
	}
	sum.Total = sum.Present + sum.Late + sum.Absent
	return sum
}

func Leader(s State, today string) LeaderStats {
	active := len(ActiveStudents(s))
	st := LeaderStats{
		ActiveStudents: active,
		Today:          SummarizeAttendance(s, today),
	}
	st.AttendanceRate = percent(float64(st.Today.Present), float64(active))

	for _, c := range s.Collections {
		st.TotalCollections += c.Amount
	}
	for _, p := range s.Payments {
		if p.IsPaid {
			st.TotalCollected += p.Amount
		}
	}
	st.Expected = st.TotalCollections * int64(active)
	st.Outstanding = st.Expected - st.TotalCollected
	st.CollectionRate = percent(float64(st.TotalCollected), float64(st.Expected))

	for _, r := range s.Requests {
		if r.Status == models.RequestOpen {
			st.OpenRequests++
		}
	}
	return st
}

func ForStudent(s State, studentID string) StudentStats {
	var st StudentStats
	present := 0
	for _, rec := range s.Attendance {
		if rec.StudentID != studentID {
			continue
		}
		st.AttendanceCount++
		if rec.Status == models.Present {
			present++
		}
	}
	st.AttendanceRate = percent(float64(present), float64(st.AttendanceCount))

	for _, p := range s.Payments {
		if p.StudentID != studentID {
			continue
		}
		st.PaymentCount++
		st.TotalAmount += p.Amount
		if p.IsPaid {
			st.PaidCount++
			st.PaidAmount += p.Amount
		}
	}
	for _, r := range s.Requests {
		if r.StudentID == studentID && r.Status == models.RequestOpen {
			st.OpenRequests++
		}
	}
	return st
}

// UnreadAnnouncements counts announcements studentID has not marked read.
func UnreadAnnouncements(s State, studentID string) int {
	read := make(map[string]bool, len(s.AnnouncementReads))
	for _, rd := range s.AnnouncementReads {
		if rd.StudentID == studentID {
			read[rd.AnnouncementID] = true
		}
	}
	n := 0
	for _, a := range s.Announcements {
		if !read[a.ID] {
			n++
		}
	}
	return n
}
