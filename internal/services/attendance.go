package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

// CreateSession opens the floor's roll call for date (today when empty).
// Calling it again for the same date returns the existing session and adds
// records for students enrolled since. New records start absent. Only the
// newest session of the floor stays active.
func CreateSession(floorID uint, date string) (models.AttendanceSession, bool, error) {
	var sess models.AttendanceSession
	date = strings.TrimSpace(date)
	if date == "" {
		date = config.Today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return sess, false, invalid("date %q", date)
	}

	created := false
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		found := tx.Where("floor_id = ? AND date = ?", floorID, date).Limit(1).Find(&sess)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected == 0 {
			// a backdated roll call must not close a newer session
			var newer int64
			if err := tx.Model(&models.AttendanceSession{}).
				Where("floor_id = ? AND date > ?", floorID, date).
				Count(&newer).Error; err != nil {
				return err
			}
			if newer == 0 {
				if err := tx.Model(&models.AttendanceSession{}).
					Where("floor_id = ? AND is_active = ? AND date < ?", floorID, true, date).
					Update("is_active", false).Error; err != nil {
					return err
				}
			}
			sess = models.AttendanceSession{FloorID: floorID, Date: date, IsActive: newer == 0}
			if err := tx.Create(&sess).Error; err != nil {
				return err
			}
			created = true
		}

		var missing []models.Student
		if err := tx.Where("floor_id = ? AND is_deleted = ?", floorID, false).
			Where("id NOT IN (?)", tx.Model(&models.AttendanceRecord{}).Select("student_id").Where("session_id = ?", sess.ID)).
			Find(&missing).Error; err != nil {
			return err
		}
		if len(missing) == 0 {
			return nil
		}
		recs := make([]models.AttendanceRecord, 0, len(missing))
		for _, s := range missing {
			recs = append(recs, models.AttendanceRecord{
				SessionID: sess.ID,
				StudentID: s.ID,
				Date:      date,
				Status:    models.Absent,
			})
		}
		return tx.CreateInBatches(&recs, 200).Error
	})
	if err != nil {
		return sess, false, err
	}
	invalidateStats(floorID)
	return sess, created, nil
}

type AttendanceStats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Rate    int `json:"rate"` // present over total, %
}

func (s *AttendanceStats) add(st models.AttendanceStatus) {
	s.Total++
	switch st {
	case models.Present:
		s.Present++
	case models.Late:
		s.Late++
	default:
		s.Absent++
	}
}

type SessionSummary struct {
	models.AttendanceSession
	AttendanceStats
}

func ListSessions(floorID uint) ([]SessionSummary, error) {
	var sessions []models.AttendanceSession
	if err := db.Conn().Where("floor_id = ?", floorID).Order("date desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []SessionSummary{}, nil
	}
	ids := make([]uint, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	var rows []struct {
		SessionID uint
		Total     int
		Present   int
		Late      int
		Absent    int
	}
	if err := db.Conn().Table("attendance_records").
		Select(`session_id, COUNT(*) AS total,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS present,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS late,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS absent`,
			models.Present, models.Late, models.Absent).
		Where("session_id IN ?", ids).
		Group("session_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]AttendanceStats, len(rows))
	for _, r := range rows {
		byID[r.SessionID] = AttendanceStats{
			Total: r.Total, Present: r.Present, Late: r.Late, Absent: r.Absent,
			Rate: percent(int64(r.Present), int64(r.Total)),
		}
	}

	out := make([]SessionSummary, len(sessions))
	for i, s := range sessions {
		out[i] = SessionSummary{AttendanceSession: s, AttendanceStats: byID[s.ID]}
	}
	return out, nil
}

type SessionDetailView struct {
	Session models.AttendanceSession             `json:"session"`
	Rooms   []RoomGroup[models.AttendanceRecord] `json:"rooms"`
	Stats   AttendanceStats                      `json:"stats"`
}

func getSession(floorID, id uint) (models.AttendanceSession, error) {
	var s models.AttendanceSession
	err := db.Conn().Where("floor_id = ?", floorID).First(&s, id).Error
	return s, notFound(err, "attendance session")
}

// SessionDetail lists the session's records grouped by room. Students removed
// after the roll call stay in, flagged by student.is_deleted.
func SessionDetail(floorID, id uint) (SessionDetailView, error) {
	var v SessionDetailView
	s, err := getSession(floorID, id)
	if err != nil {
		return v, err
	}
	v.Session = s

	var recs []models.AttendanceRecord
	if err := db.Conn().Preload("Student").
		Where("session_id = ?", id).
		Order("id asc").
		Find(&recs).Error; err != nil {
		return v, err
	}
	for _, r := range recs {
		v.Stats.add(r.Status)
	}
	v.Stats.Rate = percent(int64(v.Stats.Present), int64(v.Stats.Total))
	v.Rooms = groupByRoom(recs, func(r models.AttendanceRecord) string { return r.Student.Room })
	return v, nil
}

// AttendanceMark addresses a record by id, or by student when id is zero.
type AttendanceMark struct {
	ID        uint                    `json:"id"`
	StudentID uint                    `json:"student_id"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// BulkUpdateAttendance applies all marks to the session in one transaction.
func BulkUpdateAttendance(floorID, sessionID uint, marks []AttendanceMark) (int, error) {
	if _, err := getSession(floorID, sessionID); err != nil {
		return 0, err
	}
	changed := 0
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		for _, m := range marks {
			var rec models.AttendanceRecord
			q := tx.Where("session_id = ?", sessionID)
			switch {
			case m.ID != 0:
				q = q.Where("id = ?", m.ID)
			case m.StudentID != 0:
				q = q.Where("student_id = ?", m.StudentID)
			default:
				return invalid("mark needs id or student_id")
			}
			if err := q.First(&rec).Error; err != nil {
				// the client may still hold a record id from another session
				if m.ID != 0 && m.StudentID != 0 {
					err = tx.Where("session_id = ? AND student_id = ?", sessionID, m.StudentID).First(&rec).Error
				}
				if err != nil {
					return notFound(err, fmt.Sprintf("attendance record %d/%d", m.ID, m.StudentID))
				}
			}
			if rec.Status == m.Status {
				continue
			}
			if err := tx.Model(&rec).Update("status", m.Status).Error; err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	invalidateStats(floorID)
	return changed, nil
}

// SelfCheckIn marks the calling student present in an active session of
// their own floor.
func SelfCheckIn(p Principal, sessionID uint) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	if p.StudentID == 0 {
		return rec, fmt.Errorf("check-in is for students: %w", ErrForbidden)
	}
	var sess models.AttendanceSession
	if err := db.Conn().First(&sess, sessionID).Error; err != nil {
		return rec, notFound(err, "attendance session")
	}
	if sess.FloorID != p.FloorID {
		return rec, fmt.Errorf("session of another floor: %w", ErrForbidden)
	}
	if !sess.IsActive {
		return rec, fmt.Errorf("session is closed: %w", ErrConflict)
	}

	err := db.Conn().
		Where(models.AttendanceRecord{SessionID: sess.ID, StudentID: p.StudentID}).
		Attrs(models.AttendanceRecord{Date: sess.Date, Status: models.Absent}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return rec, err
	}
	if rec.Status != models.Present {
		if err := db.Conn().Model(&rec).Update("status", models.Present).Error; err != nil {
			return rec, err
		}
		rec.Status = models.Present
	}
	invalidateStats(sess.FloorID)
	return rec, nil
}

func StudentAttendance(studentID uint) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := db.Conn().Where("student_id = ?", studentID).Order("date desc").Find(&out).Error
	return out, err
}
