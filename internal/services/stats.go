package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/floorwarden/warden/internal/cache"
	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

var statsCache cache.Cache = cache.NewMemory()

// SetCache swaps the leader statistics cache (Redis in production).
func SetCache(c cache.Cache) {
	if c != nil {
		statsCache = c
	}
}

func leaderStatsKey(floorID uint) string {
	return fmt.Sprintf("warden:stats:leader:%d", floorID)
}

// invalidateStats drops the cached dashboard after any write that changes
// its inputs. Failures only cost a stale read until the TTL runs out.
func invalidateStats(floorID uint) {
	if err := statsCache.Delete(context.Background(), leaderStatsKey(floorID)); err != nil {
		log.Printf("stats cache delete floor=%d: %v", floorID, err)
	}
}

func percent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

type LeaderStats struct {
	ActiveStudents   int64 `json:"active_students"`
	CollectionDegree int   `json:"collection_degree"` // % of expected dues collected
	TodayAttendance  int   `json:"today_attendance"`  // % of active students present today

	Present      int64 `json:"present"`
	Late         int64 `json:"late"`
	Absent       int64 `json:"absent"`
	Expected     int64 `json:"expected"`
	Collected    int64 `json:"collected"`
	OpenRequests int64 `json:"open_requests"`
}

type attendanceCounts struct {
	Present int64
	Late    int64
	Absent  int64
}

// LeaderStatistics computes the floor dashboard, served from cache when warm.
func LeaderStatistics(ctx context.Context, floorID uint) (LeaderStats, error) {
	var st LeaderStats
	key := leaderStatsKey(floorID)
	if b, err := statsCache.Get(ctx, key); err == nil {
		if json.Unmarshal(b, &st) == nil {
			return st, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("stats cache get %s: %v", key, err)
	}

	conn := db.Conn().WithContext(ctx)
	if err := conn.Model(&models.Student{}).
		Where("floor_id = ? AND is_deleted = ?", floorID, false).
		Count(&st.ActiveStudents).Error; err != nil {
		return st, err
	}

	var money struct {
		Expected  int64
		Collected int64
	}
	if err := conn.Table("payments").
		Select("COALESCE(SUM(payments.amount),0) AS expected, COALESCE(SUM(CASE WHEN payments.is_paid THEN payments.amount ELSE 0 END),0) AS collected").
		Joins("JOIN collections ON collections.id = payments.collection_id").
		Where("collections.floor_id = ?", floorID).
		Scan(&money).Error; err != nil {
		return st, err
	}
	st.Expected, st.Collected = money.Expected, money.Collected
	st.CollectionDegree = percent(st.Collected, st.Expected)

	var att attendanceCounts
	if err := conn.Table("attendance_records").
		Select(`COALESCE(SUM(CASE WHEN attendance_records.status = ? THEN 1 ELSE 0 END),0) AS present,
			COALESCE(SUM(CASE WHEN attendance_records.status = ? THEN 1 ELSE 0 END),0) AS late,
			COALESCE(SUM(CASE WHEN attendance_records.status = ? THEN 1 ELSE 0 END),0) AS absent`,
			models.Present, models.Late, models.Absent).
		Joins("JOIN attendance_sessions ON attendance_sessions.id = attendance_records.session_id").
		Joins("JOIN students ON students.id = attendance_records.student_id").
		Where("attendance_sessions.floor_id = ? AND attendance_sessions.date = ? AND students.is_deleted = ?",
			floorID, config.Today(), false).
		Scan(&att).Error; err != nil {
		return st, err
	}
	st.Present, st.Late, st.Absent = att.Present, att.Late, att.Absent
	st.TodayAttendance = percent(st.Present, st.ActiveStudents)

	if err := conn.Model(&models.Request{}).
		Joins("JOIN students ON students.id = requests.student_id").
		Where("students.floor_id = ? AND requests.status = ?", floorID, models.RequestOpen).
		Count(&st.OpenRequests).Error; err != nil {
		return st, err
	}

	if b, err := json.Marshal(st); err == nil {
		if err := statsCache.Set(ctx, key, b, config.Conf.GetDuration("STATS_CACHE_TTL")); err != nil {
			log.Printf("stats cache set %s: %v", key, err)
		}
	}
	return st, nil
}

type StudentStats struct {
	AttendanceRate  int   `json:"attendance_rate"`
	AttendanceCount int64 `json:"attendance_count"`
	PresentCount    int64 `json:"present_count"`
	PaidAmount      int64 `json:"paid_amount"`
	TotalAmount     int64 `json:"total_amount"`
	OpenRequests    int64 `json:"open_requests"`
}

// StudentStatistics is the caller's own dashboard. Not cached.
func StudentStatistics(ctx context.Context, studentID uint) (StudentStats, error) {
	var st StudentStats
	conn := db.Conn().WithContext(ctx)

	var att struct {
		Total   int64
		Present int64
	}
	if err := conn.Model(&models.AttendanceRecord{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),0) AS present", models.Present).
		Where("student_id = ?", studentID).
		Scan(&att).Error; err != nil {
		return st, err
	}
	st.AttendanceCount, st.PresentCount = att.Total, att.Present
	st.AttendanceRate = percent(att.Present, att.Total)

	var money struct {
		Total int64
		Paid  int64
	}
	if err := conn.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount),0) AS total, COALESCE(SUM(CASE WHEN is_paid THEN amount ELSE 0 END),0) AS paid").
		Where("student_id = ?", studentID).
		Scan(&money).Error; err != nil {
		return st, err
	}
	st.TotalAmount, st.PaidAmount = money.Total, money.Paid

	err := conn.Model(&models.Request{}).
		Where("student_id = ? AND status = ?", studentID, models.RequestOpen).
		Count(&st.OpenRequests).Error
	return st, err
}
