package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/floorwarden/warden/internal/services"
)

// GET /attendance-sessions/ lists sessions for a leader and the caller's
// own records for a student.
func SessionsList(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if !p.IsLeader() {
		recs, err := services.StudentAttendance(p.StudentID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
		return
	}
	list, err := services.ListSessions(p.FloorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type sessionForm struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// POST /attendance-sessions/create/ answers 201 for a new session and 200
// when today's already exists.
func SessionCreate(w http.ResponseWriter, r *http.Request) {
	var in sessionForm
	if r.ContentLength != 0 && !decode(w, r, &in) {
		return
	}
	s, created, err := services.CreateSession(principal(r).FloorID, in.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, s)
}

// GET /attendance-sessions/{id}/
func SessionShow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := services.SessionDetail(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type attendanceBulk struct {
	Records []services.AttendanceMark `json:"records" validate:"required,dive"`
}

// PATCH /attendance-records/{id}/bulk-update/ where id is the session.
func AttendanceBulkUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in attendanceBulk
	if !decode(w, r, &in) {
		return
	}
	n, err := services.BulkUpdateAttendance(principal(r).FloorID, id, in.Records)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// POST /attendance-sessions/{id}/checkin/
func SessionCheckin(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rec, err := services.SelfCheckIn(principal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /attendance-sessions/{id}/export.csv
func SessionCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := services.SessionDetail(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.csv", v.Session.Date)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"Date", "Room", "Student", "Phone", "Status", "UpdatedAt"})
	for _, room := range v.Rooms {
		for _, rec := range room.Items {
			_ = cw.Write([]string{
				v.Session.Date,
				room.Room,
				fullName(rec.Student.Name, rec.Student.LastName),
				rec.Student.Phone,
				string(rec.Status),
				fmtDateTime(rec.UpdatedAt),
			})
		}
	}
}
