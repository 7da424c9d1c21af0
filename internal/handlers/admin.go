package handlers

import (
	"net/http"

	"github.com/floorwarden/warden/internal/services"
)

// GET /floor-leaders/
func FloorLeadersList(w http.ResponseWriter, r *http.Request) {
	list, err := services.ListFloorLeaders()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /floor-leaders/
func FloorLeaderCreate(w http.ResponseWriter, r *http.Request) {
	var in services.FloorLeaderInput
	if !decode(w, r, &in) {
		return
	}
	fl, err := services.CreateFloorLeader(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fl)
}

// GET /statistic-for-leader/
func LeaderStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := services.LeaderStatistics(r.Context(), principal(r).FloorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /statistic-for-student/
func StudentStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := services.StudentStatistics(r.Context(), principal(r).StudentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /duty/
func DutyList(w http.ResponseWriter, r *http.Request) {
	b, err := services.ListDuty(principal(r).FloorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /duty/
func DutyAssign(w http.ResponseWriter, r *http.Request) {
	var in services.DutyInput
	if r.ContentLength != 0 && !decode(w, r, &in) {
		return
	}
	d, err := services.AssignDuty(principal(r).FloorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// PATCH /duty/{id}/
func DutyMark(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.DutyUpdate
	if !decode(w, r, &in) {
		return
	}
	d, err := services.MarkDuty(principal(r).FloorID, id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
