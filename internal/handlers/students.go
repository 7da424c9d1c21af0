package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/services"
)

// GET /students/?q=&all=1
func StudentsList(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	q := r.URL.Query()
	all := p.IsLeader() && (q.Get("all") == "1" || strings.EqualFold(q.Get("all"), "true"))
	list, err := services.ListStudents(p.FloorID, q.Get("q"), all)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /students/
func StudentCreate(w http.ResponseWriter, r *http.Request) {
	var in services.StudentInput
	if !decode(w, r, &in) {
		return
	}
	st, err := services.CreateStudent(principal(r).FloorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// GET /students/{id}/
func StudentShow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	st, err := services.GetStudent(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PUT /students/{id}/
func StudentUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.StudentInput
	if !decode(w, r, &in) {
		return
	}
	st, err := services.UpdateStudent(principal(r).FloorID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DELETE /students/{id}/ only hides the student.
func StudentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := services.SoftDeleteStudent(principal(r).FloorID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /students/import/ (multipart field "file", or a raw xlsx body)
func StudentsImport(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid", "file: required")
			return
		}
		defer f.Close()
		body = f
	}
	n, err := services.ImportStudentsXLSX(principal(r).FloorID, http.MaxBytesReader(w, body, 10<<20))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": n})
}

// GET /students/export.xlsx
func StudentsExport(w http.ResponseWriter, r *http.Request) {
	data, err := services.ExportStudentsXLSX(principal(r).FloorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("students-%s.xlsx", config.Today())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(data)
}
