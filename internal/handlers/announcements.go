package handlers

import (
	"net/http"

	"github.com/floorwarden/warden/internal/services"
)

// GET /announcements/
func AnnouncementsList(w http.ResponseWriter, r *http.Request) {
	list, err := services.ListAnnouncements(principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /announcements/
func AnnouncementCreate(w http.ResponseWriter, r *http.Request) {
	var in services.AnnouncementInput
	if !decode(w, r, &in) {
		return
	}
	a, err := services.CreateAnnouncement(principal(r).FloorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// POST /announcements/{id}/read/
func AnnouncementRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := services.MarkRead(principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_read": true})
}
