package handlers

import (
	"net/http"

	"github.com/floorwarden/warden/internal/services"
)

// GET /requests/?status=
func RequestsList(w http.ResponseWriter, r *http.Request) {
	list, err := services.ListRequests(principal(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /requests/
func RequestCreate(w http.ResponseWriter, r *http.Request) {
	var in services.RequestInput
	if !decode(w, r, &in) {
		return
	}
	req, err := services.CreateRequest(principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// PUT /requests/{id}/
func RequestUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.RequestUpdate
	if !decode(w, r, &in) {
		return
	}
	req, err := services.UpdateRequest(principal(r).FloorID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
