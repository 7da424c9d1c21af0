package handlers

import (
	"net/http"

	"github.com/floorwarden/warden/internal/services"
)

// GET /profile/
func ProfileShow(w http.ResponseWriter, r *http.Request) {
	u, err := services.UserByID(principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// PATCH /profile/update/
func ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	u, err := services.UpdateProfile(principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type passwordForm struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// POST /change-password/
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in passwordForm
	if !decode(w, r, &in) {
		return
	}
	if err := services.ChangePassword(principal(r), in.OldPassword, in.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Password changed."})
}
