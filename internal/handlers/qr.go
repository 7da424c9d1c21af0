package handlers

import (
	"fmt"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/services"
)

// GET /attendance-sessions/{id}/qr.png
func SessionQR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	// ensure the session exists on the caller's floor
	v, err := services.SessionDetail(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Encode the check-in URL so the student app can post to it directly
	base := strings.TrimRight(config.Conf.GetString("PUBLIC_URL"), "/")
	url := fmt.Sprintf("%s/attendance-sessions/%d/checkin/", base, v.Session.ID)

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
