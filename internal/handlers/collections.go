package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/floorwarden/warden/internal/services"
)

// GET /collections/ lists the floor's collections for a leader and the
// caller's own dues for a student.
func CollectionsList(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if !p.IsLeader() {
		dues, err := services.StudentPayments(p.StudentID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dues)
		return
	}
	list, err := services.ListCollections(p.FloorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /collections/create/
func CollectionCreate(w http.ResponseWriter, r *http.Request) {
	var in services.CollectionInput
	if !decode(w, r, &in) {
		return
	}
	c, n, err := services.CreateCollection(principal(r).FloorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"collection": c, "payments_created": n})
}

// GET /collections/{id}/
func CollectionShow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := services.CollectionDetail(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type paymentBulk struct {
	Records []services.PaymentMark `json:"records" validate:"required,dive"`
}

// PATCH /collection-records/{id}/bulk-update/ where id is the collection.
func PaymentsBulkUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in paymentBulk
	if !decode(w, r, &in) {
		return
	}
	n, err := services.BulkUpdatePayments(principal(r).FloorID, id, in.Records)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// PATCH /payments/{id}/toggle/
func PaymentToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := services.TogglePayment(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /collections/{id}/export.csv
func CollectionCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := services.CollectionDetail(principal(r).FloorID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("collection-%d.csv", v.Collection.ID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"Room", "Student", "Phone", "Amount", "Status", "PaidAt"})
	for _, room := range v.Rooms {
		for _, p := range room.Items {
			status, paidStr := "unpaid", ""
			if p.IsPaid {
				status = "paid"
			}
			if p.PaidAt != nil {
				paidStr = fmtDateTime(*p.PaidAt)
			}
			_ = cw.Write([]string{
				room.Room,
				fullName(p.Student.Name, p.Student.LastName),
				p.Student.Phone,
				strconv.FormatInt(p.Amount, 10),
				status,
				paidStr,
			})
		}
	}
}
