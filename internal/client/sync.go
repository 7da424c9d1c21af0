package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/floorwarden/warden/internal/models"
)

// AttendanceMark is a locally edited roll-call entry. ID is the server
// record id when known; StudentID alone is enough otherwise.
type AttendanceMark struct {
	ID        uint
	StudentID uint
	Status    models.AttendanceStatus
}

// PaymentMark is a locally edited paid flag.
type PaymentMark struct {
	ID        uint
	StudentID uint
	Paid      bool
}

type wireRecord struct {
	ID        uint   `json:"id,omitempty"`
	StudentID uint   `json:"student_id,omitempty"`
	Status    string `json:"status"`
}

type bulkBody struct {
	Records []wireRecord `json:"records"`
}

type bulkResult struct {
	Updated int `json:"updated"`
}

// SyncAttendance pushes marks for a session in one PATCH using the in/out
// vocabulary; late goes out as "in". It does not retry.
func (c *Client) SyncAttendance(ctx context.Context, sessionID uint, marks []AttendanceMark) (int, error) {
	body := bulkBody{Records: make([]wireRecord, 0, len(marks))}
	for _, m := range marks {
		body.Records = append(body.Records, wireRecord{ID: m.ID, StudentID: m.StudentID, Status: m.Status.Wire()})
	}
	var out bulkResult
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/attendance-records/%d/bulk-update/", sessionID), body, &out)
	return out.Updated, err
}

// SyncPayments pushes paid/unpaid marks for a collection in one PATCH.
func (c *Client) SyncPayments(ctx context.Context, collectionID uint, marks []PaymentMark) (int, error) {
	body := bulkBody{Records: make([]wireRecord, 0, len(marks))}
	for _, m := range marks {
		status := models.Unpaid
		if m.Paid {
			status = models.Paid
		}
		body.Records = append(body.Records, wireRecord{ID: m.ID, StudentID: m.StudentID, Status: string(status)})
	}
	var out bulkResult
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/collection-records/%d/bulk-update/", collectionID), body, &out)
	return out.Updated, err
}
