package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AttendanceStatus: "present" | "late" | "absent"
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Late    AttendanceStatus = "late"
	Absent  AttendanceStatus = "absent"
)

// PaymentStatus is the two-value label used by bulk payment updates.
type PaymentStatus string

const (
	Paid   PaymentStatus = "paid"
	Unpaid PaymentStatus = "unpaid"
)

// RequestStatus: "open" | "in_progress" | "resolved"
type RequestStatus string

const (
	RequestOpen       RequestStatus = "open"
	RequestInProgress RequestStatus = "in_progress"
	RequestResolved   RequestStatus = "resolved"
)

// DutyStatus: "assigned" | "done" | "missed"
type DutyStatus string

const (
	DutyAssigned DutyStatus = "assigned"
	DutyDone     DutyStatus = "done"
	DutyMissed   DutyStatus = "missed"
)

// Older clients send Uzbek labels with assorted apostrophes (’ ‘ ` ´ ʻ ʼ).
var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'", "´", "'", "ʻ", "'", "ʼ", "'")

func normLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(apostrophes.Replace(s)))
}

var attendanceLabels = map[string]AttendanceStatus{
	"present": Present, "hozir": Present, "in": Present,
	"late": Late, "kech": Late,
	"absent": Absent, "yoq": Absent, "yo'q": Absent, "out": Absent,
}

var paymentLabels = map[string]PaymentStatus{
	"paid": Paid, "to'lagan": Paid, "to'langan": Paid, "true": Paid,
	"unpaid": Unpaid, "to'lamagan": Unpaid, "to'lanmagan": Unpaid, "false": Unpaid,
}

var requestLabels = map[string]RequestStatus{
	"open": RequestOpen, "ochiq": RequestOpen,
	"in_progress": RequestInProgress, "jarayonda": RequestInProgress,
	"resolved": RequestResolved, "hal_qilindi": RequestResolved,
}

var dutyLabels = map[string]DutyStatus{
	"assigned": DutyAssigned, "tayinlangan": DutyAssigned,
	"done": DutyDone, "bajarilgan": DutyDone,
	"missed": DutyMissed, "bajarilmagan": DutyMissed,
}

func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	if v, ok := attendanceLabels[normLabel(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown attendance status %q", s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if v, ok := paymentLabels[normLabel(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func ParseRequestStatus(s string) (RequestStatus, error) {
	if v, ok := requestLabels[normLabel(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

func ParseDutyStatus(s string) (DutyStatus, error) {
	if v, ok := dutyLabels[normLabel(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown duty status %q", s)
}

// Wire returns the two-value vocabulary used by bulk attendance sync.
// Late students are in the building, so they go out as "in".
func (s AttendanceStatus) Wire() string {
	if s == Absent {
		return "out"
	}
	return "in"
}

func (s *AttendanceStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseAttendanceStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParsePaymentStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *RequestStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseRequestStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *DutyStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseDutyStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
