package models

import (
	"encoding/json"
	"testing"
)

func TestParseAttendanceStatus_LegacyLabels(t *testing.T) {
	cases := map[string]AttendanceStatus{
		"hozir":   Present,
		"Hozir":   Present,
		"in":      Present,
		"present": Present,
		"kech":    Late,
		"Kech":    Late,
		"yoq":     Absent,
		"Yo'q":    Absent,
		"Yo’q":    Absent,
		"out":     Absent,
	}
	for in, want := range cases {
		got, err := ParseAttendanceStatus(in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: want %q, got %q", in, want, got)
		}
	}
	if _, err := ParseAttendanceStatus("maybe"); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestAttendanceStatus_Wire(t *testing.T) {
	if Present.Wire() != "in" || Late.Wire() != "in" || Absent.Wire() != "out" {
		t.Errorf("wire mapping: present=%s late=%s absent=%s", Present.Wire(), Late.Wire(), Absent.Wire())
	}
}

func TestParsePaymentStatus_Apostrophes(t *testing.T) {
	for _, in := range []string{"To'lagan", "To`lagan", "To‘langan", "paid"} {
		if got, err := ParsePaymentStatus(in); err != nil || got != Paid {
			t.Errorf("%q: want paid, got %q (%v)", in, got, err)
		}
	}
	for _, in := range []string{"To'lamagan", "unpaid"} {
		if got, err := ParsePaymentStatus(in); err != nil || got != Unpaid {
			t.Errorf("%q: want unpaid, got %q (%v)", in, got, err)
		}
	}
}

func TestRequestStatus_UnmarshalJSON(t *testing.T) {
	var body struct {
		Status RequestStatus `json:"status"`
	}
	if err := json.Unmarshal([]byte(`{"status":"jarayonda"}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != RequestInProgress {
		t.Errorf("want in_progress, got %q", body.Status)
	}
	if err := json.Unmarshal([]byte(`{"status":"closed"}`), &body); err == nil {
		t.Error("expected error for unknown request status")
	}
}

func TestParseDutyStatus(t *testing.T) {
	if s, _ := ParseDutyStatus("bajarilgan"); s != DutyDone {
		t.Errorf("want done, got %q", s)
	}
	if s, _ := ParseDutyStatus("bajarilmagan"); s != DutyMissed {
		t.Errorf("want missed, got %q", s)
	}
}
