package services

import (
	"errors"
	"testing"
	"time"

	"github.com/floorwarden/warden/internal/events"
	"github.com/floorwarden/warden/internal/models"
)

func TestRequests_Flow(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	a := seedStudent(t, f.ID, "Aziz", "101")
	b := seedStudent(t, f.ID, "Bekzod", "102")
	pa := Principal{Role: RoleStudent, FloorID: f.ID, StudentID: a.ID}
	pb := Principal{Role: RoleStudent, FloorID: f.ID, StudentID: b.ID}
	leader := Principal{Role: RoleLeader, FloorID: f.ID}

	r, err := CreateRequest(pa, RequestInput{Title: "Broken window"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != models.RequestOpen {
		t.Fatalf("new request status = %q, want open", r.Status)
	}
	if _, err := CreateRequest(pb, RequestInput{Title: "No hot water"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateRequest(leader, RequestInput{Title: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("leader create err = %v, want ErrForbidden", err)
	}

	own, _ := ListRequests(pa, "")
	if len(own) != 1 || own[0].ID != r.ID {
		t.Fatalf("student sees %d requests, want only own", len(own))
	}
	all, _ := ListRequests(leader, "")
	if len(all) != 2 {
		t.Fatalf("leader sees %d requests, want 2", len(all))
	}

	notified := make(chan models.Request, 1)
	events.OnRequestStatus = func(r models.Request) { notified <- r }
	defer func() { events.OnRequestStatus = nil }()

	upd, err := UpdateRequest(f.ID, r.ID, RequestUpdate{Status: models.RequestInProgress})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Title != "Broken window" || upd.Status != models.RequestInProgress {
		t.Fatalf("update lost fields: %+v", upd)
	}
	select {
	case n := <-notified:
		if n.Student.ID != a.ID {
			t.Fatalf("notified for student %d, want %d", n.Student.ID, a.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnRequestStatus not called")
	}

	// legacy label filter
	open, err := ListRequests(leader, "ochiq")
	if err != nil || len(open) != 1 {
		t.Fatalf("open filter: %d, %v", len(open), err)
	}
	if _, err := ListRequests(leader, "whatever"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("bad filter err = %v", err)
	}

	if _, err := UpdateRequest(f.ID+1, r.ID, RequestUpdate{Status: models.RequestResolved}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-floor update err = %v", err)
	}
}
