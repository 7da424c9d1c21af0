package services

import (
	"errors"
	"testing"
	"time"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

func TestLinkCode_SingleUse(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	st := seedStudent(t, f.ID, "Aziz", "101")

	lc, err := GenerateLinkCode(st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lc.Code) != 6 {
		t.Fatalf("code %q is not 6 digits", lc.Code)
	}

	got, err := ConsumeLinkCode(" " + lc.Code + " ")
	if err != nil || got.ID != st.ID {
		t.Fatalf("consume: %+v, %v", got, err)
	}
	if _, err := ConsumeLinkCode(lc.Code); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reuse err = %v, want ErrNotFound", err)
	}
}

func TestLinkCode_Expired(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	st := seedStudent(t, f.ID, "Aziz", "101")

	lc := models.LinkCode{Code: "123456", StudentID: st.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := db.Conn().Create(&lc).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := ConsumeLinkCode("123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired err = %v, want ErrNotFound", err)
	}
}
