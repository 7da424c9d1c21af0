package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

func TestCreateCollection_OnePaymentPerActiveStudent(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 3)
	a := seedStudent(t, f.ID, "Aziz", "301")
	b := seedStudent(t, f.ID, "Bekzod", "302")
	gone := seedStudent(t, f.ID, "Sardor", "302")
	require.NoError(t, SoftDeleteStudent(f.ID, gone.ID))
	other := seedFloor(t, 4)
	seedStudent(t, other.ID, "Other", "401")

	c, n, err := CreateCollection(f.ID, CollectionInput{Title: "Internet", Amount: 20000, Deadline: "2026-11-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NotNil(t, c.DueDate)

	var payments []models.Payment
	require.NoError(t, db.Conn().Where("collection_id = ?", c.ID).Order("student_id").Find(&payments).Error)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, int64(20000), p.Amount)
		assert.False(t, p.IsPaid)
		assert.Nil(t, p.PaidAt)
	}
	assert.Equal(t, a.ID, payments[0].StudentID)
	assert.Equal(t, b.ID, payments[1].StudentID)
}

func TestCreateCollection_Invalid(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)

	_, _, err := CreateCollection(f.ID, CollectionInput{Title: "x", Amount: 0})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, _, err = CreateCollection(f.ID, CollectionInput{Title: "x", Amount: 10, Deadline: "next week"})
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestTogglePayment_SetsAndClearsPaidAt(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	seedStudent(t, f.ID, "Aziz", "101")
	c, _, err := CreateCollection(f.ID, CollectionInput{Title: "Cleaning", Amount: 5000})
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.Conn().Where("collection_id = ?", c.ID).First(&p).Error)

	p, err = TogglePayment(f.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, p.IsPaid)
	require.NotNil(t, p.PaidAt)

	var stored models.Payment
	require.NoError(t, db.Conn().First(&stored, p.ID).Error)
	assert.True(t, stored.IsPaid)
	assert.NotNil(t, stored.PaidAt)

	p, err = TogglePayment(f.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, p.IsPaid)
	assert.Nil(t, p.PaidAt)

	require.NoError(t, db.Conn().First(&stored, p.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.Nil(t, stored.PaidAt)

	// another floor's leader cannot reach it
	other := seedFloor(t, 2)
	_, err = TogglePayment(other.ID, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBulkUpdatePayments(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	a := seedStudent(t, f.ID, "Aziz", "101")
	b := seedStudent(t, f.ID, "Bekzod", "102")
	c, _, err := CreateCollection(f.ID, CollectionInput{Title: "Repairs", Amount: 10000})
	require.NoError(t, err)

	var pa models.Payment
	require.NoError(t, db.Conn().Where("collection_id = ? AND student_id = ?", c.ID, a.ID).First(&pa).Error)

	n, err := BulkUpdatePayments(f.ID, c.ID, []PaymentMark{
		{ID: pa.ID, Status: models.Paid},
		{StudentID: b.ID, Status: models.Paid},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := CollectionDetail(f.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStats{Total: 2, Paid: 2, Unpaid: 0, Collected: 20000, Expected: 20000}, v.Stats)
	require.Len(t, v.Rooms, 2)
	assert.Equal(t, "101", v.Rooms[0].Room)

	// an unknown mark rolls back the batch
	_, err = BulkUpdatePayments(f.ID, c.ID, []PaymentMark{
		{ID: pa.ID, Status: models.Unpaid},
		{ID: 9999, Status: models.Unpaid},
	})
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, db.Conn().First(&pa, pa.ID).Error)
	assert.True(t, pa.IsPaid)
}

func TestListCollections_Counts(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	seedStudent(t, f.ID, "Aziz", "101")
	b := seedStudent(t, f.ID, "Bekzod", "102")
	c, _, err := CreateCollection(f.ID, CollectionInput{Title: "Water", Amount: 3000})
	require.NoError(t, err)
	_, err = BulkUpdatePayments(f.ID, c.ID, []PaymentMark{{StudentID: b.ID, Status: models.Paid}})
	require.NoError(t, err)

	list, err := ListCollections(f.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].Total)
	assert.Equal(t, int64(1), list[0].PaidCount)
	assert.Equal(t, int64(3000), list[0].Collected)
	assert.Equal(t, int64(6000), list[0].Expected)

	dues, err := StudentPayments(b.ID)
	require.NoError(t, err)
	require.Len(t, dues, 1)
	assert.Equal(t, "Water", dues[0].Title)
	assert.True(t, dues[0].IsPaid)
}

func TestSoftDelete_KeepsHistory(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 1)
	st := seedStudent(t, f.ID, "Aziz", "101")
	c, _, err := CreateCollection(f.ID, CollectionInput{Title: "Water", Amount: 3000})
	require.NoError(t, err)

	require.NoError(t, SoftDeleteStudent(f.ID, st.ID))

	active, err := ListStudents(f.ID, "", false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := ListStudents(f.ID, "", true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted)

	v, err := CollectionDetail(f.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Stats.Total)
}
