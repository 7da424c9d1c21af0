package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

type CollectionInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Description string `json:"description" validate:"max=2000"`
	Deadline    string `json:"deadline"` // YYYY-MM-DD or RFC3339, optional
}

// parseDeadline reads a date as end of day in the configured timezone.
// Deadlines are stored in UTC so SQLite compares them as text correctly.
func parseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, config.Location())
	if err != nil {
		return nil, invalid("deadline %q", s)
	}
	d = d.Add(24*time.Hour - time.Second).UTC()
	return &d, nil
}

// CreateCollection stores the collection and one unpaid payment per active
// student on the floor, all or nothing.
func CreateCollection(floorID uint, in CollectionInput) (models.Collection, int, error) {
	c := models.Collection{
		FloorID:     floorID,
		Title:       strings.TrimSpace(in.Title),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}
	if c.Title == "" || c.Amount <= 0 {
		return c, 0, invalid("title and a positive amount are required")
	}
	due, err := parseDeadline(in.Deadline)
	if err != nil {
		return c, 0, err
	}
	c.DueDate = due

	var n int
	err = db.Conn().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		var students []models.Student
		if err := tx.Where("floor_id = ? AND is_deleted = ?", floorID, false).Find(&students).Error; err != nil {
			return err
		}
		if len(students) == 0 {
			return nil
		}
		payments := make([]models.Payment, 0, len(students))
		for _, s := range students {
			payments = append(payments, models.Payment{
				CollectionID: c.ID,
				StudentID:    s.ID,
				Amount:       c.Amount,
			})
		}
		n = len(payments)
		return tx.CreateInBatches(&payments, 200).Error
	})
	if err != nil {
		return c, 0, err
	}
	invalidateStats(floorID)
	return c, n, nil
}

type CollectionSummary struct {
	models.Collection
	Total     int64 `json:"total"`
	PaidCount int64 `json:"paid_count"`
	Collected int64 `json:"collected"`
	Expected  int64 `json:"expected"`
}

func ListCollections(floorID uint) ([]CollectionSummary, error) {
	var cols []models.Collection
	if err := db.Conn().Where("floor_id = ?", floorID).Order("created_at desc, id desc").Find(&cols).Error; err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return []CollectionSummary{}, nil
	}
	ids := make([]uint, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}

	var rows []struct {
		CollectionID uint
		Total        int64
		Paid         int64
		Collected    int64
		Expected     int64
	}
	if err := db.Conn().Table("payments").
		Select(`collection_id, COUNT(*) AS total,
			SUM(CASE WHEN is_paid THEN 1 ELSE 0 END) AS paid,
			SUM(CASE WHEN is_paid THEN amount ELSE 0 END) AS collected,
			SUM(amount) AS expected`).
		Where("collection_id IN ?", ids).
		Group("collection_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	agg := make(map[uint]int, len(rows))
	for i, r := range rows {
		agg[r.CollectionID] = i
	}

	out := make([]CollectionSummary, len(cols))
	for i, c := range cols {
		out[i].Collection = c
		if j, ok := agg[c.ID]; ok {
			r := rows[j]
			out[i].Total, out[i].PaidCount = r.Total, r.Paid
			out[i].Collected, out[i].Expected = r.Collected, r.Expected
		}
	}
	return out, nil
}

type PaymentStats struct {
	Total     int   `json:"total"`
	Paid      int   `json:"paid"`
	Unpaid    int   `json:"unpaid"`
	Collected int64 `json:"collected"`
	Expected  int64 `json:"expected"`
}

type CollectionDetailView struct {
	Collection models.Collection           `json:"collection"`
	Rooms      []RoomGroup[models.Payment] `json:"rooms"`
	Stats      PaymentStats                `json:"stats"`
}

func getCollection(floorID, id uint) (models.Collection, error) {
	var c models.Collection
	err := db.Conn().Where("floor_id = ?", floorID).First(&c, id).Error
	return c, notFound(err, "collection")
}

// CollectionDetail returns every payment of the collection grouped by the
// student's room. Payments of soft-deleted students are kept.
func CollectionDetail(floorID, id uint) (CollectionDetailView, error) {
	var v CollectionDetailView
	c, err := getCollection(floorID, id)
	if err != nil {
		return v, err
	}
	v.Collection = c

	var payments []models.Payment
	if err := db.Conn().Preload("Student").Where("collection_id = ?", id).Order("id asc").Find(&payments).Error; err != nil {
		return v, err
	}
	for _, p := range payments {
		v.Stats.Total++
		v.Stats.Expected += p.Amount
		if p.IsPaid {
			v.Stats.Paid++
			v.Stats.Collected += p.Amount
		} else {
			v.Stats.Unpaid++
		}
	}
	v.Rooms = groupByRoom(payments, func(p models.Payment) string { return p.Student.Room })
	return v, nil
}

// PaymentMark addresses a payment by id, or by student when id is zero.
type PaymentMark struct {
	ID        uint                 `json:"id"`
	StudentID uint                 `json:"student_id"`
	Status    models.PaymentStatus `json:"status" validate:"required"`
}

func setPaid(p *models.Payment, paid bool, at time.Time) {
	if paid == p.IsPaid {
		return
	}
	p.IsPaid = paid
	if paid {
		p.PaidAt = &at
	} else {
		p.PaidAt = nil
	}
}

// BulkUpdatePayments applies all marks in one transaction. An unmatched
// mark aborts the whole batch.
func BulkUpdatePayments(floorID, collectionID uint, marks []PaymentMark) (int, error) {
	if _, err := getCollection(floorID, collectionID); err != nil {
		return 0, err
	}
	now := time.Now()
	changed := 0
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		for _, m := range marks {
			var p models.Payment
			q := tx.Where("collection_id = ?", collectionID)
			switch {
			case m.ID != 0:
				q = q.Where("id = ?", m.ID)
			case m.StudentID != 0:
				q = q.Where("student_id = ?", m.StudentID)
			default:
				return invalid("mark needs id or student_id")
			}
			if err := q.First(&p).Error; err != nil {
				return notFound(err, fmt.Sprintf("payment %d/%d", m.ID, m.StudentID))
			}
			paid := m.Status == models.Paid
			if paid == p.IsPaid {
				continue
			}
			setPaid(&p, paid, now)
			if err := tx.Model(&p).Select("is_paid", "paid_at").Updates(&p).Error; err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	invalidateStats(floorID)
	return changed, nil
}

// TogglePayment flips the paid flag and sets or clears PaidAt.
func TogglePayment(floorID, paymentID uint) (models.Payment, error) {
	var p models.Payment
	err := db.Conn().
		Joins("JOIN collections ON collections.id = payments.collection_id").
		Where("collections.floor_id = ?", floorID).
		First(&p, "payments.id = ?", paymentID).Error
	if err != nil {
		return p, notFound(err, "payment")
	}
	setPaid(&p, !p.IsPaid, time.Now())
	if err := db.Conn().Model(&p).Select("is_paid", "paid_at").Updates(&p).Error; err != nil {
		return p, err
	}
	invalidateStats(floorID)
	return p, nil
}

// StudentDue is one row of a student's own dues list.
type StudentDue struct {
	PaymentID    uint       `json:"payment_id"`
	CollectionID uint       `json:"collection_id"`
	Title        string     `json:"title"`
	Amount       int64      `json:"amount"`
	IsPaid       bool       `json:"is_paid"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

func StudentPayments(studentID uint) ([]StudentDue, error) {
	var out []StudentDue
	err := db.Conn().Table("payments").
		Select(`payments.id AS payment_id, payments.collection_id, collections.title,
			payments.amount, payments.is_paid, payments.paid_at, collections.due_date AS deadline`).
		Joins("JOIN collections ON collections.id = payments.collection_id").
		Where("payments.student_id = ?", studentID).
		Order("collections.created_at desc, payments.id desc").
		Scan(&out).Error
	return out, err
}
