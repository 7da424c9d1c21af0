package services

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

type StudentInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	LastName string `json:"last_name" validate:"max=100"`
	Room     string `json:"room" validate:"required,max=16"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	// Optional login for the student role.
	Username string `json:"username" validate:"omitempty,min=3,max=64"`
	Password string `json:"password" validate:"required_with=Username,omitempty,min=6"`
}

// ListStudents returns the floor roster ordered by room. q matches name or
// room case-insensitively, or a phone substring.
func ListStudents(floorID uint, q string, includeDeleted bool) ([]models.Student, error) {
	tx := db.Conn().Where("floor_id = ?", floorID)
	if !includeDeleted {
		tx = tx.Where("is_deleted = ?", false)
	}
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(room) LIKE ? OR phone LIKE ?",
			like, like, like, "%"+q+"%")
	}
	var out []models.Student
	if err := tx.Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return roomLess(out[i].Room, out[j].Room) })
	return out, nil
}

func GetStudent(floorID, id uint) (models.Student, error) {
	var st models.Student
	err := db.Conn().Where("floor_id = ?", floorID).First(&st, id).Error
	return st, notFound(err, "student")
}

func CreateStudent(floorID uint, in StudentInput) (models.Student, error) {
	st := models.Student{
		Name:     strings.TrimSpace(in.Name),
		LastName: strings.TrimSpace(in.LastName),
		Room:     strings.TrimSpace(in.Room),
		Phone:    NormPhone(in.Phone),
		FloorID:  floorID,
	}
	if st.Name == "" || st.Room == "" {
		return st, invalid("name and room are required")
	}
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		if in.Username != "" {
			hash, err := HashPassword(in.Password)
			if err != nil {
				return err
			}
			u := models.User{
				Username:     strings.TrimSpace(in.Username),
				FirstName:    st.Name,
				LastName:     st.LastName,
				Phone:        st.Phone,
				Role:         RoleStudent,
				PasswordHash: hash,
				FloorID:      floorID,
			}
			if err := tx.Create(&u).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("username %q taken: %w", u.Username, ErrConflict)
				}
				return err
			}
			st.UserID = &u.ID
		}
		return tx.Create(&st).Error
	})
	if err == nil {
		invalidateStats(floorID)
	}
	return st, err
}

// UpdateStudent replaces the editable fields of the record.
func UpdateStudent(floorID, id uint, in StudentInput) (models.Student, error) {
	st, err := GetStudent(floorID, id)
	if err != nil {
		return st, err
	}
	st.Name = strings.TrimSpace(in.Name)
	st.LastName = strings.TrimSpace(in.LastName)
	st.Room = strings.TrimSpace(in.Room)
	st.Phone = NormPhone(in.Phone)
	if st.Name == "" || st.Room == "" {
		return st, invalid("name and room are required")
	}
	err = db.Conn().Save(&st).Error
	return st, err
}

// SoftDeleteStudent hides the student from the active roster; payments and
// attendance history stay.
func SoftDeleteStudent(floorID, id uint) error {
	st, err := GetStudent(floorID, id)
	if err != nil {
		return err
	}
	if st.IsDeleted {
		return nil
	}
	if err := db.Conn().Model(&st).Update("is_deleted", true).Error; err != nil {
		return err
	}
	invalidateStats(floorID)
	return nil
}

// ImportStudentsXLSX reads the first sheet: name, room, phone[, last name].
// A header row is skipped when its room cell is not a room number.
func ImportStudentsXLSX(floorID uint, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("open excel: %v: %w", err, ErrInvalid)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("close excel: %v", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, invalid("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, err
	}

	var batch []models.Student
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		name, room := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if name == "" || room == "" {
			continue
		}
		if i == 0 && phoneDigits(room) == "" {
			continue // header
		}
		st := models.Student{Name: name, Room: room, FloorID: floorID}
		if len(row) > 2 {
			st.Phone = NormPhone(row[2])
		}
		if len(row) > 3 {
			st.LastName = strings.TrimSpace(row[3])
		}
		batch = append(batch, st)
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := db.Conn().CreateInBatches(&batch, 100).Error; err != nil {
		return 0, err
	}
	invalidateStats(floorID)
	return len(batch), nil
}

// ExportStudentsXLSX writes the active roster in the same column order the
// importer reads.
func ExportStudentsXLSX(floorID uint) ([]byte, error) {
	students, err := ListStudents(floorID, "", false)
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Name", "Room", "Phone", "Last name"}); err != nil {
		return nil, err
	}
	for i, st := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{st.Name, st.Room, st.Phone, st.LastName}); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
