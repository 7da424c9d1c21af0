package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

type FloorLeaderUser struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=leader"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type FloorInfo struct {
	Name   string `json:"name" validate:"required,max=64"`
	Gender string `json:"gender" validate:"required,oneof=male female"`
}

// FloorLeaderInput mirrors the shape older clients POST to /floor-leaders/.
type FloorLeaderInput struct {
	UserInfo  FloorLeaderUser `json:"user_info" validate:"required"`
	FloorInfo FloorInfo       `json:"floor_info" validate:"required"`
	Floor     int             `json:"floor" validate:"required,min=1"`
}

// CreateFloorLeader creates the user, the floor (reused if the number
// exists) and the link between them in one transaction.
func CreateFloorLeader(in FloorLeaderInput) (models.FloorLeader, error) {
	var fl models.FloorLeader
	email, ok := NormEmail(in.UserInfo.Email)
	if !ok {
		return fl, invalid("email")
	}
	hash, err := HashPassword(in.UserInfo.Password)
	if err != nil {
		return fl, err
	}

	err = db.Conn().Transaction(func(tx *gorm.DB) error {
		var floor models.Floor
		if err := tx.Where("number = ?", in.Floor).
			Attrs(models.Floor{Name: in.FloorInfo.Name, Gender: in.FloorInfo.Gender}).
			FirstOrCreate(&floor, models.Floor{Number: in.Floor}).Error; err != nil {
			return err
		}

		u := models.User{
			Username:     strings.TrimSpace(in.UserInfo.Username),
			Email:        email,
			Role:         RoleLeader,
			PasswordHash: hash,
			FloorID:      floor.ID,
		}
		if err := tx.Create(&u).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("username %q taken: %w", u.Username, ErrConflict)
			}
			return err
		}

		fl = models.FloorLeader{UserID: u.ID, FloorID: floor.ID}
		if err := tx.Create(&fl).Error; err != nil {
			return err
		}
		fl.User = u
		fl.Floor = floor
		return nil
	})
	return fl, err
}

func ListFloorLeaders() ([]models.FloorLeader, error) {
	var out []models.FloorLeader
	err := db.Conn().Preload("User").Preload("Floor").Order("id asc").Find(&out).Error
	return out, err
}
