package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

const (
	RoleLeader  = "leader"
	RoleStudent = "student"

	MinPasswordLen = 6
)

// Principal is the authenticated caller, resolved from an access token.
type Principal struct {
	UserID    uint
	Role      string
	FloorID   uint
	StudentID uint // 0 unless Role is student
}

func (p Principal) IsLeader() bool { return p.Role == RoleLeader }

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Role    string `json:"role"`
}

type claims struct {
	UserID  uint   `json:"user_id"`
	Role    string `json:"role"`
	FloorID uint   `json:"floor_id"`
	Type    string `json:"typ"` // access | refresh
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(config.Conf.GetString("JWT_SECRET"))
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func sign(u models.User, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UserID:  u.ID,
		Role:    u.Role,
		FloorID: u.FloorID,
		Type:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(jwtSecret())
}

func issueTokens(u models.User) (Tokens, error) {
	access, err := sign(u, "access", config.Conf.GetDuration("ACCESS_TTL"))
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := sign(u, "refresh", config.Conf.GetDuration("REFRESH_TTL"))
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh, Role: u.Role}, nil
}

func parse(token, wantType string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnauthorized)
	}
	if c.Type != wantType {
		return nil, fmt.Errorf("token type %q: %w", c.Type, ErrUnauthorized)
	}
	return &c, nil
}

// Login checks username/password and returns a fresh token pair.
func Login(username, password string) (Tokens, error) {
	var u models.User
	err := db.Conn().Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).First(&u).Error
	if err != nil || !checkPassword(u.PasswordHash, password) {
		return Tokens{}, fmt.Errorf("no active account with the given credentials: %w", ErrUnauthorized)
	}
	if u.Role == RoleStudent {
		if _, err := activeStudent(u.ID); err != nil {
			return Tokens{}, err
		}
	}
	return issueTokens(u)
}

func activeStudent(userID uint) (models.Student, error) {
	var st models.Student
	if err := db.Conn().Where("user_id = ? AND is_deleted = ?", userID, false).First(&st).Error; err != nil {
		return st, fmt.Errorf("student account inactive: %w", ErrUnauthorized)
	}
	return st, nil
}

// Refresh exchanges a refresh token for a new access token.
func Refresh(refresh string) (string, error) {
	c, err := parse(refresh, "refresh")
	if err != nil {
		return "", err
	}
	var u models.User
	if err := db.Conn().First(&u, c.UserID).Error; err != nil {
		return "", fmt.Errorf("user gone: %w", ErrUnauthorized)
	}
	return sign(u, "access", config.Conf.GetDuration("ACCESS_TTL"))
}

// Authenticate resolves an access token into a Principal.
func Authenticate(access string) (*Principal, error) {
	c, err := parse(access, "access")
	if err != nil {
		return nil, err
	}
	p := &Principal{UserID: c.UserID, Role: c.Role, FloorID: c.FloorID}
	if p.Role == RoleStudent {
		st, err := activeStudent(c.UserID)
		if err != nil {
			return nil, err
		}
		p.StudentID = st.ID
		p.FloorID = st.FloorID
	}
	return p, nil
}

type ProfileInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func UpdateProfile(p Principal, in ProfileInput) (models.User, error) {
	var u models.User
	if err := db.Conn().First(&u, p.UserID).Error; err != nil {
		return u, notFound(err, "user")
	}
	email, ok := NormEmail(in.Email)
	if !ok {
		return u, invalid("email")
	}
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Email = email
	if in.Phone != "" {
		u.Phone = NormPhone(in.Phone)
	}
	if err := db.Conn().Save(&u).Error; err != nil {
		return u, err
	}
	return u, nil
}

func ChangePassword(p Principal, oldPw, newPw string) error {
	if len(newPw) < MinPasswordLen {
		return invalid("new password must be at least %d characters", MinPasswordLen)
	}
	var u models.User
	if err := db.Conn().First(&u, p.UserID).Error; err != nil {
		return notFound(err, "user")
	}
	if !checkPassword(u.PasswordHash, oldPw) {
		return invalid("old password is wrong")
	}
	hash, err := HashPassword(newPw)
	if err != nil {
		return err
	}
	return db.Conn().Model(&u).Update("password_hash", hash).Error
}

// EnsureAdmin creates the first floor leader (and floor 1) on an empty database.
func EnsureAdmin(username, password string) error {
	var n int64
	if err := db.Conn().Model(&models.User{}).Where("role = ?", RoleLeader).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := CreateFloorLeader(FloorLeaderInput{
		UserInfo:  FloorLeaderUser{Username: username, Password: password, Role: RoleLeader},
		FloorInfo: FloorInfo{Name: "1-qavat", Gender: "male"},
		Floor:     1,
	})
	if err != nil && !errors.Is(err, ErrConflict) {
		return err
	}
	log.Printf("bootstrap leader %q created", username)
	return nil
}

// UserByID loads the caller for profile responses.
func UserByID(id uint) (models.User, error) {
	var u models.User
	err := db.Conn().First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, notFound(err, "user")
	}
	return u, err
}
