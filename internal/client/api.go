package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/floorwarden/warden/internal/models"
	"github.com/floorwarden/warden/internal/services"
)

// Login exchanges credentials for tokens and saves them.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var tok services.Tokens
	in := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, "/token/", in, &tok, false); err != nil {
		return Session{}, err
	}
	s := Session{Access: tok.Access, Refresh: tok.Refresh, Role: tok.Role, Username: username}
	return s, c.setSession(s)
}

// RefreshToken swaps the saved refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context) error {
	if c.session.Refresh == "" {
		return ErrSessionExpired
	}
	var out struct {
		Access string `json:"access"`
	}
	in := map[string]string{"refresh": c.session.Refresh}
	if err := c.send(ctx, http.MethodPost, "/token/refresh/", in, &out, false); err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			c.clearSession()
			return ErrSessionExpired
		}
		return err
	}
	s := c.session
	s.Access = out.Access
	return c.setSession(s)
}

func (c *Client) Logout() {
	c.clearSession()
}

// Students

func (c *Client) Students(ctx context.Context, q string, all bool) ([]models.Student, error) {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if all {
		v.Set("all", "1")
	}
	path := "/students/"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.Student
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) Student(ctx context.Context, id uint) (models.Student, error) {
	var out models.Student
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/students/%d/", id), nil, &out)
}

func (c *Client) CreateStudent(ctx context.Context, in services.StudentInput) (models.Student, error) {
	var out models.Student
	return out, c.do(ctx, http.MethodPost, "/students/", in, &out)
}

func (c *Client) UpdateStudent(ctx context.Context, id uint, in services.StudentInput) (models.Student, error) {
	var out models.Student
	return out, c.do(ctx, http.MethodPut, fmt.Sprintf("/students/%d/", id), in, &out)
}

func (c *Client) DeleteStudent(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/students/%d/", id), nil, nil)
}

func (c *Client) ExportStudents(ctx context.Context) ([]byte, error) {
	return c.raw(ctx, "/students/export.xlsx")
}

// Dues

func (c *Client) Collections(ctx context.Context) ([]services.CollectionSummary, error) {
	var out []services.CollectionSummary
	return out, c.do(ctx, http.MethodGet, "/collections/", nil, &out)
}

// MyDues is the student view of GET /collections/.
func (c *Client) MyDues(ctx context.Context) ([]services.StudentDue, error) {
	var out []services.StudentDue
	return out, c.do(ctx, http.MethodGet, "/collections/", nil, &out)
}

func (c *Client) Collection(ctx context.Context, id uint) (services.CollectionDetailView, error) {
	var out services.CollectionDetailView
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%d/", id), nil, &out)
}

type CreatedCollection struct {
	Collection      models.Collection `json:"collection"`
	PaymentsCreated int               `json:"payments_created"`
}

func (c *Client) CreateCollection(ctx context.Context, in services.CollectionInput) (CreatedCollection, error) {
	var out CreatedCollection
	return out, c.do(ctx, http.MethodPost, "/collections/create/", in, &out)
}

func (c *Client) TogglePayment(ctx context.Context, paymentID uint) (models.Payment, error) {
	var out models.Payment
	return out, c.do(ctx, http.MethodPatch, fmt.Sprintf("/payments/%d/toggle/", paymentID), nil, &out)
}

func (c *Client) CollectionCSV(ctx context.Context, id uint) ([]byte, error) {
	return c.raw(ctx, fmt.Sprintf("/collections/%d/export.csv", id))
}

// Attendance

func (c *Client) Sessions(ctx context.Context) ([]services.SessionSummary, error) {
	var out []services.SessionSummary
	return out, c.do(ctx, http.MethodGet, "/attendance-sessions/", nil, &out)
}

// MyAttendance is the student view of GET /attendance-sessions/.
func (c *Client) MyAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	return out, c.do(ctx, http.MethodGet, "/attendance-sessions/", nil, &out)
}

// CreateSession opens the roll call for date (YYYY-MM-DD, empty for today).
func (c *Client) CreateSession(ctx context.Context, date string) (models.AttendanceSession, error) {
	var in any
	if date != "" {
		in = map[string]string{"date": date}
	}
	var out models.AttendanceSession
	return out, c.do(ctx, http.MethodPost, "/attendance-sessions/create/", in, &out)
}

func (c *Client) SessionDetail(ctx context.Context, id uint) (services.SessionDetailView, error) {
	var out services.SessionDetailView
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/attendance-sessions/%d/", id), nil, &out)
}

func (c *Client) CheckIn(ctx context.Context, sessionID uint) (models.AttendanceRecord, error) {
	var out models.AttendanceRecord
	return out, c.do(ctx, http.MethodPost, fmt.Sprintf("/attendance-sessions/%d/checkin/", sessionID), nil, &out)
}

func (c *Client) SessionQR(ctx context.Context, id uint) ([]byte, error) {
	return c.raw(ctx, fmt.Sprintf("/attendance-sessions/%d/qr.png", id))
}

func (c *Client) SessionCSV(ctx context.Context, id uint) ([]byte, error) {
	return c.raw(ctx, fmt.Sprintf("/attendance-sessions/%d/export.csv", id))
}

// Requests

func (c *Client) Requests(ctx context.Context, status string) ([]models.Request, error) {
	path := "/requests/"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []models.Request
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) CreateRequest(ctx context.Context, in services.RequestInput) (models.Request, error) {
	var out models.Request
	return out, c.do(ctx, http.MethodPost, "/requests/", in, &out)
}

func (c *Client) UpdateRequest(ctx context.Context, id uint, in services.RequestUpdate) (models.Request, error) {
	var out models.Request
	return out, c.do(ctx, http.MethodPut, fmt.Sprintf("/requests/%d/", id), in, &out)
}

// Announcements

func (c *Client) Announcements(ctx context.Context) ([]services.AnnouncementView, error) {
	var out []services.AnnouncementView
	return out, c.do(ctx, http.MethodGet, "/announcements/", nil, &out)
}

func (c *Client) CreateAnnouncement(ctx context.Context, in services.AnnouncementInput) (models.Announcement, error) {
	var out models.Announcement
	return out, c.do(ctx, http.MethodPost, "/announcements/", in, &out)
}

func (c *Client) MarkRead(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/announcements/%d/read/", id), nil, nil)
}

// Account

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var out models.User
	return out, c.do(ctx, http.MethodGet, "/profile/", nil, &out)
}

func (c *Client) UpdateProfile(ctx context.Context, in services.ProfileInput) (models.User, error) {
	var out models.User
	return out, c.do(ctx, http.MethodPatch, "/profile/update/", in, &out)
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	in := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/change-password/", in, nil)
}

type LinkCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Client) TelegramLinkCode(ctx context.Context) (LinkCode, error) {
	var out LinkCode
	return out, c.do(ctx, http.MethodPost, "/account/linkcode/", nil, &out)
}

// Floor administration

func (c *Client) FloorLeaders(ctx context.Context) ([]models.FloorLeader, error) {
	var out []models.FloorLeader
	return out, c.do(ctx, http.MethodGet, "/floor-leaders/", nil, &out)
}

func (c *Client) CreateFloorLeader(ctx context.Context, in services.FloorLeaderInput) (models.FloorLeader, error) {
	var out models.FloorLeader
	return out, c.do(ctx, http.MethodPost, "/floor-leaders/", in, &out)
}

func (c *Client) LeaderStats(ctx context.Context) (services.LeaderStats, error) {
	var out services.LeaderStats
	return out, c.do(ctx, http.MethodGet, "/statistic-for-leader/", nil, &out)
}

func (c *Client) StudentStats(ctx context.Context) (services.StudentStats, error) {
	var out services.StudentStats
	return out, c.do(ctx, http.MethodGet, "/statistic-for-student/", nil, &out)
}

func (c *Client) Duty(ctx context.Context) (services.DutyBoard, error) {
	var out services.DutyBoard
	return out, c.do(ctx, http.MethodGet, "/duty/", nil, &out)
}

func (c *Client) AssignDuty(ctx context.Context, in services.DutyInput) (models.DutyAssignment, error) {
	var out models.DutyAssignment
	return out, c.do(ctx, http.MethodPost, "/duty/", in, &out)
}

func (c *Client) MarkDuty(ctx context.Context, id uint, status models.DutyStatus) (models.DutyAssignment, error) {
	var out models.DutyAssignment
	return out, c.do(ctx, http.MethodPatch, fmt.Sprintf("/duty/%d/", id), services.DutyUpdate{Status: status}, &out)
}
