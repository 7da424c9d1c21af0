package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorwarden/warden/internal/cache"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/services"
)

type apiClient struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func setup(t *testing.T) http.Handler {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "web.db")))
	t.Cleanup(func() {
		if sqlDB, err := db.Conn().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	services.SetCache(cache.NewMemory())
	require.NoError(t, services.EnsureAdmin("admin", "admin123"))
	return Router()
}

func login(t *testing.T, h http.Handler, user, pw string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, h: h}
	rec := c.do(http.MethodPost, "/token/", map[string]string{"username": user, "password": pw})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok services.Tokens
	decodeInto(t, rec, &tok)
	c.token = tok.Access
	return c
}

func TestRouterHealthz(t *testing.T) {
	r := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	h := setup(t)
	anon := &apiClient{t: t, h: h}

	rec := anon.do(http.MethodGet, "/students/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	decodeInto(t, rec, &body)
	assert.NotEmpty(t, body["detail"])

	anon.token = "not-a-jwt"
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/students/", nil).Code)

	rec = anon.do(http.MethodPost, "/token/", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeaderAndStudentFlow(t *testing.T) {
	h := setup(t)
	leader := login(t, h, "admin", "admin123")

	// roster
	rec := leader.do(http.MethodPost, "/students/", map[string]string{
		"name": "Aziz", "room": "101", "phone": "901234567", "username": "aziz", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var aziz struct{ ID uint }
	decodeInto(t, rec, &aziz)
	rec = leader.do(http.MethodPost, "/students/", map[string]string{"name": "Bekzod", "room": "102"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bekzod struct{ ID uint }
	decodeInto(t, rec, &bekzod)

	rec = leader.do(http.MethodPost, "/students/", map[string]string{"room": "103"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// dues
	rec = leader.do(http.MethodPost, "/collections/create/", map[string]any{"title": "Internet", "amount": 20000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Collection struct{ ID uint } `json:"collection"`
		N          int               `json:"payments_created"`
	}
	decodeInto(t, rec, &created)
	assert.Equal(t, 2, created.N)

	rec = leader.do(http.MethodPatch, fmt.Sprintf("/collection-records/%d/bulk-update/", created.Collection.ID), map[string]any{
		"records": []map[string]any{{"student_id": aziz.ID, "status": "To'lagan"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = leader.do(http.MethodGet, "/statistic-for-leader/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	decodeInto(t, rec, &stats)
	assert.EqualValues(t, 2, stats["active_students"])
	assert.EqualValues(t, 50, stats["collection_degree"])
	assert.EqualValues(t, 0, stats["today_attendance"])

	// attendance
	rec = leader.do(http.MethodPost, "/attendance-sessions/create/", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sess struct{ ID uint }
	decodeInto(t, rec, &sess)
	rec = leader.do(http.MethodPost, "/attendance-sessions/create/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = leader.do(http.MethodPatch, fmt.Sprintf("/attendance-records/%d/bulk-update/", sess.ID), map[string]any{
		"records": []map[string]any{{"student_id": bekzod.ID, "status": "in"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = leader.do(http.MethodPatch, fmt.Sprintf("/attendance-records/%d/bulk-update/", sess.ID), map[string]any{
		"records": []map[string]any{{"student_id": bekzod.ID, "status": "maybe"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = leader.do(http.MethodGet, fmt.Sprintf("/attendance-sessions/%d/qr.png", sess.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = leader.do(http.MethodGet, fmt.Sprintf("/attendance-sessions/%d/export.csv", sess.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bekzod")

	// student side
	student := login(t, h, "aziz", "secret1")
	assert.Equal(t, http.StatusForbidden, student.do(http.MethodPost, "/students/", map[string]string{"name": "x", "room": "1"}).Code)

	rec = student.do(http.MethodPost, fmt.Sprintf("/attendance-sessions/%d/checkin/", sess.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = student.do(http.MethodPost, "/requests/", map[string]string{"title": "Broken lamp"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var req struct {
		ID     uint
		Status string
	}
	decodeInto(t, rec, &req)
	assert.Equal(t, "open", req.Status)

	rec = leader.do(http.MethodPut, fmt.Sprintf("/requests/%d/", req.ID), map[string]string{"status": "hal_qilindi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeInto(t, rec, &req)
	assert.Equal(t, "resolved", req.Status)

	rec = leader.do(http.MethodPost, "/announcements/", map[string]any{"title": "Inspection", "is_important": false})
	require.Equal(t, http.StatusCreated, rec.Code)
	var ann struct{ ID uint }
	decodeInto(t, rec, &ann)
	read := fmt.Sprintf("/announcements/%d/read/", ann.ID)
	assert.Equal(t, http.StatusOK, student.do(http.MethodPost, read, nil).Code)
	assert.Equal(t, http.StatusOK, student.do(http.MethodPost, read, nil).Code)

	rec = student.do(http.MethodGet, "/announcements/", nil)
	var anns []struct {
		IsRead bool `json:"is_read"`
	}
	decodeInto(t, rec, &anns)
	require.Len(t, anns, 1)
	assert.True(t, anns[0].IsRead)

	rec = student.do(http.MethodGet, "/statistic-for-student/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine map[string]any
	decodeInto(t, rec, &mine)
	assert.EqualValues(t, 100, mine["attendance_rate"])
	assert.EqualValues(t, 20000, mine["paid_amount"])

	// soft delete keeps history but revokes access
	assert.Equal(t, http.StatusNoContent, leader.do(http.MethodDelete, fmt.Sprintf("/students/%d/", aziz.ID), nil).Code)
	assert.Equal(t, http.StatusUnauthorized, student.do(http.MethodGet, "/students/", nil).Code)
	rec = leader.do(http.MethodGet, "/students/?all=1", nil)
	var roster []map[string]any
	decodeInto(t, rec, &roster)
	assert.Len(t, roster, 2)
}

func TestNotFoundAndBadID(t *testing.T) {
	h := setup(t)
	leader := login(t, h, "admin", "admin123")

	assert.Equal(t, http.StatusNotFound, leader.do(http.MethodGet, "/collections/999/", nil).Code)
	assert.Equal(t, http.StatusBadRequest, leader.do(http.MethodGet, "/collections/abc/", nil).Code)
	assert.Equal(t, http.StatusNotFound, leader.do(http.MethodPatch, "/payments/42/toggle/", nil).Code)
}
