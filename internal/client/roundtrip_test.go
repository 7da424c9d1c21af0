package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorwarden/warden/internal/cache"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
	"github.com/floorwarden/warden/internal/services"
	"github.com/floorwarden/warden/internal/web"
)

func liveServer(t *testing.T) *httptest.Server {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "client.db")))
	t.Cleanup(func() {
		if sqlDB, err := db.Conn().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	services.SetCache(cache.NewMemory())
	require.NoError(t, services.EnsureAdmin("admin", "admin123"))
	srv := httptest.NewServer(web.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	srv := liveServer(t)
	ctx := context.Background()

	c, err := New(srv.URL, FileSession{Path: filepath.Join(t.TempDir(), "session.json")})
	require.NoError(t, err)

	_, err = c.Login(ctx, "admin", "wrong")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)

	s, err := c.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, services.RoleLeader, s.Role)
	require.NoError(t, c.RefreshToken(ctx))

	a, err := c.CreateStudent(ctx, services.StudentInput{Name: "Aziz", Room: "101"})
	require.NoError(t, err)
	b, err := c.CreateStudent(ctx, services.StudentInput{Name: "Bekzod", Room: "102"})
	require.NoError(t, err)

	col, err := c.CreateCollection(ctx, services.CollectionInput{Title: "Internet", Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, 2, col.PaymentsCreated)

	n, err := c.SyncPayments(ctx, col.Collection.ID, []PaymentMark{{StudentID: a.ID, Paid: true}, {StudentID: b.ID, Paid: false}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	detail, err := c.Collection(ctx, col.Collection.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Stats.Paid)
	assert.EqualValues(t, 20000, detail.Stats.Collected)

	sess, err := c.CreateSession(ctx, "")
	require.NoError(t, err)
	n, err = c.SyncAttendance(ctx, sess.ID, []AttendanceMark{
		{StudentID: a.ID, Status: models.Late},
		{StudentID: b.ID, Status: models.Absent},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err := c.SessionDetail(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.Total)
	assert.Equal(t, 1, view.Stats.Present)
	assert.Equal(t, 1, view.Stats.Absent)

	// unknown student aborts the batch
	_, err = c.SyncAttendance(ctx, sess.ID, []AttendanceMark{{StudentID: 9999, Status: models.Present}})
	require.Error(t, err)
	assert.Equal(t, 404, StatusOf(err))

	stats, err := c.LeaderStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.ActiveStudents)

	c.Logout()
	_, err = c.Students(ctx, "", false)
	assert.ErrorIs(t, err, ErrSessionExpired)
}
