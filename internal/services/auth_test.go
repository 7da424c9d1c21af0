package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin_LoginRefresh(t *testing.T) {
	setupDB(t)
	require.NoError(t, EnsureAdmin("admin", "admin123"))
	require.NoError(t, EnsureAdmin("admin", "admin123")) // second boot is a no-op

	leaders, err := ListFloorLeaders()
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, 1, leaders[0].Floor.Number)

	_, err = Login("admin", "wrong")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	tok, err := Login(" ADMIN ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleLeader, tok.Role)

	p, err := Authenticate(tok.Access)
	require.NoError(t, err)
	assert.True(t, p.IsLeader())
	assert.Equal(t, leaders[0].FloorID, p.FloorID)

	// refresh tokens are not access tokens and vice versa
	_, err = Authenticate(tok.Refresh)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = Refresh(tok.Access)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	access, err := Refresh(tok.Refresh)
	require.NoError(t, err)
	_, err = Authenticate(access)
	require.NoError(t, err)

	_, err = Authenticate("garbage")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCreateFloorLeader_ReusesFloor(t *testing.T) {
	setupDB(t)
	in := FloorLeaderInput{
		UserInfo:  FloorLeaderUser{Username: "lead3", Password: "secret1", Email: "Lead3@Example.com"},
		FloorInfo: FloorInfo{Name: "3-qavat", Gender: "female"},
		Floor:     3,
	}
	fl, err := CreateFloorLeader(in)
	require.NoError(t, err)
	assert.Equal(t, "lead3@example.com", fl.User.Email)
	assert.Equal(t, RoleLeader, fl.User.Role)

	in.UserInfo.Username = "lead3b"
	fl2, err := CreateFloorLeader(in)
	require.NoError(t, err)
	assert.Equal(t, fl.FloorID, fl2.FloorID)

	_, err = CreateFloorLeader(in)
	assert.True(t, errors.Is(err, ErrConflict))

	in.UserInfo.Username = "lead4"
	in.UserInfo.Email = "not-an-email"
	_, err = CreateFloorLeader(in)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestProfileAndPassword(t *testing.T) {
	setupDB(t)
	require.NoError(t, EnsureAdmin("admin", "admin123"))
	tok, err := Login("admin", "admin123")
	require.NoError(t, err)
	p, err := Authenticate(tok.Access)
	require.NoError(t, err)

	u, err := UpdateProfile(*p, ProfileInput{FirstName: " Dilshod ", Phone: "8 90 123 45 67"})
	require.NoError(t, err)
	assert.Equal(t, "Dilshod", u.FirstName)
	assert.Equal(t, "+998901234567", u.Phone)

	assert.True(t, errors.Is(ChangePassword(*p, "admin123", "123"), ErrInvalid))
	assert.True(t, errors.Is(ChangePassword(*p, "nope", "newpass1"), ErrInvalid))
	require.NoError(t, ChangePassword(*p, "admin123", "newpass1"))

	_, err = Login("admin", "admin123")
	assert.Error(t, err)
	_, err = Login("admin", "newpass1")
	assert.NoError(t, err)
}

func TestLogin_RemovedStudentRefused(t *testing.T) {
	setupDB(t)
	f := seedFloor(t, 5)
	st, err := CreateStudent(f.ID, StudentInput{Name: "Aziz", Room: "501", Username: "aziz", Password: "secret1"})
	require.NoError(t, err)

	tok, err := Login("aziz", "secret1")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, tok.Role)

	require.NoError(t, SoftDeleteStudent(f.ID, st.ID))
	tok, err = Login("aziz", "secret1")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Empty(t, tok.Access)
}
